package transport

import (
	"encoding/json"
	"fmt"

	"github.com/zeebo/xxh3"

	"github.com/arloliu/collective/types"
)

// envelope is the wire form of every message a Group stores.
type envelope struct {
	From   int    `json:"from"`
	Op     string `json:"op"`
	Seq    uint64 `json:"seq"`
	Digest uint64 `json:"digest"`
	Data   []byte `json:"data"`
}

func encodeEnvelope(from int, op string, seq uint64, data []byte) ([]byte, error) {
	raw, err := json.Marshal(envelope{
		From:   from,
		Op:     op,
		Seq:    seq,
		Digest: xxh3.Hash(data),
		Data:   data,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode %s envelope: %w", types.ErrTransport, op, err)
	}

	return raw, nil
}

// decodeEnvelope parses raw and checks it came from the expected sender and
// that the payload matches its digest.
func decodeEnvelope(raw []byte, wantFrom int, wantOp string) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", types.ErrMalformedMessage, wantOp, err)
	}
	if env.From != wantFrom || env.Op != wantOp {
		return nil, fmt.Errorf("%w: expected %s from rank %d, got %s from rank %d",
			types.ErrMalformedMessage, wantOp, wantFrom, env.Op, env.From)
	}
	if xxh3.Hash(env.Data) != env.Digest {
		return nil, fmt.Errorf("%w: %s from rank %d seq %d", types.ErrCorruptPayload, wantOp, env.From, env.Seq)
	}
	if env.Data == nil {
		env.Data = []byte{}
	}

	return env.Data, nil
}
