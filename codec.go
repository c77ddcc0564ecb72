package collective

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// encode serializes one payload with gob.
//
// Floats travel as their IEEE-754 bits, so NaN, ±Inf and -0 inside slices
// arrive unchanged. Each payload carries its own type description and decodes
// without any shared decoder state.
func encode(op string, v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, fmt.Errorf("%w: failed to encode %s payload: %w", ErrTransport, op, err)
	}

	return buf.Bytes(), nil
}

func decode(op string, raw []byte, v any) error {
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(v); err != nil {
		return fmt.Errorf("%w: %s payload: %w", ErrMalformedMessage, op, err)
	}

	return nil
}
