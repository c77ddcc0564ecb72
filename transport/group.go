package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arloliu/collective/internal/logging"
	"github.com/arloliu/collective/internal/metrics"
	"github.com/arloliu/collective/internal/natsutil"
	"github.com/arloliu/collective/internal/rankclaim"
	"github.com/arloliu/collective/types"
)

// Operation names used in envelopes, metrics and errors.
const (
	opScatter   = "scatter"
	opBroadcast = "broadcast"
	opSend      = "send"
	opReceive   = "receive"
	opJoin      = "join"
)

// ClaimRank asks Join to claim the lowest free rank instead of using a preassigned one.
const ClaimRank = -1

var runIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// GroupConfig describes one participant's membership.
type GroupConfig struct {
	// RunID scopes every key of the run. All participants must agree on it.
	RunID string

	// Rank is this participant's rank, or ClaimRank to claim one at Join.
	Rank int

	// Size is the fixed number of participants.
	Size int

	// Logger receives debug and error output (nil disables logging).
	Logger types.Logger

	// Metrics records message counts and operation durations (nil disables metrics).
	Metrics types.TransportMetrics
}

type member struct {
	Rank int `json:"rank"`
	Size int `json:"size"`
}

type p2pKey struct {
	peer int
	tag  types.Tag
}

// Group is one participant's handle on a fixed-size group.
//
// A Group is driven by its own participant only; calls are serialized
// internally but issuing collectives from several goroutines would break the
// collective order every rank depends on.
type Group struct {
	store   Store
	runID   string
	rank    int
	size    int
	claimer *rankclaim.Claimer

	mu      sync.Mutex
	collSeq uint64
	sendSeq map[p2pKey]uint64
	recvSeq map[p2pKey]uint64
	closed  atomic.Bool
	logger  types.Logger
	metrics types.TransportMetrics
}

var _ types.Transport = (*Group)(nil)

// Join enrolls this participant in the group and waits until all Size
// participants have enrolled.
//
// Every member publishes a record of the group size it was launched with; a
// member disagreeing on the size, or two members holding the same rank, fail
// the join with ErrGroupMismatch. There is no timeout besides ctx.
//
// Parameters:
//   - ctx: Context bounding the whole bootstrap
//   - store: Mailbox store shared by the group
//   - cfg: Membership description
//
// Returns:
//   - *Group: Ready group handle
//   - error: ErrInvalidConfig, ErrInvalidRank, ErrGroupMismatch or another transport error
//
// Example:
//
//	store := transport.NewMemoryStore()
//	g, err := transport.Join(ctx, store, transport.GroupConfig{RunID: "run-1", Rank: 0, Size: 4})
func Join(ctx context.Context, store Store, cfg GroupConfig) (*Group, error) {
	if store == nil {
		return nil, types.ErrTransportRequired
	}
	if !runIDPattern.MatchString(cfg.RunID) {
		return nil, fmt.Errorf("%w: run id %q must match %s", types.ErrInvalidConfig, cfg.RunID, runIDPattern)
	}
	if cfg.Size < 1 {
		return nil, fmt.Errorf("%w: group size %d must be at least 1", types.ErrInvalidConfig, cfg.Size)
	}
	if cfg.Rank != ClaimRank && (cfg.Rank < 0 || cfg.Rank >= cfg.Size) {
		return nil, fmt.Errorf("%w: rank %d outside group of %d", types.ErrInvalidRank, cfg.Rank, cfg.Size)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	m := cfg.Metrics
	if m == nil {
		m = metrics.NewNop()
	}

	g := &Group{
		store:   store,
		runID:   cfg.RunID,
		rank:    cfg.Rank,
		size:    cfg.Size,
		sendSeq: make(map[p2pKey]uint64),
		recvSeq: make(map[p2pKey]uint64),
		logger:  logger,
		metrics: m,
	}

	start := time.Now()
	if err := g.join(ctx); err != nil {
		g.metrics.RecordTransportError(opJoin)
		if g.claimer != nil {
			_ = g.claimer.Release(context.WithoutCancel(ctx))
		}

		return nil, err
	}
	g.metrics.RecordOperationDuration(opJoin, time.Since(start).Seconds())

	return g, nil
}

func (g *Group) join(ctx context.Context) error {
	if g.rank == ClaimRank {
		g.claimer = rankclaim.NewClaimer(g.store, g.runID+".rank", g.size, g.logger)
		rank, err := g.claimer.Claim(ctx)
		if err != nil {
			if errors.Is(err, rankclaim.ErrNoAvailableRank) {
				return fmt.Errorf("%w: all %d ranks already claimed", types.ErrGroupMismatch, g.size)
			}

			return natsutil.WrapTransport(opJoin, err)
		}
		g.rank = rank
	}

	record, err := json.Marshal(member{Rank: g.rank, Size: g.size})
	if err != nil {
		return fmt.Errorf("%w: encode member record: %w", types.ErrTransport, err)
	}

	ok, err := g.store.Create(ctx, g.memberKey(g.rank), record)
	if err != nil {
		return natsutil.WrapTransport(opJoin, err)
	}
	if !ok {
		return fmt.Errorf("%w: rank %d joined twice in run %s", types.ErrGroupMismatch, g.rank, g.runID)
	}

	g.logger.Debug("joined group, waiting for members", "run_id", g.runID, "rank", g.rank, "size", g.size)

	for peer := range g.size {
		raw, err := g.store.Wait(ctx, g.memberKey(peer))
		if err != nil {
			return natsutil.WrapTransport(opJoin, err)
		}

		var rec member
		if err := json.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("%w: member record of rank %d: %w", types.ErrMalformedMessage, peer, err)
		}
		if rec.Rank != peer || rec.Size != g.size {
			return fmt.Errorf("%w: rank %d declares rank %d in a group of %d, expected group of %d",
				types.ErrGroupMismatch, peer, rec.Rank, rec.Size, g.size)
		}
	}

	g.logger.Info("group complete", "run_id", g.runID, "rank", g.rank, "size", g.size)

	return nil
}

// Rank returns this participant's rank.
func (g *Group) Rank() int { return g.rank }

// Size returns the group size.
func (g *Group) Size() int { return g.size }

// RunID returns the run this group belongs to.
func (g *Group) RunID() string { return g.runID }

// Scatter delivers parts[i] from root to rank i.
//
// The root writes every part before reading its own, so a root never waits
// on the other ranks. A root whose parts slice does not hold exactly Size()
// entries fails with ErrBufferMismatch before writing anything.
func (g *Group) Scatter(ctx context.Context, root int, parts [][]byte) ([]byte, error) {
	start := time.Now()
	data, err := g.scatter(ctx, root, parts)

	return g.finish(opScatter, start, data, err)
}

func (g *Group) scatter(ctx context.Context, root int, parts [][]byte) ([]byte, error) {
	if err := g.checkPeer(root); err != nil {
		return nil, err
	}
	if g.rank == root && len(parts) != g.size {
		return nil, fmt.Errorf("%w: scatter root holds %d parts for %d ranks", types.ErrBufferMismatch, len(parts), g.size)
	}

	seq := g.nextCollective()

	if g.rank == root {
		for dst, part := range parts {
			raw, err := encodeEnvelope(root, opScatter, seq, part)
			if err != nil {
				return nil, err
			}
			if err := g.store.Put(ctx, g.scatterKey(seq, dst), raw); err != nil {
				return nil, natsutil.WrapTransport(opScatter, err)
			}
			if dst != root {
				g.metrics.RecordMessage(opScatter, len(raw))
			}
		}
	}

	raw, err := g.store.Wait(ctx, g.scatterKey(seq, g.rank))
	if err != nil {
		return nil, natsutil.WrapTransport(opScatter, err)
	}

	return decodeEnvelope(raw, root, opScatter)
}

// Broadcast replicates root's payload to every rank.
func (g *Group) Broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	start := time.Now()
	data, err := g.broadcast(ctx, root, payload)

	return g.finish(opBroadcast, start, data, err)
}

func (g *Group) broadcast(ctx context.Context, root int, payload []byte) ([]byte, error) {
	if err := g.checkPeer(root); err != nil {
		return nil, err
	}

	seq := g.nextCollective()
	key := g.broadcastKey(seq)

	if g.rank == root {
		raw, err := encodeEnvelope(root, opBroadcast, seq, payload)
		if err != nil {
			return nil, err
		}
		if err := g.store.Put(ctx, key, raw); err != nil {
			return nil, natsutil.WrapTransport(opBroadcast, err)
		}
		g.metrics.RecordMessage(opBroadcast, len(raw))
	}

	raw, err := g.store.Wait(ctx, key)
	if err != nil {
		return nil, natsutil.WrapTransport(opBroadcast, err)
	}

	return decodeEnvelope(raw, root, opBroadcast)
}

// Send delivers payload to dst on tag.
//
// Send never waits for the receiver.
func (g *Group) Send(ctx context.Context, dst int, tag types.Tag, payload []byte) error {
	start := time.Now()
	_, err := g.finish(opSend, start, nil, g.send(ctx, dst, tag, payload))

	return err
}

func (g *Group) send(ctx context.Context, dst int, tag types.Tag, payload []byte) error {
	if err := g.checkPeer(dst); err != nil {
		return err
	}

	n := g.nextP2P(g.sendSeq, p2pKey{peer: dst, tag: tag})
	raw, err := encodeEnvelope(g.rank, opSend, n, payload)
	if err != nil {
		return err
	}
	if err := g.store.Put(ctx, g.p2pKey(g.rank, dst, tag, n), raw); err != nil {
		return natsutil.WrapTransport(opSend, err)
	}
	g.metrics.RecordMessage(opSend, len(raw))

	return nil
}

// Receive blocks until the next message from src on tag arrives.
func (g *Group) Receive(ctx context.Context, src int, tag types.Tag) ([]byte, error) {
	start := time.Now()
	data, err := g.receive(ctx, src, tag)

	return g.finish(opReceive, start, data, err)
}

func (g *Group) receive(ctx context.Context, src int, tag types.Tag) ([]byte, error) {
	if err := g.checkPeer(src); err != nil {
		return nil, err
	}

	n := g.nextP2P(g.recvSeq, p2pKey{peer: src, tag: tag})
	raw, err := g.store.Wait(ctx, g.p2pKey(src, g.rank, tag, n))
	if err != nil {
		return nil, natsutil.WrapTransport(opReceive, err)
	}

	data, err := decodeEnvelope(raw, src, opSend)
	if err != nil {
		return nil, err
	}
	g.metrics.RecordMessage(opReceive, len(raw))

	return data, nil
}

// Close leaves the group.
//
// Message keys are left in the store for peers that are still reading them;
// the KV bucket TTL removes them. A claimed rank is released.
func (g *Group) Close(ctx context.Context) error {
	if !g.closed.CompareAndSwap(false, true) {
		return nil
	}

	if g.claimer != nil {
		if err := g.claimer.Release(ctx); err != nil && !errors.Is(err, rankclaim.ErrNotClaimed) {
			return natsutil.WrapTransport("close", err)
		}
	}

	g.logger.Debug("left group", "run_id", g.runID, "rank", g.rank)

	return nil
}

func (g *Group) finish(op string, start time.Time, data []byte, err error) ([]byte, error) {
	if err != nil {
		g.metrics.RecordTransportError(op)
		g.logger.Debug("transport operation failed", "op", op, "rank", g.rank, "error", err)

		return nil, err
	}
	g.metrics.RecordOperationDuration(op, time.Since(start).Seconds())

	return data, nil
}

func (g *Group) checkPeer(peer int) error {
	if g.closed.Load() {
		return types.ErrTransportClosed
	}
	if peer < 0 || peer >= g.size {
		return fmt.Errorf("%w: rank %d outside group of %d", types.ErrInvalidRank, peer, g.size)
	}

	return nil
}

func (g *Group) nextCollective() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	seq := g.collSeq
	g.collSeq++

	return seq
}

func (g *Group) nextP2P(counters map[p2pKey]uint64, k p2pKey) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := counters[k]
	counters[k] = n + 1

	return n
}

func (g *Group) memberKey(rank int) string {
	return fmt.Sprintf("%s.member.%d", g.runID, rank)
}

func (g *Group) scatterKey(seq uint64, rank int) string {
	return fmt.Sprintf("%s.scatter.%d.%d", g.runID, seq, rank)
}

func (g *Group) broadcastKey(seq uint64) string {
	return fmt.Sprintf("%s.bcast.%d", g.runID, seq)
}

func (g *Group) p2pKey(src, dst int, tag types.Tag, n uint64) string {
	return fmt.Sprintf("%s.p2p.%d.%d.%d.%d", g.runID, src, dst, int(tag), n)
}
