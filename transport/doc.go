// Package transport implements the group collaborator every participant talks through.
//
// A Group provides rank, size, scatter, broadcast and tagged point-to-point
// messaging on top of a Store of single-assignment mailboxes. Every message
// gets its own key, derived only from values all participants agree on:
//
//	<run>.scatter.<seq>.<rank>          chunk for rank in collective call seq
//	<run>.bcast.<seq>                   broadcast payload of collective call seq
//	<run>.p2p.<src>.<dst>.<tag>.<n>     n-th message from src to dst on tag
//	<run>.member.<rank>                 membership record written at Join
//	<run>.rank.<rank>                   rank claim (only when ranks are not preassigned)
//
// Each participant numbers its own collective calls. While all participants
// issue collectives in the same order, the numbers agree and every receiver
// waits on exactly the key its root wrote. A participant that skips or
// reorders a collective waits on a key nobody writes: the group stalls
// instead of silently mixing up data.
//
// Two stores are provided:
//   - MemoryStore: in-process mailboxes for running a whole group in one process
//   - KVStore: NATS JetStream KV, for participants in separate processes or hosts
//
// Waits block indefinitely; callers bound them with a context deadline.
package transport
