// Package partition splits a dataset into equal, contiguous, rank-ordered chunks.
//
// Partition i of a dataset of length L over P participants covers exactly the
// elements [i*(L/P), (i+1)*(L/P)). Only evenly divisible configurations are
// accepted; non-uniform partitioning is out of scope.
//
// Check must run on every participant before any collective call. Every
// participant derives L and P from the same configuration, so they all reach
// the same verdict without exchanging messages, and no participant is left
// waiting in a collective its peers will never enter.
package partition
