// Package collective partitions a dataset over a fixed group of participants,
// runs a local compute unit on every partition and recombines the results on
// the coordinator.
//
// One participant is the coordinator (rank 0). It owns the full dataset,
// scatters equal contiguous chunks to every rank (itself included), optionally
// broadcasts a value every rank needs in full, computes its own chunk, and
// then collects every other rank's result, labelled with that rank's identity,
// into one result in dataset order.
//
// # Quick Start
//
// Run a whole group in one process:
//
//	store := transport.NewMemoryStore()
//	for rank := range 4 {
//	    go func() {
//	        g, _ := transport.Join(ctx, store, transport.GroupConfig{RunID: "demo", Rank: rank, Size: 4})
//	        sess, _ := collective.NewSession(&cfg, g)
//	        report, _ := collective.Execute(ctx, sess, kernel.VectorSumWorkload(48))
//	        collective.WriteReport(os.Stdout, report)
//	    }()
//	}
//
// Participants in separate processes use transport.OpenKVStore against a
// shared NATS server instead of a MemoryStore.
//
// # Lifecycle
//
// Every participant moves through the phases
//
//	Init → Configured → Distributing → Computing → Collecting → Reporting → Done
//
// where only the coordinator collects and reports. The group size is checked
// against the dataset length in Configured, on every participant, before any
// message is sent: a group that cannot split the dataset evenly ends with a
// *ConfigError everywhere and no traffic.
//
// # Ordering
//
// Scatter and Broadcast are collective: every participant calls them in the
// same order. Results are placed by rank, never by arrival order.
//
// # Failure Model
//
// There is no recovery. A transport failure is fatal for the run. By default a
// missing peer blocks forever; set Config.OperationTimeout to turn that into
// ErrStalled.
package collective
