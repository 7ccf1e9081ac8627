// Package logrelay implements the log collection and upload subsystem of a
// resource-constrained endpoint.
//
// The package buffers application-generated log records in a pluggable storage
// engine, decides when accumulated records should be uploaded or evicted, renders
// them into a length-budgeted wire batch, and reconciles server acknowledgements
// back into storage state. It coordinates three externally owned collaborators:
//
//   - a Storage engine that owns the buffered records (see pkg/storage/memory and
//     pkg/storage/pebblestore for the engines shipped with this module)
//   - a transport layer that sends the serialized batch when signaled through
//     UploadTrigger
//   - a persisted SequenceSource that seeds the bucket-id counter once per process
//
// The Collector itself is single-threaded and performs no synchronization;
// thread-safety of concurrent Add/GetRecord/ShrinkToSize calls is the installed
// storage engine's responsibility.
//
// Basic usage:
//
//	store := memory.New()
//	collector, err := logrelay.NewCollector(logrelay.Config{
//		Storage:    store,
//		Properties: logrelay.DefaultProperties(),
//		Sequence:   logrelay.NewCounterSource(0),
//		Trigger:    transport,
//	})
//	if err != nil {
//		panic(err)
//	}
//
//	// Application threads hand records to the collector.
//	err = collector.AddRecord(record)
//
//	// The transport, once triggered, asks for the next batch.
//	block, err := collector.Serialize()
//
//	// ... and feeds the server acknowledgement back.
//	err = collector.HandleServerSync(wire.NewReader(response))
package logrelay
