// Package report accumulates per-folder outcomes and writes the run's
// durable outputs.
//
// Every file a run produces shares one timestamp in its name, so reports
// from a single run group together and re-running never overwrites earlier
// results. The tabular outputs (CSV) and the hierarchical one (JSON) carry
// the same records; the text output is a quick grep-friendly digest.
package report
