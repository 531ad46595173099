// Package storage writes crawl results to disk.
//
// Every file is replaced atomically (temporary sibling, fsync, rename), so an
// interrupted run never leaves a truncated JSON or CSV behind. Output names
// carry a minute-resolution stamp: <prefix>_<YYYYMMDD_HHMM>.json and .csv.
//
// When output.sqlite is set, records are also inserted into a posts table
// keyed by the dedup key, so repeated runs accumulate without duplicates.
//
//	mgr, err := storage.NewManager(cfg.Output, log)
//	written, err := mgr.Write(ctx, models.NewDocument(query, time.Now(), records))
package storage
