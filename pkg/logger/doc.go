// Package logger provides the structured logging interface used across
// feedharvest.
//
// It wraps zerolog behind a small Logger interface so that packages can carry
// fields (query, round, state) without depending on zerolog directly, and so
// tests can swap in a TestLogger that captures messages.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("query", cfg.QueryString())
//	log.InfoWithFields("round complete", map[string]interface{}{
//	    "round":   3,
//	    "new":     12,
//	    "total":   57,
//	})
//
// Console output goes to stderr and is colorized only when stderr is a
// terminal. Setting logging.file additionally appends JSON lines to that file.
package logger
