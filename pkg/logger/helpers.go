package logger

// LogStateTransition records a crawl controller state change
func LogStateTransition(log Logger, from, to string) {
	log.DebugWithFields("state transition", map[string]interface{}{
		"from": from,
		"to":   to,
	})
}

// LogRound records the outcome of one pagination round
func LogRound(log Logger, round, added, total, height int) {
	log.InfoWithFields("round complete", map[string]interface{}{
		"round":  round,
		"new":    added,
		"total":  total,
		"height": height,
	})
}

// LogStop records why the pagination loop ended
func LogStop(log Logger, reason string, rounds, total int) {
	log.InfoWithFields("crawl stopped", map[string]interface{}{
		"reason": reason,
		"rounds": rounds,
		"total":  total,
	})
}
