package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// RoundTracker renders crawl progress on one console line
type RoundTracker struct {
	mu        sync.Mutex
	target    int
	roundCap  int
	round     int
	total     int
	lastAdded int
	state     string
	startTime time.Time
	notifier  *Notifier
}

// NewRoundTracker creates a tracker for a crawl aiming at target records
// within roundCap rounds.
func NewRoundTracker(target, roundCap int, notifier *Notifier) *RoundTracker {
	return &RoundTracker{
		target:    target,
		roundCap:  roundCap,
		startTime: time.Now(),
		notifier:  notifier,
	}
}

// StateChanged prints state transitions as highlighted markers
func (rt *RoundTracker) StateChanged(state string) {
	rt.mu.Lock()
	rt.state = state
	rt.mu.Unlock()

	printf("\n%s\n", Magenta("["+strings.ToUpper(state)+"]"))
}

// RoundCompleted records one pagination round and redraws the progress line
func (rt *RoundTracker) RoundCompleted(round, added, total int) {
	rt.mu.Lock()
	rt.round = round
	rt.lastAdded = added
	rt.total = total
	line := rt.line()
	rt.mu.Unlock()

	printf("\r%s", line)
}

// LoginRequired tells the user a browser window is waiting for sign-in
func (rt *RoundTracker) LoginRequired(url string) {
	msg := fmt.Sprintf("Sign in at %s in the opened browser window", url)
	if rt.notifier != nil {
		rt.notifier.SendNotification("Login required", msg)
		return
	}
	PrintWarning(msg)
}

// Rate returns records collected per minute
func (rt *RoundTracker) Rate() float64 {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	elapsed := time.Since(rt.startTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(rt.total) / elapsed
}

func (rt *RoundTracker) bar() string {
	progress := 0.0
	if rt.target > 0 {
		progress = float64(rt.total) / float64(rt.target)
	}
	if progress > 1 {
		progress = 1
	}
	filled := int(progress * barWidth)
	return strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, barWidth-filled)
}

func (rt *RoundTracker) line() string {
	return fmt.Sprintf("%s [%s] %d/%d • round %d/%d • +%d",
		Green("[HARVESTING]"),
		rt.bar(),
		rt.total,
		rt.target,
		rt.round,
		rt.roundCap,
		rt.lastAdded,
	)
}

// Finish terminates the progress line and prints a summary
func (rt *RoundTracker) Finish(reason string) {
	rate := rt.Rate()

	rt.mu.Lock()
	total, rounds := rt.total, rt.round
	elapsed := time.Since(rt.startTime).Round(time.Second)
	rt.mu.Unlock()

	printf("\n")
	PrintInfo("Stopped", reason)
	PrintInfo("Collected", fmt.Sprintf("%d posts in %d rounds (%s, %.1f posts/min)", total, rounds, elapsed, rate))
}
