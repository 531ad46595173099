// Package crawler drives one crawl of an authenticated, infinitely
// scrolling feed.
//
// The Crawler is a small state machine:
//
//	Unauthenticated -> AwaitingLogin -> Searching -> Scrolling -> Draining -> Done
//	                \________________________/          any state -> Aborted
//
// A cached session carrying the auth marker skips AwaitingLogin. In the
// login state a visible surface is opened on the login page and the crawl
// waits for the authenticated home marker, then persists the captured
// credentials and relaunches headless if that was requested.
//
// Scrolling repeats extract, merge, scroll to bottom and pause until one of
// three stop conditions holds:
//
//   - the deduplicated set reached the target count
//   - the round cap was reached
//   - the content height did not change after a scroll and after one short
//     nudge, and the nudge produced no new records (exhausted)
//
// Usage:
//
//	c, err := crawler.New(cfg, surface.NewRodLauncher(cfg.Browser, log), store,
//	    crawler.WithLogger(log),
//	    crawler.WithObserver(ui.NewRoundTracker(cfg.Crawl.TargetCount, cfg.Crawl.RoundCap, nil)),
//	)
//	if err != nil {
//	    return err
//	}
//	result, err := c.Run(ctx)
//
// Errors returned from Run are typed with pkg/errors so callers can map
// them to exit codes.
package crawler
