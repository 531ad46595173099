// Package ratelimit paces interactions with the render surface.
//
// The crawl loop pauses between scrolls for a duration drawn uniformly from
// the configured bounds:
//
//	pacer := ratelimit.NewPacer(1200*time.Millisecond, 2200*time.Millisecond)
//	if err := pacer.Wait(ctx); err != nil {
//	    return err // cancelled
//	}
package ratelimit
