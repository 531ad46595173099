// Package surface drives the browser that renders the feed.
//
// The crawl controller only talks to the Surface interface: navigate, take an
// immutable snapshot of the rendered document, measure and scroll the page,
// click, screenshot, and move cookies in and out. RodSurface implements it
// with a Chromium instance controlled over the DevTools protocol.
package surface

import (
	"context"
	"time"

	"feedharvest/pkg/session"
)

// Snapshot is an immutable copy of the rendered document
type Snapshot struct {
	// URL is the page address when the snapshot was taken, used to resolve
	// relative links.
	URL   string
	HTML  string
	Taken time.Time
}

// Surface is a live, stateful rendered page
type Surface interface {
	Navigate(ctx context.Context, url string) error
	Snapshot(ctx context.Context) (*Snapshot, error)
	// ContentHeight returns the scrollable height of the document in pixels
	ContentHeight(ctx context.Context) (int, error)
	ScrollToBottom(ctx context.Context) error
	ScrollBy(ctx context.Context, dy int) error
	// Click clicks the first element matching selector, waiting up to timeout
	// for it to appear.
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Screenshot(ctx context.Context) ([]byte, error)
	SetCredential(ctx context.Context, c session.Credential) error
	Credentials(ctx context.Context) ([]session.Credential, error)
	Close() error
}

// Launcher starts a fresh surface, visible or headless
type Launcher func(ctx context.Context, headless bool) (Surface, error)
