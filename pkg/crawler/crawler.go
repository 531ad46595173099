package crawler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"feedharvest/pkg/config"
	"feedharvest/pkg/dedup"
	errs "feedharvest/pkg/errors"
	"feedharvest/pkg/extract"
	"feedharvest/pkg/logger"
	"feedharvest/pkg/models"
	"feedharvest/pkg/ratelimit"
	"feedharvest/pkg/retry"
	"feedharvest/pkg/session"
	"feedharvest/pkg/surface"
)

// ArtifactWriter persists diagnostics when the results page never renders
type ArtifactWriter interface {
	WriteDebugArtifacts(html string, screenshot []byte) ([]string, error)
}

// Result is the outcome of one crawl
type Result struct {
	Query       string
	Records     []models.Record
	Rounds      int
	StopReason  StopReason
	State       State
	GeneratedAt time.Time
}

// Document wraps the result for serialization
func (r *Result) Document() *models.Document {
	return models.NewDocument(r.Query, r.GeneratedAt, r.Records)
}

// Crawler drives one authenticated feed through login, search and the
// scroll loop until a stop condition holds.
type Crawler struct {
	cfg       *config.Config
	launch    surface.Launcher
	sessions  session.Store
	extractor *extract.Extractor
	pacer     ratelimit.Limiter
	retry     *retry.Config
	artifacts ArtifactWriter
	observer  Observer
	logger    logger.Logger
	now       func() time.Time

	state State
}

// Option customizes a Crawler
type Option func(*Crawler)

// WithLogger sets the logger
func WithLogger(l logger.Logger) Option {
	return func(c *Crawler) { c.logger = l }
}

// WithPacer replaces the random scroll pacer
func WithPacer(p ratelimit.Limiter) Option {
	return func(c *Crawler) { c.pacer = p }
}

func WithRetry(r *retry.Config) Option {
	return func(c *Crawler) { c.retry = r }
}

// WithArtifacts sets where debug HTML and screenshots go when no results
// render
func WithArtifacts(w ArtifactWriter) Option {
	return func(c *Crawler) { c.artifacts = w }
}

func WithObserver(o Observer) Option {
	return func(c *Crawler) { c.observer = o }
}

func WithClock(now func() time.Time) Option {
	return func(c *Crawler) { c.now = now }
}

// New creates a crawler. launch starts render surfaces and sessions caches
// credentials between runs.
func New(cfg *config.Config, launch surface.Launcher, sessions session.Store, opts ...Option) (*Crawler, error) {
	if launch == nil {
		return nil, fmt.Errorf("surface launcher is required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session store is required")
	}

	c := &Crawler{
		cfg:      cfg,
		launch:   launch,
		sessions: sessions,
		observer: nopObserver{},
		logger:   logger.GetLogger(),
		now:      time.Now,
		state:    Unauthenticated,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.WithField("query", cfg.QueryString())
	if c.pacer == nil {
		c.pacer = ratelimit.NewPacer(cfg.Crawl.ScrollPauseMin, cfg.Crawl.ScrollPauseMax)
	}
	if c.retry == nil {
		c.retry = retry.FromConfig(cfg.Retry, c.logger)
	}

	ex, err := extract.New(cfg.Target.BaseURL, c.logger)
	if err != nil {
		return nil, err
	}
	c.extractor = ex
	return c, nil
}

// State returns the current controller state
func (c *Crawler) State() State {
	return c.state
}

// Run performs the crawl. The render surface is released on every path,
// including cancellation. On failure the returned result carries whatever
// was collected and state Aborted.
func (c *Crawler) Run(ctx context.Context) (*Result, error) {
	result := &Result{Query: c.cfg.QueryString()}
	c.state = Unauthenticated

	var surf surface.Surface
	defer func() {
		if surf == nil {
			return
		}
		if err := surf.Close(); err != nil {
			c.logger.WithError(err).Warn("failed to close render surface")
		}
	}()

	fail := func(err error) (*Result, error) {
		c.transition(Aborted)
		result.State = Aborted
		result.GeneratedAt = c.now()
		c.logger.WithError(err).ErrorWithFields("crawl aborted", map[string]interface{}{
			"type": string(errs.TypeOf(err)),
		})
		return result, err
	}

	set, authenticated := c.loadSession()

	var err error
	surf, err = c.launch(ctx, c.cfg.Browser.Headless && authenticated)
	if err != nil {
		return fail(errs.Surface("launch", err))
	}

	if !authenticated {
		c.transition(AwaitingLogin)
		set, err = c.login(ctx, surf)
		if err != nil {
			return fail(err)
		}

		if c.cfg.Browser.Headless {
			closing := surf
			surf = nil
			if err := closing.Close(); err != nil {
				c.logger.WithError(err).Warn("failed to close login surface")
			}
			surf, err = c.launch(ctx, true)
			if err != nil {
				return fail(errs.Surface("relaunch", err))
			}
		}
	}

	c.transition(Searching)
	if err := c.search(ctx, surf, set); err != nil {
		return fail(err)
	}

	c.transition(Scrolling)
	store := dedup.New()
	reason, rounds, err := c.paginate(ctx, surf, store)
	result.Rounds = rounds
	if err != nil {
		result.Records = store.Values(c.cfg.Crawl.TargetCount)
		return fail(err)
	}
	logger.LogStop(c.logger, string(reason), rounds, store.Size())

	c.transition(Draining)
	result.Records = store.Values(c.cfg.Crawl.TargetCount)
	result.StopReason = reason
	result.GeneratedAt = c.now()

	c.transition(Done)
	result.State = Done
	return result, nil
}

func (c *Crawler) transition(to State) {
	if c.state == to {
		return
	}
	logger.LogStateTransition(c.logger, c.state.String(), to.String())
	c.state = to
	c.observer.StateChanged(to.String())
}

// loadSession treats every store failure as a cache miss
func (c *Crawler) loadSession() (*session.CredentialSet, bool) {
	set, err := c.sessions.Load()
	if err != nil {
		c.logger.WithError(err).InfoWithFields("no usable session, interactive login required", map[string]interface{}{
			"location": c.sessions.Location(),
		})
		return nil, false
	}
	if !session.HasAuthMarker(set, c.cfg.Session.AuthMarker) {
		c.logger.InfoWithFields("session lacks auth marker, interactive login required", map[string]interface{}{
			"marker": c.cfg.Session.AuthMarker,
		})
		return nil, false
	}
	c.logger.DebugWithFields("session loaded", map[string]interface{}{
		"credentials": len(set.Credentials),
		"saved_at":    set.SavedAt,
	})
	return set, true
}

func (c *Crawler) login(ctx context.Context, surf surface.Surface) (*session.CredentialSet, error) {
	loginURL := c.cfg.LoginURL()
	if err := c.navigate(ctx, surf, loginURL); err != nil {
		return nil, err
	}
	c.observer.LoginRequired(loginURL)

	matched, err := c.await(ctx, surf, []string{extract.HomeMarker}, c.cfg.Crawl.LoginTimeout)
	if err != nil {
		return nil, err
	}
	if matched == "" {
		return nil, errs.LoginTimeout(fmt.Errorf("home marker not seen within %s", c.cfg.Crawl.LoginTimeout))
	}

	creds, err := retry.DoWithResult(ctx, surf.Credentials, c.retry)
	if err != nil {
		return nil, c.surfaceErr(ctx, "read credentials", err)
	}

	set := session.NewCredentialSet(c.cfg.TargetDomain(), creds, c.now())
	if err := c.sessions.Save(set); err != nil {
		c.logger.WithError(err).Warn("failed to persist session")
	} else {
		c.logger.InfoWithFields("session saved", map[string]interface{}{
			"credentials": len(set.Credentials),
			"location":    c.sessions.Location(),
		})
	}
	return set, nil
}

func (c *Crawler) search(ctx context.Context, surf surface.Surface, set *session.CredentialSet) error {
	if err := c.navigate(ctx, surf, c.cfg.Target.BaseURL); err != nil {
		return err
	}

	applied := session.Apply(ctx, set, c.cfg.TargetDomain(), surf, c.logger)
	c.logger.DebugWithFields("credentials applied", map[string]interface{}{"applied": applied})

	if err := c.navigate(ctx, surf, c.cfg.SearchURL()); err != nil {
		return err
	}

	if err := surf.Click(ctx, strings.Join(extract.ConsentDialogs, ", "), c.cfg.Crawl.DialogTimeout); err == nil {
		c.logger.Debug("consent dialog dismissed")
	}

	matched, err := c.await(ctx, surf, []string{extract.PostArticle}, c.cfg.Crawl.ResultsTimeout)
	if err != nil {
		return err
	}
	for _, fallback := range extract.ResultsFallbacks {
		if matched != "" {
			break
		}
		matched, err = c.await(ctx, surf, []string{fallback}, c.cfg.Crawl.FallbackTimeout)
		if err != nil {
			return err
		}
	}

	if matched == "" {
		c.writeDebugArtifacts(ctx, surf)
		return errs.NoResults(nil)
	}
	c.logger.DebugWithFields("results detected", map[string]interface{}{"selector": matched})
	return nil
}

// paginate runs the scroll loop and returns why it stopped and how many
// scroll rounds ran.
func (c *Crawler) paginate(ctx context.Context, surf surface.Surface, store *dedup.Store) (StopReason, int, error) {
	target := c.cfg.Crawl.TargetCount
	roundCap := c.cfg.Crawl.RoundCap

	last, err := c.height(ctx, surf)
	if err != nil {
		return StopNone, 0, err
	}

	rounds := 0
	for {
		added, err := c.harvest(ctx, surf, store)
		if err != nil {
			return StopNone, rounds, err
		}
		if store.Size() >= target {
			c.observer.RoundCompleted(rounds, added, store.Size())
			return StopTarget, rounds, nil
		}

		if err := c.do(ctx, "scroll", surf.ScrollToBottom); err != nil {
			return StopNone, rounds, err
		}
		if err := c.pacer.Wait(ctx); err != nil {
			return StopNone, rounds, err
		}
		rounds++

		if rounds >= roundCap {
			c.observer.RoundCompleted(rounds, added, store.Size())
			return StopRoundCap, rounds, nil
		}

		current, err := c.height(ctx, surf)
		if err != nil {
			return StopNone, rounds, err
		}

		if current == last {
			nudged, err := c.nudge(ctx, surf, store)
			if err != nil {
				return StopNone, rounds, err
			}
			added += nudged.added
			if nudged.height == last && nudged.added == 0 {
				c.observer.RoundCompleted(rounds, added, store.Size())
				return StopExhausted, rounds, nil
			}
			current = nudged.height
		}

		logger.LogRound(c.logger, rounds, added, store.Size(), current)
		c.observer.RoundCompleted(rounds, added, store.Size())
		last = current
	}
}

type nudgeResult struct {
	height int
	added  int
}

// nudge scrolls a short distance to trigger lazy loading that a jump to the
// bottom did not, then re-measures and re-extracts.
func (c *Crawler) nudge(ctx context.Context, surf surface.Surface, store *dedup.Store) (nudgeResult, error) {
	distance := c.cfg.Crawl.NudgeDistance
	err := c.do(ctx, "nudge", func(ctx context.Context) error {
		return surf.ScrollBy(ctx, distance)
	})
	if err != nil {
		return nudgeResult{}, err
	}
	if err := c.pacer.Wait(ctx); err != nil {
		return nudgeResult{}, err
	}

	h, err := c.height(ctx, surf)
	if err != nil {
		return nudgeResult{}, err
	}
	added, err := c.harvest(ctx, surf, store)
	if err != nil {
		return nudgeResult{}, err
	}
	c.logger.DebugWithFields("stall nudge", map[string]interface{}{
		"height": h,
		"new":    added,
	})
	return nudgeResult{height: h, added: added}, nil
}

func (c *Crawler) harvest(ctx context.Context, surf surface.Surface, store *dedup.Store) (int, error) {
	snap, err := retry.DoWithResult(ctx, surf.Snapshot, c.retry)
	if err != nil {
		return 0, c.surfaceErr(ctx, "snapshot", err)
	}
	return store.Merge(c.extractor.Extract(snap)), nil
}

func (c *Crawler) height(ctx context.Context, surf surface.Surface) (int, error) {
	h, err := retry.DoWithResult(ctx, surf.ContentHeight, c.retry)
	if err != nil {
		return 0, c.surfaceErr(ctx, "content height", err)
	}
	return h, nil
}

func (c *Crawler) navigate(ctx context.Context, surf surface.Surface, url string) error {
	return c.do(ctx, "navigate", func(ctx context.Context) error {
		return surf.Navigate(ctx, url)
	})
}

// do runs a surface operation with retries
func (c *Crawler) do(ctx context.Context, op string, fn retry.Operation) error {
	if err := retry.Do(ctx, fn, c.retry); err != nil {
		return c.surfaceErr(ctx, op, err)
	}
	return nil
}

func (c *Crawler) surfaceErr(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errs.Surface(op, err)
}

// await polls snapshots until one of selectors is present or timeout
// elapses. It returns the matching selector, or "" on timeout.
func (c *Crawler) await(ctx context.Context, surf surface.Surface, selectors []string, timeout time.Duration) (string, error) {
	deadline := time.Now().Add(timeout)
	failures := 0

	for {
		snap, err := surf.Snapshot(ctx)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			failures++
			if c.retry.MaxAttempts > 0 && failures >= c.retry.MaxAttempts {
				return "", errs.Surface("snapshot", err)
			}
		default:
			failures = 0
			for _, sel := range selectors {
				if ok, _ := extract.Present(snap, sel); ok {
					return sel, nil
				}
			}
		}

		if !time.Now().Before(deadline) {
			return "", nil
		}
		if err := retry.Wait(ctx, c.cfg.Crawl.PollInterval); err != nil {
			return "", err
		}
	}
}

// writeDebugArtifacts is best effort; failures are only logged
func (c *Crawler) writeDebugArtifacts(ctx context.Context, surf surface.Surface) {
	if c.artifacts == nil {
		return
	}

	var html string
	if snap, err := surf.Snapshot(ctx); err == nil {
		html = snap.HTML
	}
	png, err := surf.Screenshot(ctx)
	if err != nil {
		c.logger.WithError(err).Debug("screenshot failed")
	}

	paths, err := c.artifacts.WriteDebugArtifacts(html, png)
	if err != nil {
		c.logger.WithError(err).Warn("failed to write debug artifacts")
		return
	}
	c.logger.WarnWithFields("no results detected, debug artifacts written", map[string]interface{}{
		"files": paths,
	})
}
