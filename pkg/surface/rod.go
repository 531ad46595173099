package surface

import (
	"context"
	"fmt"
	"time"

	"feedharvest/pkg/config"
	"feedharvest/pkg/logger"
	"feedharvest/pkg/session"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
)

const (
	scrollToBottomJS = `() => window.scrollTo(0, document.body.scrollHeight)`
	scrollByJS       = `(dy) => window.scrollBy(0, dy)`
	contentHeightJS  = `() => document.body.scrollHeight`
)

// RodSurface is a Surface backed by a go-rod controlled Chromium
type RodSurface struct {
	launcher *launcher.Launcher
	browser  *rod.Browser
	page     *rod.Page
	logger   logger.Logger
}

// NewRodLauncher returns a Launcher that starts Chromium with cfg
func NewRodLauncher(cfg config.BrowserConfig, log logger.Logger) Launcher {
	return func(ctx context.Context, headless bool) (Surface, error) {
		return LaunchRod(ctx, cfg, headless, log)
	}
}

// LaunchRod starts a browser and opens a single page
func LaunchRod(ctx context.Context, cfg config.BrowserConfig, headless bool, log logger.Logger) (*RodSurface, error) {
	if log == nil {
		log = logger.GetLogger()
	}

	l := launcher.New().
		Context(ctx).
		Headless(headless).
		NoSandbox(true).
		Set(flags.Flag("disable-blink-features"), "AutomationControlled").
		Set(flags.Flag("window-size"), fmt.Sprintf("%d,%d", cfg.WindowWidth, cfg.WindowHeight))
	if cfg.Language != "" {
		l = l.Set(flags.Flag("lang"), cfg.Language)
	}
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		browser.Close()
		l.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	s := &RodSurface{launcher: l, browser: browser, page: page, logger: log}

	if cfg.UserAgent != "" {
		err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{
			UserAgent:      cfg.UserAgent,
			AcceptLanguage: cfg.Language,
		})
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("error setting user agent: %w", err)
		}
	}

	err = page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.WindowWidth,
		Height:            cfg.WindowHeight,
		DeviceScaleFactor: 1,
	})
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("error setting viewport: %w", err)
	}

	log.DebugWithFields("browser launched", map[string]interface{}{
		"headless": headless,
		"control":  controlURL,
	})
	return s, nil
}

func (s *RodSurface) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

func (s *RodSurface) Snapshot(ctx context.Context) (*Snapshot, error) {
	p := s.page.Context(ctx)

	html, err := p.HTML()
	if err != nil {
		return nil, fmt.Errorf("read page html: %w", err)
	}
	info, err := p.Info()
	if err != nil {
		return nil, fmt.Errorf("read page info: %w", err)
	}
	return &Snapshot{URL: info.URL, HTML: html, Taken: time.Now()}, nil
}

func (s *RodSurface) ContentHeight(ctx context.Context) (int, error) {
	res, err := s.page.Context(ctx).Eval(contentHeightJS)
	if err != nil {
		return 0, fmt.Errorf("measure content height: %w", err)
	}
	return res.Value.Int(), nil
}

func (s *RodSurface) ScrollToBottom(ctx context.Context) error {
	if _, err := s.page.Context(ctx).Eval(scrollToBottomJS); err != nil {
		return fmt.Errorf("scroll to bottom: %w", err)
	}
	return nil
}

func (s *RodSurface) ScrollBy(ctx context.Context, dy int) error {
	if _, err := s.page.Context(ctx).Eval(scrollByJS, dy); err != nil {
		return fmt.Errorf("scroll by %d: %w", dy, err)
	}
	return nil
}

func (s *RodSurface) Click(ctx context.Context, selector string, timeout time.Duration) error {
	el, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	if err := el.Context(ctx).Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %q: %w", selector, err)
	}
	return nil
}

func (s *RodSurface) Screenshot(ctx context.Context) ([]byte, error) {
	img, err := s.page.Context(ctx).Screenshot(false, nil)
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	return img, nil
}

func (s *RodSurface) SetCredential(ctx context.Context, c session.Credential) error {
	return s.page.Context(ctx).SetCookies([]*proto.NetworkCookieParam{toCookieParam(c)})
}

func (s *RodSurface) Credentials(ctx context.Context) ([]session.Credential, error) {
	cookies, err := s.browser.Context(ctx).GetCookies()
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}
	out := make([]session.Credential, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, fromCookie(c))
	}
	return out, nil
}

// Close releases the page, the browser and the launched process. It is safe
// to call more than once.
func (s *RodSurface) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher.Cleanup()
		s.launcher = nil
	}
	return err
}

func toCookieParam(c session.Credential) *proto.NetworkCookieParam {
	return &proto.NetworkCookieParam{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: proto.NetworkCookieSameSite(c.SameSite),
		Expires:  proto.TimeSinceEpoch(c.Expires),
	}
}

func fromCookie(c *proto.NetworkCookie) session.Credential {
	cred := session.Credential{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
		SameSite: string(c.SameSite),
	}
	if c.Expires > 0 {
		cred.Expires = float64(c.Expires)
	}
	return cred
}
