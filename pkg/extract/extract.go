// Package extract turns a rendered feed snapshot into records.
//
// Extraction is pure: the same snapshot always yields the same records, so
// the controller may re-run it after a nudge without side effects. A post
// whose author block is missing is skipped; every other field degrades to
// its zero value.
package extract

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"feedharvest/pkg/logger"
	"feedharvest/pkg/models"
	"feedharvest/pkg/surface"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	errNoAuthor = errors.New("author block missing")
	errNoName   = errors.New("display name missing")
)

// Extractor parses snapshots of one service
type Extractor struct {
	base   *url.URL
	host   string
	logger logger.Logger
}

// New creates an extractor for the service at baseURL. Relative links are
// resolved against the snapshot URL, or baseURL when the snapshot has none.
func New(baseURL string, log logger.Logger) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}
	if log == nil {
		log = logger.GetLogger()
	}
	return &Extractor{
		base:   base,
		host:   normalizeHost(base.Hostname()),
		logger: log,
	}, nil
}

// Extract returns the well-formed posts in document order
func (e *Extractor) Extract(snap *surface.Snapshot) []models.Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		e.logger.WithError(err).Warn("snapshot could not be parsed")
		return nil
	}

	base := e.base
	if snap.URL != "" {
		if u, err := url.Parse(snap.URL); err == nil && u.Host != "" {
			base = u
		}
	}

	var records []models.Record
	skipped := 0
	doc.Find(PostArticle).Each(func(_ int, item *goquery.Selection) {
		r, err := e.extractItem(item, base)
		if err != nil {
			skipped++
			return
		}
		records = append(records, r)
	})

	if skipped > 0 {
		e.logger.DebugWithFields("skipped malformed posts", map[string]interface{}{
			"skipped":   skipped,
			"extracted": len(records),
		})
	}
	return records
}

func (e *Extractor) extractItem(item *goquery.Selection, base *url.URL) (models.Record, error) {
	author := item.Find(PostAuthor).First()
	if author.Length() == 0 {
		return models.Record{}, errNoAuthor
	}
	name := author.Find("span").First()
	if name.Length() == 0 {
		return models.Record{}, errNoName
	}

	r := models.Record{
		DisplayName: strings.TrimSpace(name.Text()),
		Handle:      e.handle(author, base),
		Text:        postText(item),
		Replies:     count(replyChain.Find(item)),
		Retweets:    count(retweetChain.Find(item)),
		Likes:       count(likeChain.Find(item)),
	}

	if t := item.Find(PostTime).First(); t.Length() > 0 {
		if dt, ok := t.Attr("datetime"); ok {
			if ts, err := time.Parse(time.RFC3339, dt); err == nil {
				r.Timestamp = &ts
			}
		}
		if href, ok := t.Closest("a").Attr("href"); ok {
			if abs := resolve(base, href); abs != nil {
				link := abs.String()
				r.Permalink = &link
			}
		}
	}

	return r, nil
}

// postText joins every text node under the text container, in document
// order, trimmed and separated by single spaces
func postText(item *goquery.Selection) string {
	container := item.Find(PostText).First()
	if container.Length() == 0 {
		return ""
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				if text := strings.TrimSpace(c.Data); text != "" {
					parts = append(parts, text)
				}
			case html.ElementNode:
				if c.Data == "script" || c.Data == "style" {
					continue
				}
				walk(c)
			}
		}
	}
	for _, n := range container.Nodes {
		walk(n)
	}
	return strings.Join(parts, " ")
}

// handle returns "@name" from the first profile link in the author block
func (e *Extractor) handle(author *goquery.Selection, base *url.URL) string {
	var handle string
	author.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		u := resolve(base, href)
		if u == nil || normalizeHost(u.Hostname()) != e.host || strings.Contains(u.Path, "/status/") {
			return true
		}
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if last := segments[len(segments)-1]; last != "" {
			handle = "@" + last
			return false
		}
		return true
	})
	return handle
}

func count(s *goquery.Selection) int {
	if s.Length() == 0 {
		return 0
	}
	if label, ok := s.Attr("aria-label"); ok && strings.TrimSpace(label) != "" {
		return ParseCount(label)
	}
	return ParseCount(s.Text())
}

func resolve(base *url.URL, href string) *url.URL {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil
	}
	return base.ResolveReference(ref)
}

func normalizeHost(h string) string {
	return strings.TrimPrefix(strings.ToLower(h), "www.")
}

// Present reports whether any element in the snapshot matches selector
func Present(snap *surface.Snapshot, selector string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snap.HTML))
	if err != nil {
		return false, err
	}
	return doc.Find(selector).Length() > 0, nil
}
