package extract

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"feedharvest/pkg/logger"
	"feedharvest/pkg/surface"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snapshotURL = "https://x.com/search?q=paro&src=typed_query&f=live"

func post(handle, id, text string) string {
	return fmt.Sprintf(`
<article data-testid="tweet">
  <div data-testid="User-Name">
    <a href="/%[1]s"><div><span><span>Name %[1]s</span></span></div></a>
    <a href="/%[1]s"><span>@%[1]s</span></a>
    <a href="/%[1]s/status/%[2]s"><time datetime="2025-06-14T09:30:00.000Z">Jun 14</time></a>
  </div>
  <div data-testid="tweetText"><span>%[3]s</span></div>
  <div role="group">
    <div data-testid="reply" aria-label="3 Replies. Reply"><span>3</span></div>
    <div data-testid="retweet" aria-label="1,204 reposts. Repost"><span>1.2K</span></div>
    <div data-testid="like" aria-label="57 Likes. Like"><span>57</span></div>
  </div>
</article>`, handle, id, text)
}

func page(items ...string) string {
	return "<html><body><main role=\"main\">" + strings.Join(items, "\n") + "</main></body></html>"
}

func newExtractor(t *testing.T) *Extractor {
	e, err := New("https://x.com", logger.NewTestLogger())
	require.NoError(t, err)
	return e
}

func TestExtractWellFormedPost(t *testing.T) {
	e := newExtractor(t)
	records := e.Extract(&surface.Snapshot{URL: snapshotURL, HTML: page(post("ana", "100", "hola mundo"))})

	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Name ana", r.DisplayName)
	assert.Equal(t, "@ana", r.Handle)
	assert.Equal(t, "hola mundo", r.Text)
	require.NotNil(t, r.Timestamp)
	assert.True(t, r.Timestamp.Equal(time.Date(2025, 6, 14, 9, 30, 0, 0, time.UTC)))
	require.NotNil(t, r.Permalink)
	assert.Equal(t, "https://x.com/ana/status/100", *r.Permalink)
	assert.Equal(t, 3, r.Replies)
	assert.Equal(t, 1204, r.Retweets)
	assert.Equal(t, 57, r.Likes)
}

func TestExtractSkipsMalformedPosts(t *testing.T) {
	var items []string
	for i := 0; i < 7; i++ {
		items = append(items, post(fmt.Sprintf("user%d", i), fmt.Sprint(i), "texto"))
	}
	items = append(items,
		`<article data-testid="tweet"><div data-testid="tweetText"><span>no author</span></div></article>`,
		`<article data-testid="tweet"><div data-testid="User-Name"><a href="/ghost"></a></div></article>`,
		`<article data-testid="tweet"></article>`,
	)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: page(items...)})
	require.Len(t, records, 7)
	assert.Equal(t, "@user0", records[0].Handle)
	assert.Equal(t, "@user6", records[6].Handle)
}

func TestExtractIsRepeatable(t *testing.T) {
	e := newExtractor(t)
	snap := &surface.Snapshot{URL: snapshotURL, HTML: page(post("a", "1", "x"), post("b", "2", "y"))}

	assert.Equal(t, e.Extract(snap), e.Extract(snap))
}

func TestExtractTextJoinsTextNodes(t *testing.T) {
	html := page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/ana"><span>Ana</span></a></div>
  <div data-testid="tweetText">
    <span>Paro</span><a href="/hashtag/ecuador"><span>#Ecuador</span></a>
    <span><span>nested</span></span>
    <img alt="🇪🇨"><span>   </span><span>fin</span>
  </div>
</article>`)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: html})
	require.Len(t, records, 1)
	assert.Equal(t, "Paro #Ecuador nested fin", records[0].Text)
}

func textOf(t *testing.T, container string) string {
	t.Helper()
	html := page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/ana"><span>Ana</span></a></div>
  ` + container + `
</article>`)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: html})
	require.Len(t, records, 1)
	return records[0].Text
}

func TestExtractTextContainers(t *testing.T) {
	tests := []struct {
		name      string
		container string
		want      string
	}{
		{
			name:      "nested spans keep outer text",
			container: `<div data-testid="tweetText"><span>Hello <span>world</span></span></div>`,
			want:      "Hello world",
		},
		{
			name:      "bare text",
			container: `<div data-testid="tweetText">plain body text</div>`,
			want:      "plain body text",
		},
		{
			name:      "mixed text and elements",
			container: `<div data-testid="tweetText"><span>see</span> and <a href="/x">link</a></div>`,
			want:      "see and link",
		},
		{
			name:      "scripts ignored",
			container: `<div data-testid="tweetText">hola<script>var x = 1;</script></div>`,
			want:      "hola",
		},
		{
			name:      "missing container",
			container: `<div>outside</div>`,
			want:      "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textOf(t, tt.container))
		})
	}
}

func TestExtractTextFeedsIdentityWhenPermalinkMissing(t *testing.T) {
	e := newExtractor(t)
	a := e.Extract(&surface.Snapshot{URL: snapshotURL, HTML: page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/ana"><span>Ana</span></a></div>
  <div data-testid="tweetText">primero <span>uno</span></div>
</article>`)})
	b := e.Extract(&surface.Snapshot{URL: snapshotURL, HTML: page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/ana"><span>Ana</span></a></div>
  <div data-testid="tweetText">segundo <span>uno</span></div>
</article>`)})

	require.Len(t, a, 1)
	require.Len(t, b, 1)
	assert.NotEqual(t, a[0].Text, b[0].Text)
}

func TestExtractOptionalFields(t *testing.T) {
	html := page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><span>Sin Handle</span><a href="https://other.example/ana">ext</a></div>
  <time datetime="not-a-date">ayer</time>
</article>`)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: html})
	require.Len(t, records, 1)
	r := records[0]
	assert.Equal(t, "Sin Handle", r.DisplayName)
	assert.Empty(t, r.Handle)
	assert.Empty(t, r.Text)
	assert.Nil(t, r.Timestamp)
	assert.Nil(t, r.Permalink)
	assert.Zero(t, r.Replies)
	assert.Zero(t, r.Retweets)
	assert.Zero(t, r.Likes)
}

func TestExtractHandleSkipsStatusLinksAndForeignHosts(t *testing.T) {
	html := page(`
<article data-testid="tweet">
  <div data-testid="User-Name">
    <span>Luis</span>
    <a href="https://x.com/luis/status/9">status</a>
    <a href="https://elsewhere.com/impostor">foreign</a>
    <a href="https://www.x.com/luis_ec">profile</a>
  </div>
</article>`)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: html})
	require.Len(t, records, 1)
	assert.Equal(t, "@luis_ec", records[0].Handle)
}

func TestExtractEngagedStateCounts(t *testing.T) {
	html := page(`
<article data-testid="tweet">
  <div data-testid="User-Name"><a href="/ana"><span>Ana</span></a></div>
  <div data-testid="unretweet" aria-label="12 reposts. Reposted"></div>
  <div data-testid="unlike"><span>1,024</span></div>
</article>`)

	records := newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: html})
	require.Len(t, records, 1)
	assert.Equal(t, 12, records[0].Retweets)
	assert.Equal(t, 1024, records[0].Likes)
}

func TestExtractResolvesAgainstBaseWithoutSnapshotURL(t *testing.T) {
	records := newExtractor(t).Extract(&surface.Snapshot{HTML: page(post("ana", "5", "t"))})
	require.Len(t, records, 1)
	assert.Equal(t, "https://x.com/ana/status/5", *records[0].Permalink)
}

func TestExtractEmptySnapshot(t *testing.T) {
	assert.Empty(t, newExtractor(t).Extract(&surface.Snapshot{URL: snapshotURL, HTML: ""}))
}

func TestNewRejectsRelativeBase(t *testing.T) {
	_, err := New("/relative", nil)
	assert.Error(t, err)
}

func TestParseCount(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"Reply", 0},
		{"3 Replies. Reply", 3},
		{"1,204 reposts", 1204},
		{"12.345 Me gusta", 12345},
		{"1.2K", 12},
		{"likes: 7 of 9", 7},
		{"99999999999999999999999", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCount(tt.in))
		})
	}
}

func TestPresent(t *testing.T) {
	snap := &surface.Snapshot{HTML: page(post("a", "1", "x"))}

	ok, err := Present(snap, PostArticle)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Present(snap, HomeMarker)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = Present(snap, ResultsFallbacks[3])
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestChainFind(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<article><div data-testid="unlike">first</div><div data-testid="unlike">second</div></article>`))
	require.NoError(t, err)

	found := likeChain.Find(doc.Selection)
	assert.Equal(t, 1, found.Length())
	assert.Equal(t, "first", found.Text())

	missing := replyChain.Find(doc.Selection)
	assert.Zero(t, missing.Length())
}
