package ui

import (
	"bytes"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	prevOut := out
	prevColor := noColor.Load()
	out = buf
	noColor.Store(true)
	t.Cleanup(func() {
		out = prevOut
		noColor.Store(prevColor)
		SetQuietMode(false)
	})
	return buf
}

type recordingSender struct {
	titles []string
}

func (r *recordingSender) Send(title, message string) error {
	r.titles = append(r.titles, title)
	return nil
}

func TestPrintHelpers(t *testing.T) {
	buf := captureOutput(t)

	PrintInfo("Query", "paro nacional")
	PrintError("crawl failed", "surface closed")
	PrintWarning("no session")
	PrintSuccess("done")

	assert.Equal(t, "Query: paro nacional\ncrawl failed: surface closed\nno session\ndone\n", buf.String())
}

func TestQuietModeSuppressesOutput(t *testing.T) {
	buf := captureOutput(t)
	sender := &recordingSender{}
	n := NewNotifierWithSender(sender)

	SetQuietMode(true)
	PrintHighlight("hidden")
	n.SendSuccess("Done", "hidden")

	assert.Empty(t, buf.String())
	assert.Empty(t, sender.titles)
	assert.True(t, IsQuietMode())
}

func TestColorize(t *testing.T) {
	captureOutput(t)

	SetColor(true)
	assert.Equal(t, "\033[32mok\033[0m", Green("ok"))

	SetColor(false)
	assert.Equal(t, "ok", Green("ok"))
}

func TestRoundTracker(t *testing.T) {
	buf := captureOutput(t)
	rt := NewRoundTracker(10, 300, nil)

	rt.StateChanged("Scrolling")
	rt.RoundCompleted(1, 4, 4)
	rt.RoundCompleted(2, 6, 10)

	output := buf.String()
	assert.Contains(t, output, "[SCROLLING]")
	assert.Contains(t, output, "4/10 • round 1/300 • +4")
	assert.Contains(t, output, "10/10 • round 2/300 • +6")
	assert.Equal(t, strings.Repeat(ProgressBar, 20), rt.bar())

	rt.Finish("target")
	assert.Contains(t, buf.String(), "Stopped: target")
	assert.Contains(t, buf.String(), "Collected: 10 posts in 2 rounds")
	assert.Contains(t, buf.String(), "posts/min)")
}

func TestRoundTrackerRate(t *testing.T) {
	captureOutput(t)
	rt := NewRoundTracker(100, 10, nil)
	rt.startTime = time.Now().Add(-2 * time.Minute)
	rt.RoundCompleted(1, 30, 30)

	assert.InDelta(t, 15.0, rt.Rate(), 0.5)
}

func TestRoundTrackerProgressClamps(t *testing.T) {
	captureOutput(t)
	rt := NewRoundTracker(4, 10, nil)
	rt.RoundCompleted(1, 8, 8)
	assert.Equal(t, strings.Repeat(ProgressBar, 20), rt.bar())

	empty := NewRoundTracker(0, 10, nil)
	assert.Equal(t, strings.Repeat(ProgressEmpty, 20), empty.bar())
}

func TestLoginRequiredNotifies(t *testing.T) {
	buf := captureOutput(t)
	sender := &recordingSender{}
	rt := NewRoundTracker(5, 5, NewNotifierWithSender(sender))

	rt.LoginRequired("https://x.com/login")

	require.Len(t, sender.titles, 1)
	assert.Equal(t, "Login required", sender.titles[0])
	assert.Contains(t, buf.String(), "https://x.com/login")
}

func TestCommandSender(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on the true and false commands")
	}

	var got []string
	ok := &CommandSender{Name: "true", Args: func(title, message string) []string {
		got = []string{title, message}
		return nil
	}}
	assert.NoError(t, ok.Send("Crawl complete", "12 posts"))
	assert.Equal(t, []string{"Crawl complete", "12 posts"}, got)

	failing := &CommandSender{Name: "false", Args: func(string, string) []string { return nil }}
	assert.Error(t, failing.Send("a", "b"))
}
