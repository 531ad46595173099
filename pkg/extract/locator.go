package extract

import "github.com/PuerkitoBio/goquery"

// Strategy locates elements relative to a selection
type Strategy func(*goquery.Selection) *goquery.Selection

// Selector finds descendants matching a CSS selector
func Selector(css string) Strategy {
	return func(s *goquery.Selection) *goquery.Selection {
		return s.Find(css)
	}
}

// Chain tries strategies in order
type Chain []Strategy

// Find returns the first non-empty match, or an empty selection
func (c Chain) Find(s *goquery.Selection) *goquery.Selection {
	for _, strategy := range c {
		if found := strategy(s); found.Length() > 0 {
			return found.First()
		}
	}
	return s.Slice(0, 0)
}

var (
	replyChain   = Chain{Selector(ReplyButton)}
	retweetChain = Chain{Selector(RetweetButton), Selector(UnretweetButton)}
	likeChain    = Chain{Selector(LikeButton), Selector(UnlikeButton)}
)
