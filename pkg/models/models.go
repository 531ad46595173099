package models

import "time"

// Record is one harvested feed post
type Record struct {
	DisplayName string     `json:"display_name"`
	Handle      string     `json:"handle"`
	Text        string     `json:"text"`
	Timestamp   *time.Time `json:"timestamp"`
	Permalink   *string    `json:"permalink"`
	Replies     int        `json:"replies"`
	Retweets    int        `json:"retweets"`
	Likes       int        `json:"likes"`
}

// Document is the structured output written at the end of a crawl
type Document struct {
	Query       string    `json:"query"`
	GeneratedAt time.Time `json:"generated_at"`
	Count       int       `json:"count"`
	Tweets      []Record  `json:"tweets"`
}

// NewDocument wraps records into an output document
func NewDocument(query string, generatedAt time.Time, records []Record) *Document {
	if records == nil {
		records = []Record{}
	}
	return &Document{
		Query:       query,
		GeneratedAt: generatedAt,
		Count:       len(records),
		Tweets:      records,
	}
}

// TimestampString returns the RFC 3339 timestamp or "" when absent
func (r Record) TimestampString() string {
	if r.Timestamp == nil {
		return ""
	}
	return r.Timestamp.UTC().Format(time.RFC3339Nano)
}

// PermalinkString returns the permalink or "" when absent
func (r Record) PermalinkString() string {
	if r.Permalink == nil {
		return ""
	}
	return *r.Permalink
}
