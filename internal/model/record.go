package model

import (
	"encoding/json"
	"strings"
	"time"
)

// Browser identifies where a bookmark was collected from.
type Browser string

const (
	Chrome   Browser = "Chrome"
	Edge     Browser = "Edge"
	Safari   Browser = "Safari"
	Firefox  Browser = "Firefox"
	Imported Browser = "Imported" // Netscape HTML export listed in config
)

// Writable reports whether bmtag knows how to rewrite this browser's store.
func (b Browser) Writable() bool {
	return b == Chrome || b == Edge
}

// SentinelTag marks a record whose enrichment failed.
const SentinelTag = "error"

// DateLayout is the wire format of BookmarkRecord.DateAdded.
const DateLayout = "2006-01-02 15:04:05"

// ContentStatus is the outcome of fetching a bookmark's page.
type ContentStatus string

const (
	ContentSuccess ContentStatus = "success"
	ContentError   ContentStatus = "error"
)

// PageContent holds the representative text scraped from a bookmark's page.
type PageContent struct {
	Content string        `json:"content,omitempty"`
	Status  ContentStatus `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// OK reports whether the fetch succeeded.
func (p *PageContent) OK() bool {
	return p != nil && p.Status == ContentSuccess
}

// Labels is the tag assignment of a record. The tagging service returns a
// single string, but clients may send an array; both decode here.
type Labels []string

// First returns the first label, or "" when there is none.
func (l Labels) First() string {
	if len(l) == 0 {
		return ""
	}
	return strings.TrimSpace(l[0])
}

// Tagged reports whether the first label is a usable tag.
func (l Labels) Tagged() bool {
	first := l.First()
	return first != "" && first != SentinelTag
}

func (l Labels) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

func (l *Labels) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*l = nil
		} else {
			*l = Labels{single}
		}
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		// Anything else (numbers, objects) counts as untagged.
		*l = nil
		return nil
	}
	*l = many
	return nil
}

// BookmarkRecord is one collected bookmark plus optional enrichment.
type BookmarkRecord struct {
	Title       string
	URL         string
	DateAdded   time.Time
	Browser     Browser
	PageContent *PageContent
	Tags        Labels
}

type recordJSON struct {
	Title       string       `json:"title"`
	URL         string       `json:"url"`
	DateAdded   string       `json:"date_added,omitempty"`
	Browser     Browser      `json:"browser,omitempty"`
	PageContent *PageContent `json:"page_content,omitempty"`
	Tags        Labels       `json:"ai_tags,omitempty"`
}

func (r BookmarkRecord) MarshalJSON() ([]byte, error) {
	out := recordJSON{
		Title:       r.Title,
		URL:         r.URL,
		Browser:     r.Browser,
		PageContent: r.PageContent,
		Tags:        r.Tags,
	}
	if !r.DateAdded.IsZero() {
		out.DateAdded = r.DateAdded.Local().Format(DateLayout)
	}
	return json.Marshal(out)
}

func (r *BookmarkRecord) UnmarshalJSON(data []byte) error {
	var in recordJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*r = BookmarkRecord{
		Title:       in.Title,
		URL:         in.URL,
		Browser:     in.Browser,
		PageContent: in.PageContent,
		Tags:        in.Tags,
	}
	if in.DateAdded != "" {
		if t, err := time.ParseInLocation(DateLayout, in.DateAdded, time.Local); err == nil {
			r.DateAdded = t
		}
	}
	return nil
}
