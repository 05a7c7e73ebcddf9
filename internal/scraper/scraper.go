package scraper

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
	"golang.org/x/net/html"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// maxBodySize caps how much of a page is read before parsing.
	maxBodySize = 2 << 20

	DefaultTimeout          = 10 * time.Second
	DefaultMaxContentLength = 1000
)

// Params configures a Fetcher.
type Params struct {
	Timeout          time.Duration
	MaxContentLength int
	InsecureTLS      bool

	// Client overrides the HTTP client built from Timeout and InsecureTLS.
	Client *http.Client
}

// Fetcher downloads pages and extracts their main text.
type Fetcher struct {
	client    *http.Client
	maxLength int
}

// NewFetcher creates a Fetcher, filling zero params with defaults.
func NewFetcher(params Params) *Fetcher {
	if params.Timeout <= 0 {
		params.Timeout = DefaultTimeout
	}
	if params.MaxContentLength <= 0 {
		params.MaxContentLength = DefaultMaxContentLength
	}

	client := params.Client
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if params.InsecureTLS {
			transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
		}
		client = &http.Client{
			Timeout:   params.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				// Follow redirects but limit to 10
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	return &Fetcher{client: client, maxLength: params.MaxContentLength}
}

// Fetch downloads url and returns its cleaned main text. Failures are
// reported through the returned status, never as a Go error.
func (f *Fetcher) Fetch(ctx context.Context, url string) model.PageContent {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return failed(err.Error())
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9,en;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return failed(describeError(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return failed(fmt.Sprintf("HTTP %d", resp.StatusCode))
	}

	content, err := ExtractText(io.LimitReader(resp.Body, maxBodySize), f.maxLength)
	if err != nil {
		return failed(describeError(err))
	}

	return model.PageContent{Content: content, Status: model.ContentSuccess}
}

func failed(msg string) model.PageContent {
	return model.PageContent{Status: model.ContentError, Error: msg}
}

// describeError turns transport errors into short readable messages.
func describeError(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return "Timeout"
	}
	return normalizeError(err.Error())
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}

// ExtractText parses an HTML document and returns the whitespace-collapsed
// text of its main content, cut to maxLength runes plus "..." when longer.
func ExtractText(r io.Reader, maxLength int) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	text := mainText(doc)
	text = strings.Join(strings.Fields(text), " ")

	if maxLength > 0 {
		if runes := []rune(text); len(runes) > maxLength {
			text = string(runes[:maxLength]) + "..."
		}
	}
	return text, nil
}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true,
	"style":  true,
	"header": true,
	"footer": true,
	"nav":    true,
}

// mainText picks the content container: the first <article>, else the first
// <main>, else the <div> with the most text, else <body>.
func mainText(doc *html.Node) string {
	if n := findFirst(doc, "article"); n != nil {
		return textOf(n)
	}
	if n := findFirst(doc, "main"); n != nil {
		return textOf(n)
	}

	longest, found := "", false
	walkElements(doc, func(n *html.Node) {
		if n.Data != "div" {
			return
		}
		if text := textOf(n); !found || len(text) > len(longest) {
			longest, found = text, true
		}
	})
	if found {
		return longest
	}

	if body := findFirst(doc, "body"); body != nil {
		return textOf(body)
	}
	return ""
}

// walkElements visits element nodes in document order, not descending into
// skipped elements.
func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.ElementNode {
		if skipped[n.Data] {
			return
		}
		fn(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}

func findFirst(doc *html.Node, tag string) *html.Node {
	var found *html.Node
	walkElements(doc, func(n *html.Node) {
		if found == nil && n.Data == tag {
			found = n
		}
	})
	return found
}

// textOf joins the trimmed text nodes under n with single spaces.
func textOf(n *html.Node) string {
	var parts []string
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if s := strings.TrimSpace(n.Data); s != "" {
				parts = append(parts, s)
			}
			return
		case html.ElementNode:
			if skipped[n.Data] {
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(parts, " ")
}
