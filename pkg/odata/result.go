package odata

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/packfeed/packfeed/pkg/feed"
)

// DefaultMaxPageFetches caps the number of continuation pages fetched
// beyond the first during one iteration. A server that keeps echoing a
// continuation link would otherwise drive the iterator forever.
const DefaultMaxPageFetches = 100

// ErrTooManyPages is returned when an iteration exceeds its continuation
// fetch cap. It signals a protocol anomaly, not a transient fault, and
// iteration aborts with no partial silent success.
var ErrTooManyPages = errors.New("continuation links did not converge: possible infinite loop")

// Result is a lazy sequence over the entities matched by one executed
// query. Each call to Each restarts from the first page, which is held
// from execution time; later pages are fetched on demand, strictly in
// server-declared order, and never cached across calls.
type Result struct {
	query CompiledQuery
	first *Response
}

func newResult(query CompiledQuery, first *Response) *Result {
	return &Result{query: query, first: first}
}

// Each yields every matched entity in order, fetching continuation pages
// as needed. The callback's error stops iteration and is returned
// unchanged. Transport and parse failures propagate; nothing is retried
// here.
func (r *Result) Each(ctx context.Context, fn func(feed.Entry) error) error {
	maxFetches := r.query.maxPageFetches
	if maxFetches == 0 {
		maxFetches = DefaultMaxPageFetches
	}

	page := r.first
	fetches := 0
	for {
		// Capture the continuation target before scanning the page, then
		// re-read it afterwards; a page is terminal only when the link is
		// absent and nothing changed between the two reads.
		before, err := feed.NextLink(page.Body)
		if err != nil {
			return err
		}

		parsed, err := feed.Parse(page.Body)
		if err != nil {
			return err
		}
		for _, entry := range parsed.Entries {
			if err := fn(entry); err != nil {
				return err
			}
		}

		after := parsed.NextLink
		if after == before && after == "" {
			return nil
		}

		if fetches == maxFetches {
			return errors.Wrapf(ErrTooManyPages, "aborting after %d continuation fetches", fetches)
		}
		next, rawURL := r.normalizeLink(after)
		page, err = r.query.svc.Execute(ctx, next, rawURL)
		if err != nil {
			return errors.Wrapf(err, "failed to fetch continuation page %q", after)
		}
		fetches++
	}
}

// All collects every matched entity into a slice.
func (r *Result) All(ctx context.Context) ([]feed.Entry, error) {
	var entries []feed.Entry
	err := r.Each(ctx, func(e feed.Entry) error {
		entries = append(entries, e)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// normalizeLink strips the service root from an advertised continuation
// href so only the relative request remains. Servers are known to answer
// on the other scheme than the one queried, so both the http and https
// spellings of the root are stripped. A known protocol quirk, not a
// transport concern.
func (r *Result) normalizeLink(href string) (link string, rawURL bool) {
	for _, base := range schemeVariants(r.query.svc.ServiceURL()) {
		if idx := strings.Index(href, base); idx >= 0 {
			href = href[idx+len(base):]
			href = strings.TrimPrefix(href, "/")
			return href, false
		}
	}
	// A link outside the service root is fetched as-is.
	return href, strings.Contains(href, "://")
}

// schemeVariants returns the base URL under both schemes.
func schemeVariants(base string) []string {
	switch {
	case strings.HasPrefix(base, "http://"):
		return []string{base, "https://" + strings.TrimPrefix(base, "http://")}
	case strings.HasPrefix(base, "https://"):
		return []string{base, "http://" + strings.TrimPrefix(base, "https://")}
	default:
		return []string{base}
	}
}
