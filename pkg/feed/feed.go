// Package feed parses the Atom-style XML pages returned by OData v2
// services: feed documents containing entries, entry property bags, and
// the continuation ("next") links that drive pagination.
package feed

import (
	"bytes"
	"encoding/xml"
	"io"

	"github.com/pkg/errors"
)

// Page is one decoded result page: the entries it contains, in document
// order, and the continuation link advertised by the server, if any.
type Page struct {
	Entries  []Entry
	NextLink string
}

// Entry is a single Atom entry together with its typed property bag.
type Entry struct {
	ID         string
	Title      string
	Updated    string
	Properties Properties
}

// Parse decodes a page body. The root element may be either a feed or a
// bare entry document; servers answer single-key lookups with the latter.
func Parse(body []byte) (*Page, error) {
	root, err := rootName(body)
	if err != nil {
		return nil, err
	}

	switch root {
	case "feed":
		var f xmlFeed
		if err := xml.Unmarshal(body, &f); err != nil {
			return nil, errors.Wrap(err, "failed to decode feed document")
		}
		page := &Page{NextLink: nextHref(f.Links)}
		for _, e := range f.Entries {
			page.Entries = append(page.Entries, e.toEntry())
		}
		return page, nil
	case "entry":
		var e xmlEntry
		if err := xml.Unmarshal(body, &e); err != nil {
			return nil, errors.Wrap(err, "failed to decode entry document")
		}
		return &Page{Entries: []Entry{e.toEntry()}}, nil
	default:
		return nil, errors.Errorf("unexpected root element %q in response body", root)
	}
}

// NextLink reads only the continuation link from a page body, without
// decoding the entries.
func NextLink(body []byte) (string, error) {
	var f struct {
		Links []xmlLink `xml:"link"`
	}
	if err := xml.Unmarshal(body, &f); err != nil {
		return "", errors.Wrap(err, "failed to read continuation link")
	}
	return nextHref(f.Links), nil
}

func rootName(body []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", errors.New("empty response body")
		}
		if err != nil {
			return "", errors.Wrap(err, "malformed response body")
		}
		if start, ok := tok.(xml.StartElement); ok {
			return start.Name.Local, nil
		}
	}
}

func nextHref(links []xmlLink) string {
	for _, l := range links {
		if l.Rel == "next" {
			return l.Href
		}
	}
	return ""
}

type xmlFeed struct {
	Links   []xmlLink  `xml:"link"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
}

// xmlEntry tolerates both property bag placements seen in the wild:
// nested under <content> (NuGet-style feeds) or directly under the entry.
type xmlEntry struct {
	ID      string         `xml:"id"`
	Title   string         `xml:"title"`
	Updated string         `xml:"updated"`
	Props   *xmlProperties `xml:"properties"`
	Content struct {
		Props *xmlProperties `xml:"properties"`
	} `xml:"content"`
}

func (e xmlEntry) toEntry() Entry {
	entry := Entry{
		ID:      e.ID,
		Title:   e.Title,
		Updated: e.Updated,
	}
	switch {
	case e.Content.Props != nil:
		entry.Properties = e.Content.Props.toProperties()
	case e.Props != nil:
		entry.Properties = e.Props.toProperties()
	}
	return entry
}
