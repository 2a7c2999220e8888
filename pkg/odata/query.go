package odata

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Query is a fluent builder for one query expression against an entity
// set. Builder methods mutate and return the same instance; Compile
// snapshots the builder into an immutable CompiledQuery, so a Query may
// be reused or further mutated after execution without aliasing the
// in-flight result.
type Query struct {
	set *EntitySet

	filters     []Criteria
	orderBys    []string
	expands     []string
	selects     []string
	skip        int
	top         int
	inlineCount bool
	search      string

	maxPageFetches int
}

// Field resolves a property name against the entity set's schema and
// returns a Criteria bound to it, ready for a comparator. Unknown names
// fall back to raw tokens. Field does not mutate the Query.
func (q *Query) Field(name string) Criteria {
	return Criteria{prop: q.set.resolve(name)}
}

// Where appends a criteria to the filter. Multiple criteria conjunct
// with "and".
func (q *Query) Where(c Criteria) *Query {
	q.filters = append(q.filters, c)
	return q
}

// OrderBy appends ordering tokens, preserving call order.
func (q *Query) OrderBy(properties ...string) *Query {
	q.orderBys = append(q.orderBys, properties...)
	return q
}

// Expand appends association names to expand inline.
func (q *Query) Expand(associations ...string) *Query {
	q.expands = append(q.expands, associations...)
	return q
}

// Select appends projection tokens.
func (q *Query) Select(properties ...string) *Query {
	q.selects = append(q.selects, properties...)
	return q
}

// Skip sets the number of records to skip. Last call wins; zero means
// unset.
func (q *Query) Skip(n int) *Query {
	q.skip = n
	return q
}

// Limit sets the maximum number of records to return, rendered as $top.
// Last call wins; zero means unset.
func (q *Query) Limit(n int) *Query {
	q.top = n
	return q
}

// Search sets the free-text search term. Last call wins.
func (q *Query) Search(term string) *Query {
	q.search = term
	return q
}

// IncludeCount requests the total matching record count alongside the
// first page.
func (q *Query) IncludeCount() *Query {
	q.inlineCount = true
	return q
}

// MaxPageFetches overrides the pagination safety cap for results of this
// query. Zero keeps the default.
func (q *Query) MaxPageFetches(n int) *Query {
	q.maxPageFetches = n
	return q
}

// Compile snapshots the builder into an immutable compiled query.
func (q *Query) Compile() CompiledQuery {
	return CompiledQuery{
		set:            q.set.name,
		svc:            q.set.svc,
		criteria:       q.encodeCriteria(),
		maxPageFetches: q.maxPageFetches,
	}
}

// String renders the full query: the entity set name, then the criteria
// string behind "?" if any criteria are set.
func (q *Query) String() string {
	return q.Compile().String()
}

// Execute runs the compiled query against the entity set's service and
// wraps the first page in a Result.
func (q *Query) Execute(ctx context.Context) (*Result, error) {
	compiled := q.Compile()
	resp, err := q.set.svc.Execute(ctx, compiled.String(), false)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to execute query %q", compiled.String())
	}
	return newResult(compiled, resp), nil
}

// Count runs the query through the $count endpoint and returns the
// number of matching records.
func (q *Query) Count(ctx context.Context) (int, error) {
	request := q.set.name + "/$count"
	if criteria := q.encodeCriteria(); criteria != "" {
		request += "?" + criteria
	}
	resp, err := q.set.svc.Execute(ctx, request, false)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to execute count %q", request)
	}
	n, err := strconv.Atoi(strings.TrimSpace(resp.String()))
	if err != nil {
		return 0, errors.Wrapf(err, "malformed $count response %q", resp.String())
	}
	return n, nil
}

// Empty reports whether the query matches no records.
func (q *Query) Empty(ctx context.Context) (bool, error) {
	n, err := q.Count(ctx)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// encodeCriteria assembles the query-string fragments in their fixed
// order: filter, search, orderby, expand, select, inlinecount, skip,
// top. Empty categories contribute nothing.
func (q *Query) encodeCriteria() string {
	var fragments []string

	if len(q.filters) > 0 {
		rendered := make([]string, 0, len(q.filters))
		for _, c := range q.filters {
			rendered = append(rendered, c.String())
		}
		fragments = append(fragments, "$filter="+strings.Join(rendered, " and "))
	}
	if strings.TrimSpace(q.search) != "" {
		// The search directive always carries includePrerelease=false;
		// prerelease visibility is not part of this query surface.
		fragments = append(fragments, fmt.Sprintf("searchTerm=%s&includePrerelease=false", quote(q.search)))
	}
	if len(q.orderBys) > 0 {
		fragments = append(fragments, "$orderby="+strings.Join(q.orderBys, ","))
	}
	if len(q.expands) > 0 {
		fragments = append(fragments, "$expand="+strings.Join(q.expands, ","))
	}
	if len(q.selects) > 0 {
		fragments = append(fragments, "$select="+strings.Join(q.selects, ","))
	}
	if q.inlineCount {
		fragments = append(fragments, "$inlinecount=allpages")
	}
	if q.skip != 0 {
		fragments = append(fragments, fmt.Sprintf("$skip=%d", q.skip))
	}
	if q.top != 0 {
		fragments = append(fragments, fmt.Sprintf("$top=%d", q.top))
	}

	return strings.Join(fragments, "&")
}

// CompiledQuery is the immutable form of a Query at execution time.
type CompiledQuery struct {
	set            string
	svc            Service
	criteria       string
	maxPageFetches int
}

// Criteria returns the encoded criteria string, which may be empty.
func (c CompiledQuery) Criteria() string { return c.criteria }

// String renders the request: "<entity-set>?<criteria>", or just the
// entity set name when no criteria are set.
func (c CompiledQuery) String() string {
	if c.criteria == "" {
		return c.set
	}
	return c.set + "?" + c.criteria
}
