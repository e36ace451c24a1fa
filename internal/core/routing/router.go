// Package routing maps free-text queries to candidate category tags.
//
// Routing is a deliberately approximate keyword heuristic: each keyword in a
// static table is tested for substring containment in the lower-cased query.
// A short keyword can therefore match inside an unrelated longer word
// ("flow" inside "overflow"). This is a known precision limitation, accepted
// rather than special-cased; the retrieval engine's fallback gate catches
// low-confidence routings. Word-boundary matching was considered and
// rejected to keep the behaviour predictable across punctuation and
// compound product names ("PowerApps", "power apps").
package routing

import (
	"sort"
	"strings"
)

// Router resolves queries to category tag sets using static tables.
// It is pure and safe for concurrent use.
type Router struct {
	tables Tables
}

// NewRouter creates a router over the given tables. Empty maps are valid
// and make every query route to the empty set.
func NewRouter(tables Tables) *Router {
	if tables.Groups == nil {
		tables.Groups = map[string][]string{}
	}
	if tables.Keywords == nil {
		tables.Keywords = map[string]string{}
	}
	return &Router{tables: tables}
}

// Route returns the sorted, deduplicated set of category tags whose group
// keyword matched the query. An empty result means "no opinion" and the
// caller should use general search; it is never an error.
func (r *Router) Route(query string) []string {
	queryLower := strings.ToLower(query)
	if strings.TrimSpace(queryLower) == "" {
		return nil
	}

	groups := make(map[string]struct{})
	for keyword, group := range r.tables.Keywords {
		if strings.Contains(queryLower, keyword) {
			groups[group] = struct{}{}
		}
	}
	if len(groups) == 0 {
		return nil
	}

	seen := make(map[string]struct{})
	var tags []string
	for group := range groups {
		for _, tag := range r.tables.Groups[group] {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}

// AllCategories returns the sorted union of every group's member tags.
func (r *Router) AllCategories() []string {
	seen := make(map[string]struct{})
	var tags []string
	for _, members := range r.tables.Groups {
		for _, tag := range members {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags
}
