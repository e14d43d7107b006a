// Package search backs the global search palette: an in-memory index with
// one slot per source collection, each slot owned by a single subscription.
package search

import (
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

const DefaultGroupLimit = 5

// Item is one search result candidate.
type Item struct {
	Source   string   `json:"source"`
	ID       string   `json:"id"`
	ParentID string   `json:"parentId,omitempty"`
	TenantID string   `json:"-"`
	Title    string   `json:"title"`
	Subtitle string   `json:"subtitle,omitempty"`
	Keywords []string `json:"-"`
	Route    string   `json:"route"`
}

type Hit struct {
	Item
	Score int `json:"score"`
}

type Group struct {
	Source string `json:"source"`
	Label  string `json:"label"`
	Hits   []Hit  `json:"hits"`
	Total  int    `json:"total"`
}

// Index maps source key -> document id -> items of that document.
type Index struct {
	mu    sync.RWMutex
	slots map[string]map[string][]Item
}

func NewIndex() *Index {
	return &Index{slots: make(map[string]map[string][]Item)}
}

// Replace swaps out a whole source slot, used after an initial load.
func (ix *Index) Replace(source string, byDoc map[string][]Item) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.slots[source] = byDoc
}

// Upsert replaces the items of one document. No items removes it.
func (ix *Index) Upsert(source, docID string, items []Item) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	slot := ix.slots[source]
	if slot == nil {
		slot = make(map[string][]Item)
		ix.slots[source] = slot
	}
	if len(items) == 0 {
		delete(slot, docID)
		return
	}
	slot[docID] = items
}

func (ix *Index) Delete(source, docID string) {
	ix.Upsert(source, docID, nil)
}

// Len counts the items in a source slot.
func (ix *Index) Len(source string) int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	n := 0
	for _, items := range ix.slots[source] {
		n += len(items)
	}
	return n
}

// Search matches every whitespace separated term of query, case folded,
// against the items visible to tenant. Groups follow Sources order; empty
// groups are left out. A blank query matches nothing.
func (ix *Index) Search(tenant, query string, groupLimit int) []Group {
	fold := cases.Fold()
	terms := strings.Fields(fold.String(query))
	if len(terms) == 0 {
		return []Group{}
	}
	if groupLimit <= 0 {
		groupLimit = DefaultGroupLimit
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	groups := []Group{}
	for _, src := range Sources {
		var hits []Hit
		for _, items := range ix.slots[src.Key] {
			for _, it := range items {
				if tenant != "" && it.TenantID != "" && it.TenantID != tenant {
					continue
				}
				if score := scoreItem(it, terms, fold); score > 0 {
					hits = append(hits, Hit{Item: it, Score: score})
				}
			}
		}
		if len(hits) == 0 {
			continue
		}
		slices.SortFunc(hits, func(a, b Hit) int {
			if a.Score != b.Score {
				return b.Score - a.Score
			}
			return strings.Compare(a.Title, b.Title)
		})
		total := len(hits)
		if len(hits) > groupLimit {
			hits = hits[:groupLimit]
		}
		groups = append(groups, Group{Source: src.Key, Label: src.Label, Hits: hits, Total: total})
	}
	return groups
}

// scoreItem is 0 unless every term matches. Each term scores 3 for a
// title prefix, 2 inside the title and 1 anywhere else.
func scoreItem(it Item, terms []string, fold cases.Caser) int {
	title := fold.String(it.Title)
	rest := make([]string, 0, len(it.Keywords)+1)
	rest = append(rest, fold.String(it.Subtitle))
	for _, k := range it.Keywords {
		rest = append(rest, fold.String(k))
	}

	total := 0
	for _, term := range terms {
		switch {
		case strings.HasPrefix(title, term):
			total += 3
		case strings.Contains(title, term):
			total += 2
		case slices.ContainsFunc(rest, func(s string) bool { return strings.Contains(s, term) }):
			total++
		default:
			return 0
		}
	}
	return total
}
