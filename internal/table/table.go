// Package table holds the sort, filter, column-visibility and paging state
// shared by every record list.
package table

import (
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/constraints"
	"golang.org/x/text/cases"
)

type Direction string

const (
	Unsorted   Direction = ""
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// allColumns in State.Shown sets the visibility of unlisted columns.
const allColumns = "*"

const (
	DefaultPageSize = 25
	MaxPageSize     = 200
)

// Column describes how one field of T is shown, filtered and sorted.
type Column[T any] struct {
	Key   string
	Label string
	Value func(T) string
	// Compare orders rows; nil falls back to comparing Value.
	Compare func(a, b T) int
	// Locked columns cannot be hidden.
	Locked bool
	// HiddenByDefault columns start out hidden.
	HiddenByDefault bool
}

// By builds a comparator from an ordered key.
func By[T any, K constraints.Ordered](key func(T) K) func(a, b T) int {
	return func(a, b T) int {
		ka, kb := key(a), key(b)
		switch {
		case ka < kb:
			return -1
		case ka > kb:
			return 1
		}
		return 0
	}
}

// State is the per-view UI state of a table.
type State struct {
	SortKey  string            `json:"sortKey,omitempty"`
	SortDir  Direction         `json:"sortDir,omitempty"`
	Query    string            `json:"query,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
	Shown    map[string]bool   `json:"shown,omitempty"`
	Page     int               `json:"page"`
	PageSize int               `json:"pageSize"`
}

// ToggleSort cycles a column through asc, desc and unsorted. Switching to
// another column starts it ascending.
func (s *State) ToggleSort(key string) {
	if s.SortKey != key {
		s.SortKey, s.SortDir = key, Ascending
		return
	}
	switch s.SortDir {
	case Ascending:
		s.SortDir = Descending
	case Descending:
		s.SortKey, s.SortDir = "", Unsorted
	default:
		s.SortDir = Ascending
	}
}

// SetFilter sets or, for an empty value, clears a column filter. The page
// resets because the row count changes.
func (s *State) SetFilter(key, value string) {
	if s.Filters == nil {
		s.Filters = map[string]string{}
	}
	value = strings.TrimSpace(value)
	if value == "" {
		delete(s.Filters, key)
	} else {
		s.Filters[key] = value
	}
	s.Page = 1
}

func (s *State) ClearFilters() {
	s.Filters = nil
	s.Query = ""
	s.Page = 1
}

// Page is one page of rows plus what the view needs to render it.
type Page[T any] struct {
	Rows       []T      `json:"rows"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"pageSize"`
	TotalPages int      `json:"totalPages"`
	Columns    []string `json:"columns"`
	SortKey    string   `json:"sortKey,omitempty"`
	SortDir    string   `json:"sortDir,omitempty"`
}

// Table is a set of column definitions over rows of T.
type Table[T any] struct {
	columns []Column[T]
	byKey   map[string]int
}

func New[T any](cols ...Column[T]) *Table[T] {
	t := &Table[T]{columns: cols, byKey: make(map[string]int, len(cols))}
	for i, c := range cols {
		t.byKey[c.Key] = i
	}
	return t
}

func (t *Table[T]) column(key string) (Column[T], bool) {
	i, ok := t.byKey[key]
	if !ok {
		return Column[T]{}, false
	}
	return t.columns[i], true
}

// Visible reports whether a column is shown in state s.
func (t *Table[T]) Visible(s State, key string) bool {
	c, ok := t.column(key)
	if !ok {
		return false
	}
	if c.Locked {
		return true
	}
	if shown, set := s.Shown[key]; set {
		return shown
	}
	if shown, set := s.Shown[allColumns]; set {
		return shown
	}
	return !c.HiddenByDefault
}

// ToggleColumn flips a column's visibility.
func (t *Table[T]) ToggleColumn(s *State, key string) error {
	c, ok := t.column(key)
	if !ok {
		return fmt.Errorf("unknown column %q", key)
	}
	if c.Locked {
		return fmt.Errorf("column %q cannot be hidden", key)
	}
	visible := t.Visible(*s, key)
	if s.Shown == nil {
		s.Shown = map[string]bool{}
	}
	s.Shown[key] = !visible
	return nil
}

// VisibleColumns lists the keys of shown columns in definition order.
func (t *Table[T]) VisibleColumns(s State) []string {
	var keys []string
	for _, c := range t.columns {
		if t.Visible(s, c.Key) {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// Apply filters, sorts and pages rows. rows is not modified.
func (t *Table[T]) Apply(rows []T, s State) Page[T] {
	fold := cases.Fold()
	query := fold.String(strings.TrimSpace(s.Query))

	filters := make(map[int]string, len(s.Filters))
	for key, v := range s.Filters {
		if i, ok := t.byKey[key]; ok {
			filters[i] = fold.String(v)
		}
	}

	out := make([]T, 0, len(rows))
	for _, r := range rows {
		if t.matches(r, query, filters, fold) {
			out = append(out, r)
		}
	}

	if c, ok := t.column(s.SortKey); ok && s.SortDir != Unsorted {
		cmp := c.Compare
		if cmp == nil {
			cmp = By(func(r T) string { return fold.String(c.Value(r)) })
		}
		slices.SortStableFunc(out, func(a, b T) int {
			if s.SortDir == Descending {
				return cmp(b, a)
			}
			return cmp(a, b)
		})
	}

	size := s.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	pages := (len(out) + size - 1) / size
	page := s.Page
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}
	from := min((page-1)*size, len(out))
	to := min(from+size, len(out))

	return Page[T]{
		Rows:       out[from:to],
		Total:      len(out),
		Page:       page,
		PageSize:   size,
		TotalPages: pages,
		Columns:    t.VisibleColumns(s),
		SortKey:    s.SortKey,
		SortDir:    string(s.SortDir),
	}
}

func (t *Table[T]) matches(r T, query string, filters map[int]string, fold cases.Caser) bool {
	for i, want := range filters {
		if !strings.Contains(fold.String(t.columns[i].Value(r)), want) {
			return false
		}
	}
	if query == "" {
		return true
	}
	for _, c := range t.columns {
		if strings.Contains(fold.String(c.Value(r)), query) {
			return true
		}
	}
	return false
}

// ParseState reads sort, dir, q, f.<column>, cols, page and pageSize.
// cols lists the columns to show; everything else is hidden.
func ParseState(q url.Values) State {
	s := State{
		SortKey: q.Get("sort"),
		Query:   q.Get("q"),
	}
	switch Direction(strings.ToLower(q.Get("dir"))) {
	case Descending:
		s.SortDir = Descending
	case Ascending:
		s.SortDir = Ascending
	default:
		if s.SortKey != "" {
			s.SortDir = Ascending
		}
	}
	for key, vals := range q {
		if name, ok := strings.CutPrefix(key, "f."); ok && len(vals) > 0 {
			s.SetFilter(name, vals[0])
		}
	}
	if cols := q.Get("cols"); cols != "" {
		s.Shown = map[string]bool{allColumns: false}
		for _, c := range strings.Split(cols, ",") {
			if c = strings.TrimSpace(c); c != "" {
				s.Shown[c] = true
			}
		}
	}
	s.Page, _ = strconv.Atoi(q.Get("page"))
	s.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	return s
}
