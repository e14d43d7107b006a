// Package timeline lays out a project's tasks on a Gantt grid.
package timeline

import (
	"fmt"
	"time"

	"casr-tracker/internal/models"
)

type Mode string

const (
	ModeWeek Mode = "week"
	ModeDay  Mode = "day"
)

const (
	DayColumnWidth  = 40.0
	WeekColumnWidth = 140.0
)

// ParseMode defaults to week view for an empty string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return ModeWeek, nil
	case ModeWeek, ModeDay:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown view mode %q", s)
}

// UnitWidth is the width of one day in pixels.
func (m Mode) UnitWidth() float64 {
	if m == ModeDay {
		return DayColumnWidth
	}
	return WeekColumnWidth / 7
}

type Bar struct {
	TaskID    string   `json:"taskId"`
	Title     string   `json:"title"`
	Status    string   `json:"status"`
	Critical  bool     `json:"critical"`
	Assignees []string `json:"assignees"`
	Depth     int      `json:"depth"`
	ParentID  string   `json:"parentId,omitempty"`
	Start     string   `json:"start"`
	Due       string   `json:"due"`
	Offset    float64  `json:"offset"`
	Width     float64  `json:"width"`
	DependsOn []string `json:"dependsOn,omitempty"`
}

type Column struct {
	Label  string  `json:"label"`
	Start  string  `json:"start"`
	Offset float64 `json:"offset"`
	Width  float64 `json:"width"`
}

type Marker struct {
	Date   string  `json:"date"`
	Offset float64 `json:"offset"`
}

// Edge is a dependency: To cannot proceed before From.
type Edge struct {
	From string `json:"fromTaskId"`
	To   string `json:"toTaskId"`
}

type Layout struct {
	Mode       Mode     `json:"mode"`
	Start      string   `json:"start,omitempty"`
	End        string   `json:"end,omitempty"`
	UnitWidth  float64  `json:"unitWidth"`
	TotalWidth float64  `json:"totalWidth"`
	Columns    []Column `json:"columns"`
	Bars       []Bar    `json:"bars"`
	Today      *Marker  `json:"today,omitempty"`
	Excluded   []string `json:"excluded,omitempty"`
	Edges      []Edge   `json:"edges,omitempty"`
}

type span struct {
	task       models.FlatTask
	start, due time.Time
}

// Build lays out tasks, skipping those without both a start and a due
// date. A malformed date fails the whole layout.
func Build(tasks []models.Task, mode Mode, today time.Time) (Layout, error) {
	l := Layout{Mode: mode, UnitWidth: mode.UnitWidth(), Columns: []Column{}, Bars: []Bar{}}

	var spans []span
	for _, t := range models.Flatten(tasks) {
		start, okStart, err := models.ParseDate(t.StartDate)
		if err != nil {
			return Layout{}, fmt.Errorf("task %s start: %w", t.ID, err)
		}
		due, okDue, err := models.ParseDate(t.DueDate)
		if err != nil {
			return Layout{}, fmt.Errorf("task %s due: %w", t.ID, err)
		}
		if !okStart || !okDue {
			l.Excluded = append(l.Excluded, t.ID)
			continue
		}
		spans = append(spans, span{task: t, start: start, due: due})
	}
	if len(spans) == 0 {
		return l, nil
	}

	first, last := spans[0].start, spans[0].due
	for _, s := range spans {
		if s.start.Before(first) {
			first = s.start
		}
		end := s.due
		if end.Before(s.start) {
			end = s.start
		}
		if end.After(last) {
			last = end
		}
	}
	if mode == ModeWeek {
		first = weekStart(first)
		last = weekStart(last).AddDate(0, 0, 6)
	}

	unit := l.UnitWidth
	l.Start = first.Format(models.DateLayout)
	l.End = last.Format(models.DateLayout)
	l.TotalWidth = float64(models.DaysBetween(first, last)+1) * unit
	l.Columns = columns(first, last, mode)

	for _, s := range spans {
		days := models.DaysBetween(s.start, s.due) + 1
		if days < 1 {
			days = 1
		}
		l.Bars = append(l.Bars, Bar{
			TaskID:    s.task.ID,
			Title:     s.task.Title,
			Status:    string(s.task.Status),
			Critical:  s.task.Critical,
			Assignees: s.task.Assignees,
			Depth:     s.task.Depth,
			ParentID:  s.task.ParentID,
			Start:     s.start.Format(models.DateLayout),
			Due:       s.due.Format(models.DateLayout),
			Offset:    float64(models.DaysBetween(first, s.start)) * unit,
			Width:     float64(days) * unit,
		})
	}

	day := models.Day(today)
	if !day.Before(first) && !day.After(last) {
		l.Today = &Marker{
			Date:   day.Format(models.DateLayout),
			Offset: float64(models.DaysBetween(first, day)) * unit,
		}
	}
	return l, nil
}

// AttachEdges records dependencies whose both ends are laid out.
func (l *Layout) AttachEdges(edges []Edge) {
	index := make(map[string]int, len(l.Bars))
	for i, b := range l.Bars {
		index[b.TaskID] = i
	}
	for _, e := range edges {
		from, okFrom := index[e.From]
		to, okTo := index[e.To]
		if !okFrom || !okTo {
			continue
		}
		l.Edges = append(l.Edges, e)
		l.Bars[to].DependsOn = append(l.Bars[to].DependsOn, l.Bars[from].TaskID)
	}
}

func columns(first, last time.Time, mode Mode) []Column {
	var cols []Column
	unit := mode.UnitWidth()
	step := 1
	if mode == ModeWeek {
		step = 7
	}
	for d := first; !d.After(last); d = d.AddDate(0, 0, step) {
		cols = append(cols, Column{
			Label:  label(d, mode),
			Start:  d.Format(models.DateLayout),
			Offset: float64(models.DaysBetween(first, d)) * unit,
			Width:  float64(step) * unit,
		})
	}
	return cols
}

func label(d time.Time, mode Mode) string {
	if mode == ModeDay {
		return d.Format("Mon 02 Jan")
	}
	_, w := d.ISOWeek()
	return fmt.Sprintf("W%02d %s", w, d.Format("02 Jan"))
}

// weekStart is the Monday on or before d.
func weekStart(d time.Time) time.Time {
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}
