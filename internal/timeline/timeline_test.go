package timeline

import (
	"errors"
	"testing"
	"time"

	"casr-tracker/internal/models"
)

// 2026-04-01 is a Wednesday.
var today = time.Date(2026, 4, 8, 14, 0, 0, 0, time.UTC)

func sample() []models.Task {
	return []models.Task{
		{ID: "draft", Title: "Draft NPRM", StartDate: "2026-04-01", DueDate: "2026-04-10", Subtasks: []models.Task{
			{ID: "review", Title: "Legal review", StartDate: "2026-04-06", DueDate: "2026-04-07"},
		}},
		{ID: "consult", Title: "Public consultation", StartDate: "2026-04-13", DueDate: "2026-04-26"},
		{ID: "undated", Title: "Undated", StartDate: "2026-04-13"},
	}
}

func TestBuild_DayMode(t *testing.T) {
	l, err := Build(sample(), ModeDay, today)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l.Start != "2026-04-01" || l.End != "2026-04-26" {
		t.Errorf("range = %s..%s", l.Start, l.End)
	}
	if len(l.Bars) != 3 {
		t.Fatalf("bars = %d, want 3", len(l.Bars))
	}
	review := l.Bars[1]
	if review.Offset != 5*40 || review.Width != 2*40 || review.Depth != 1 || review.ParentID != "draft" {
		t.Errorf("review bar = %+v", review)
	}
	if len(l.Columns) != 26 {
		t.Errorf("columns = %d, want 26", len(l.Columns))
	}
	if l.TotalWidth != 26*40 {
		t.Errorf("TotalWidth = %v", l.TotalWidth)
	}
	if len(l.Excluded) != 1 || l.Excluded[0] != "undated" {
		t.Errorf("Excluded = %v", l.Excluded)
	}
	if l.Today == nil || l.Today.Offset != 7*40 {
		t.Errorf("Today = %+v", l.Today)
	}
}

func TestBuild_WeekModeSnapsToMonday(t *testing.T) {
	l, err := Build(sample(), ModeWeek, today)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if l.Start != "2026-03-30" || l.End != "2026-04-26" {
		t.Errorf("range = %s..%s, want 2026-03-30..2026-04-26", l.Start, l.End)
	}
	if len(l.Columns) != 4 || l.Columns[1].Offset != 140 {
		t.Errorf("columns = %+v", l.Columns)
	}
	if got := l.Bars[0].Offset; got != 2*20 {
		t.Errorf("draft offset = %v, want 40", got)
	}
}

func TestBuild_TodayOutsideRangeHasNoMarker(t *testing.T) {
	l, err := Build(sample(), ModeDay, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatal(err)
	}
	if l.Today != nil {
		t.Errorf("Today = %+v, want nil", l.Today)
	}
}

func TestBuild_OffsetMonotonicInStart(t *testing.T) {
	for _, mode := range []Mode{ModeDay, ModeWeek} {
		var ts []models.Task
		base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 60; i += 3 {
			s := base.AddDate(0, 0, i)
			ts = append(ts, models.Task{
				ID:        s.Format(models.DateLayout),
				StartDate: s.Format(models.DateLayout),
				DueDate:   s.AddDate(0, 0, 60-i).Format(models.DateLayout),
			})
		}
		l, err := Build(ts, mode, today)
		if err != nil {
			t.Fatal(err)
		}
		for i := 1; i < len(l.Bars); i++ {
			if l.Bars[i].Offset <= l.Bars[i-1].Offset {
				t.Errorf("%s: offset[%d]=%v not after offset[%d]=%v", mode, i, l.Bars[i].Offset, i-1, l.Bars[i-1].Offset)
			}
		}
	}
}

func TestBuild_DueBeforeStartIsOneUnit(t *testing.T) {
	l, err := Build([]models.Task{{ID: "x", StartDate: "2026-04-10", DueDate: "2026-04-02"}}, ModeDay, today)
	if err != nil {
		t.Fatal(err)
	}
	if l.Bars[0].Width != 40 || l.End != "2026-04-10" {
		t.Errorf("bar = %+v end = %s", l.Bars[0], l.End)
	}
}

func TestBuild_MalformedDate(t *testing.T) {
	_, err := Build([]models.Task{{ID: "x", StartDate: "2026-04-10", DueDate: "soon"}}, ModeDay, today)
	if !errors.Is(err, models.ErrInvalidDate) {
		t.Errorf("err = %v, want ErrInvalidDate", err)
	}
}

func TestBuild_Empty(t *testing.T) {
	l, err := Build(nil, ModeWeek, today)
	if err != nil {
		t.Fatal(err)
	}
	if len(l.Bars) != 0 || l.Today != nil || l.Start != "" {
		t.Errorf("layout = %+v", l)
	}
}

func TestAttachEdges(t *testing.T) {
	l, err := Build(sample(), ModeDay, today)
	if err != nil {
		t.Fatal(err)
	}
	l.AttachEdges([]Edge{{From: "draft", To: "consult"}, {From: "undated", To: "consult"}})
	if len(l.Edges) != 1 {
		t.Fatalf("edges = %v", l.Edges)
	}
	if deps := l.Bars[2].DependsOn; len(deps) != 1 || deps[0] != "draft" {
		t.Errorf("consult depends on %v", deps)
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode(""); err != nil || m != ModeWeek {
		t.Errorf("ParseMode(\"\") = %q, %v", m, err)
	}
	if _, err := ParseMode("month"); err == nil {
		t.Error("ParseMode(month) accepted")
	}
}
