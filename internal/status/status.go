// Package status derives the status a project is displayed with from its
// stored status and the state of its task tree.
package status

import (
	"fmt"
	"math"
	"time"

	"casr-tracker/internal/models"
)

// ErrInvalidDate is returned when a project date cannot be parsed.
var ErrInvalidDate = models.ErrInvalidDate

// LagThreshold is how many percentage points completion may trail elapsed
// time before a project is at risk.
const LagThreshold = 20.0

// Result is the derived status together with the signals behind it.
type Result struct {
	Status        models.ProjectStatus `json:"status"`
	Completed     int                  `json:"completed"`
	Total         int                  `json:"total"`
	Completion    float64              `json:"completion"`
	Elapsed       float64              `json:"elapsed"`
	Lag           float64              `json:"lag"`
	CriticalOpen  int                  `json:"criticalOpen"`
	DaysRemaining *int                 `json:"daysRemaining,omitempty"`
	Reason        string               `json:"reason"`
}

// Derive computes the displayed status of p as of today.
func Derive(p models.Project, today time.Time) (Result, error) {
	start, hasStart, err := models.ParseDate(p.StartDate)
	if err != nil {
		return Result{}, fmt.Errorf("start date: %w", err)
	}
	end, hasEnd, err := models.ParseDate(p.EndDate)
	if err != nil {
		return Result{}, fmt.Errorf("end date: %w", err)
	}
	today = models.Day(today)

	var res Result
	for _, t := range models.Flatten(p.Tasks) {
		res.Total++
		if t.Status == models.TaskDone {
			res.Completed++
		} else if t.Critical {
			res.CriticalOpen++
		}
	}
	if res.Total > 0 {
		res.Completion = round1(float64(res.Completed) / float64(res.Total) * 100)
	}
	if hasEnd {
		left := models.DaysBetween(today, end)
		res.DaysRemaining = &left
	}
	if hasStart && hasEnd {
		res.Elapsed = round1(elapsedRatio(start, end, today) * 100)
		res.Lag = round1(res.Elapsed - res.Completion)
	}

	switch {
	case res.Total > 0 && res.Completed == res.Total:
		res.Status, res.Reason = models.StatusCompleted, "all tasks done"
	case p.Status == models.StatusCompleted:
		res.Status, res.Reason = models.StatusCompleted, "marked completed"
	case hasEnd && today.After(end):
		res.Status, res.Reason = models.StatusOffTrack, "past end date"
	case res.CriticalOpen > 0:
		res.Status, res.Reason = models.StatusAtRisk, "open critical tasks"
	case hasStart && hasEnd && res.Lag > LagThreshold:
		res.Status, res.Reason = models.StatusAtRisk, "completion behind schedule"
	default:
		res.Status, res.Reason = models.StatusOnTrack, "on schedule"
	}
	return res, nil
}

// View wraps a project with its derived status. A date error leaves the
// stored status in place and reports the error on the view.
func View(p models.Project, today time.Time) models.ProjectView {
	v := models.ProjectView{Project: p, DerivedStatus: p.Status}
	res, err := Derive(p, today)
	if err != nil {
		v.StatusError = err.Error()
		return v
	}
	v.DerivedStatus = res.Status
	v.Progress = res.Completion
	return v
}

func elapsedRatio(start, end, today time.Time) float64 {
	span := end.Sub(start)
	if span <= 0 {
		if today.Before(start) {
			return 0
		}
		return 1
	}
	r := float64(today.Sub(start)) / float64(span)
	return math.Max(0, math.Min(1, r))
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
