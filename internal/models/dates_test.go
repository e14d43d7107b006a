package models

import (
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		ok      bool
		wantErr bool
	}{
		{"2026-04-01", "2026-04-01", true, false},
		{"2026-04-01T23:30:00+07:00", "2026-04-01", true, false},
		{"  ", "", false, false},
		{"", "", false, false},
		{"01/04/2026", "", false, true},
		{"2026-13-01", "", false, true},
	}
	for _, tt := range tests {
		got, ok, err := ParseDate(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidDate) {
				t.Errorf("ParseDate(%q) err = %v, want ErrInvalidDate", tt.in, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q) unexpected err %v", tt.in, err)
			continue
		}
		if ok != tt.ok {
			t.Errorf("ParseDate(%q) ok = %v, want %v", tt.in, ok, tt.ok)
		}
		if ok && got.Format(DateLayout) != tt.want {
			t.Errorf("ParseDate(%q) = %s, want %s", tt.in, got.Format(DateLayout), tt.want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 3, 28, 22, 0, 0, 0, time.UTC)
	b := time.Date(2026, 4, 2, 1, 0, 0, 0, time.UTC)
	if got := DaysBetween(a, b); got != 5 {
		t.Errorf("DaysBetween = %d, want 5", got)
	}
	if got := DaysBetween(b, a); got != -5 {
		t.Errorf("DaysBetween reversed = %d, want -5", got)
	}
}
