package logging

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func TestCustomFormatter_Layout(t *testing.T) {
	f := &CustomFormatter{
		SystemName: "dashboard-service",
		NewEventID: func() string { return "evt-1" },
	}
	entry := &logrus.Entry{
		Time:    time.Date(2026, 3, 1, 1, 30, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "Event ID: X, Description: y",
	}

	out, err := f.Format(entry)
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	got := string(out)
	want := "Date: 2026-03-01, Time: 08:30:00, Event Source: dashboard-service, Event Type: WARNING, Event ID: evt-1, Message: Event ID: X, Description: y, \n"
	if got != want {
		t.Errorf("Format =\n%q\nwant\n%q", got, want)
	}
}

func TestCustomFormatter_DefaultEventIDIsUUID(t *testing.T) {
	f := &CustomFormatter{SystemName: "chat-service"}
	out, err := f.Format(&logrus.Entry{Time: time.Now(), Level: logrus.InfoLevel, Message: "m"})
	if err != nil {
		t.Fatalf("Format: %v", err)
	}
	line := string(out)
	start := strings.Index(line, "Event ID: ")
	if start < 0 {
		t.Fatalf("no event id in %q", line)
	}
	id := strings.SplitN(line[start+len("Event ID: "):], ",", 2)[0]
	if len(id) != 36 {
		t.Errorf("event id %q is not a uuid", id)
	}
}
