package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the process-wide logrus instance shared by every service.
var Logger = logrus.New()
var once sync.Once

// CustomFormatter writes one line per entry in the
// "Date, Time, Event Source, Event Type, Event ID, Message" layout.
type CustomFormatter struct {
	SystemName string
	Location   *time.Location
	// NewEventID is swapped in tests to get stable output.
	NewEventID func() string
}

// Format generates the output bytes for a log entry.
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b *bytes.Buffer
	if entry.Buffer != nil {
		b = entry.Buffer
	} else {
		b = &bytes.Buffer{}
	}

	location := f.Location
	if location == nil {
		location = timezoneWIB()
	}
	localTime := entry.Time.In(location)

	b.WriteString(fmt.Sprintf("Date: %s, Time: %s, ", localTime.Format("2006-01-02"), localTime.Format("15:04:05")))
	b.WriteString(fmt.Sprintf("Event Source: %s, ", f.SystemName))
	b.WriteString(fmt.Sprintf("Event Type: %s, ", strings.ToUpper(entry.Level.String())))

	newID := f.NewEventID
	if newID == nil {
		newID = func() string { return uuid.New().String() }
	}
	b.WriteString(fmt.Sprintf("Event ID: %s, ", newID()))

	b.WriteString(fmt.Sprintf("Message: %s, ", entry.Message))

	if entry.HasCaller() {
		b.WriteString(fmt.Sprintf(" Location: %s:%d in %s", entry.Caller.File, entry.Caller.Line, entry.Caller.Function))
	}

	b.WriteByte('\n')

	return b.Bytes(), nil
}

// Jakarta time, the authority's office hours.
func timezoneWIB() *time.Location {
	return time.FixedZone("WIB", 7*60*60)
}

// Options control where and how much the logger writes.
type Options struct {
	SystemName string
	// FilePath is the rotated log file. Empty means stderr only.
	FilePath string
	Level    string
	// Console mirrors entries to stderr alongside the file.
	Console bool
}

// InitLogger configures the global logger once per process.
func InitLogger(opts Options) {
	once.Do(func() {
		var out io.Writer = os.Stderr

		if opts.FilePath != "" {
			dir := filepath.Dir(opts.FilePath)
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0700); err != nil {
					logrus.Fatalf("Event ID: LOG_DIR_CREATE_FAILED, Description: Failed to create log directory: %v", err)
				}
			}

			logFile := &lumberjack.Logger{
				Filename:   opts.FilePath,
				MaxSize:    10, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
			out = logFile
			if opts.Console {
				out = io.MultiWriter(logFile, os.Stderr)
			}
		}

		Logger.SetOutput(out)
		Logger.SetFormatter(&CustomFormatter{SystemName: opts.SystemName})

		level, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			level = logrus.InfoLevel
		}
		Logger.SetLevel(level)
		Logger.SetReportCaller(true)

		Logger.Infof("Event ID: LOGGER_INITIALIZED, Description: Logger initialized for %s, output to: %s", opts.SystemName, describeOutput(opts))
	})
}

func describeOutput(opts Options) string {
	if opts.FilePath == "" {
		return "stderr"
	}
	return opts.FilePath
}
