// Package cli implements casrctl, an offline companion to the dashboard:
// it evaluates exported project JSON and mints development tokens.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"casr-tracker/internal/models"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "casrctl",
		Short:         "Inspect CASR project exports from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	addStatus(cmd)
	addTimeline(cmd)
	addToken(cmd)
	return cmd
}

// readProjects accepts a single project object or an array of them. An
// empty path or "-" reads stdin.
func readProjects(path string, stdin io.Reader) ([]models.Project, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var projects []models.Project
		if err := json.Unmarshal(data, &projects); err != nil {
			return nil, fmt.Errorf("parse %s: %w", displayName(path), err)
		}
		return projects, nil
	}
	var p models.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", displayName(path), err)
	}
	return []models.Project{p}, nil
}

func displayName(path string) string {
	if path == "" || path == "-" {
		return "stdin"
	}
	return path
}

// parseToday reads --today, defaulting to the current date.
func parseToday(s string) (time.Time, error) {
	if s == "" {
		return models.Day(time.Now()), nil
	}
	d, ok, err := models.ParseDate(s)
	if err != nil || !ok {
		return time.Time{}, fmt.Errorf("--today: %q is not a date", s)
	}
	return d, nil
}
