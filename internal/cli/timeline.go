package cli

import (
	"fmt"
	"math"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"casr-tracker/internal/timeline"
)

func addTimeline(topLevel *cobra.Command) {
	var (
		mode  string
		today string
		width int
	)
	cmd := &cobra.Command{
		Use:   "timeline [FILE]",
		Short: "Draw the task timeline of an exported project.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := timeline.ParseMode(mode)
			if err != nil {
				return err
			}
			day, err := parseToday(today)
			if err != nil {
				return err
			}
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			projects, err := readProjects(path, cmd.InOrStdin())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, p := range projects {
				layout, err := timeline.Build(p.Tasks, m, day)
				if err != nil {
					return fmt.Errorf("%s: %w", p.Name, err)
				}
				fmt.Fprintf(out, "%s (%s .. %s, %s view)\n", bold(p.Name), layout.Start, layout.End, layout.Mode)
				fmt.Fprintln(out, renderBars(layout, width))
				if len(layout.Excluded) > 0 {
					fmt.Fprintf(out, "undated: %s\n", strings.Join(layout.Excluded, ", "))
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "week", "view mode: week or day")
	cmd.Flags().StringVar(&today, "today", "", "today's marker date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&width, "width", 60, "chart width in characters")
	topLevel.AddCommand(cmd)
}

// renderBars scales the pixel layout down to width characters.
func renderBars(l timeline.Layout, width int) *uitable.Table {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold("Task"), bold("Start"), bold("Due"), "")
	scale := 0.0
	if l.TotalWidth > 0 && width > 0 {
		scale = float64(width) / l.TotalWidth
	}
	todayCol := -1
	if l.Today != nil {
		todayCol = int(l.Today.Offset * scale)
	}
	for _, b := range l.Bars {
		from := int(b.Offset * scale)
		n := int(math.Max(1, math.Round(b.Width*scale)))
		row := []rune(strings.Repeat(" ", width+1))
		for i := from; i < from+n && i < len(row); i++ {
			row[i] = '='
		}
		if todayCol >= 0 && todayCol < len(row) && row[todayCol] == ' ' {
			row[todayCol] = '|'
		}
		title := strings.Repeat("  ", b.Depth) + b.Title
		tbl.AddRow(title, b.Start, b.Due, strings.TrimRight(string(row), " "))
	}
	return tbl
}
