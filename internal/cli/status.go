package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"casr-tracker/internal/models"
	"casr-tracker/internal/status"
)

func addStatus(topLevel *cobra.Command) {
	var today string
	cmd := &cobra.Command{
		Use:   "status [FILE]",
		Short: "Derive the displayed status of exported projects.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold("Project"), bold("Stored"), bold("Derived"), bold("Done"), bold("Elapsed"), bold("Days left"), bold("Reason"))
			for _, p := range projects {
				res, err := status.Derive(p, day)
				if err != nil {
					tbl.AddRow(p.Name, string(p.Status), color.RedString("error"), "", "", "", err.Error())
					continue
				}
				tbl.AddRow(
					p.Name,
					string(p.Status),
					colorStatus(res.Status),
					fmt.Sprintf("%d/%d", res.Completed, res.Total),
					fmt.Sprintf("%.0f%%", res.Elapsed),
					daysLeft(res.DaysRemaining),
					res.Reason,
				)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return err
		},
	}
	cmd.Flags().StringVar(&today, "today", "", "evaluate as of this date (YYYY-MM-DD)")
	topLevel.AddCommand(cmd)
}

func bold(s string) string {
	return color.New(color.Bold).Sprint(s)
}

func colorStatus(s models.ProjectStatus) string {
	switch s {
	case models.StatusCompleted:
		return color.BlueString(string(s))
	case models.StatusOnTrack:
		return color.GreenString(string(s))
	case models.StatusAtRisk:
		return color.YellowString(string(s))
	case models.StatusOffTrack:
		return color.RedString(string(s))
	}
	return string(s)
}

func daysLeft(d *int) string {
	if d == nil {
		return "-"
	}
	return strconv.Itoa(*d)
}
