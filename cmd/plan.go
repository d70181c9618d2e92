package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"eznv-restore/internal/installer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	readyStyle  = cellStyle.Foreground(lipgloss.Color("2"))
	skipStyle   = cellStyle.Foreground(lipgloss.Color("3"))
	badStyle    = cellStyle.Foreground(lipgloss.Color("1"))
)

// statusColumn is the index of the status column in the plan table.
const statusColumn = 2

// newPlanCmd shows how each install file in a backup would be dispatched, without running anything.
func newPlanCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "plan <gist-id>",
		Short: "Show which installer handles each install file in a backup",
		Args:  o.sourceArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := o.newLogger(cmd)
			m, reg, err := o.load(cmd.Context(), log, args)
			if err != nil {
				return err
			}

			entries := installer.Plan(m, reg)
			if len(entries) == 0 {
				log.Warn("WARNING: NO \"*.install\" FILES IN BACKUP\n")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderPlan(entries))

			for _, e := range entries {
				if e.Err != nil {
					log.Error("ERROR: BAD INSTALL COMMAND FOR %q: %v\n", e.File, e.Err)
				}
			}
			return nil
		},
	}
}

// renderPlan draws the plan as a bordered table, one row per install file,
// with the status cell coloured by whether the file would run.
func renderPlan(entries []installer.PlanEntry) string {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.File, e.Key, string(e.Status), strconv.Itoa(e.Items), e.Example})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("FILE", "KEY", "STATUS", "ITEMS", "FIRST COMMAND").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col != statusColumn {
				return cellStyle
			}
			switch entries[row].Status {
			case installer.StatusReady:
				return readyStyle
			case installer.StatusBadTemplate:
				return badStyle
			default:
				return skipStyle
			}
		})
	return t.Render()
}
