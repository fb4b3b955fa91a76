package commands

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/pkg/core/model"
	"github.com/jakechorley/rodizio/pkg/core/rodizio"
	"github.com/jakechorley/rodizio/pkg/core/services"
)

// ViewCmd creates the view command
func ViewCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view [week]",
		Short: "View the consolidated rotation for a week (defaults to the latest)",
		Long: `View the consolidated rotation for a week. The week may be given as 2026-W07,
a bare week number, or a date inside the week. Without a week the latest week
with availability is shown.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var weekKey string
			if len(args) > 0 {
				weekKey = args[0]
			}
			outPath, _ := cmd.Flags().GetString("out")

			app.Logger.Debug("view command", zap.String("week", weekKey), zap.String("out", outPath))

			result, err := services.ViewRodizio(app.Ctx, app.Database, app.Recorder, app.Logger, weekKey, app.now())
			if err != nil {
				return err
			}

			printRodizio(cmd.OutOrStdout(), result)

			if outPath == "" {
				return nil
			}
			if err := writeCSVFile(outPath, result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Exported %d drivers to %s\n", len(result.Rows), outPath)
			return nil
		},
	}

	cmd.Flags().StringP("out", "o", "", "Also write the rotation to this CSV file")

	return cmd
}

func writeCSVFile(path string, result *services.RodizioResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := rodizio.WriteCSV(f, result.Rows); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printRodizio renders the rotation as a fixed-width table, lowest priority first
func printRodizio(w io.Writer, result *services.RodizioResult) {
	fmt.Fprintf(w, "\nRodízio %s (%d drivers)\n\n", result.Week, len(result.Rows))

	nameWidth := 20
	for _, r := range result.Rows {
		if len(r.DriverName) > nameWidth {
			nameWidth = len(r.DriverName)
		}
	}

	header := fmt.Sprintf("%-4s %-10s %-*s %-5s %-4s %-4s %-5s %-8s %-6s %-6s %-8s %s",
		"#", "ID", nameWidth, "NAME", "BASE", "REF", "DISP", "CARG", "NO TURNO", "TAXA%", "PEN", "INDICE", "STATUS")
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, strings.Repeat("-", len(header)))

	for i, r := range result.Rows {
		fmt.Fprintf(w, "%-4d %-10s %-*s %-5s %-4s %-4d %-5d %-8d %-6s %-6s %-8s %s\n",
			i+1,
			r.DriverID,
			nameWidth, r.DriverName,
			r.BaseShift.Display(),
			r.ReferenceShift,
			r.DispTotal,
			r.CargTotal,
			r.CargInShift,
			number(r.ShiftUtilisationRatePct),
			number(r.Penalty),
			number(r.PriorityIndex),
			statusLabel(r),
		)
	}
	fmt.Fprintln(w)

	if len(result.Weeks) > 1 {
		fmt.Fprintf(w, "Other weeks: %s\n\n", strings.Join(otherWeeks(result), ", "))
	}
}

func statusLabel(r model.RodizioRow) string {
	if r.ShiftOrigin == model.OriginInferred {
		return r.Status + " (turno inferido)"
	}
	return r.Status
}

func otherWeeks(result *services.RodizioResult) []string {
	out := make([]string, 0, len(result.Weeks))
	for _, w := range result.Weeks {
		if w != result.Week {
			out = append(out, w)
		}
	}
	return out
}

func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
