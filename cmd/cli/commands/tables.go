package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/rodizio/pkg/db"
)

// TablesCmd creates the tables command
func TablesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "Show the logical to physical table mapping and which tables exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			existing := make(map[string]bool)
			if app.Lister != nil {
				names, err := app.Lister.ListTables(app.Ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					existing[name] = true
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-14s %-24s %s\n", "LOGICAL", "PHYSICAL", "EXISTS")
			for _, logical := range db.LogicalTables {
				physical := app.Database.PhysicalName(logical)
				status := "no"
				if existing[physical] {
					status = "yes"
				}
				if app.Lister == nil {
					status = "?"
				}
				fmt.Fprintf(out, "%-14s %-24s %s\n", logical, physical, status)
			}
			return nil
		},
	}
}
