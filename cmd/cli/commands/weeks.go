package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jakechorley/rodizio/pkg/core/services"
)

// WeeksCmd creates the weeks command
func WeeksCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "weeks",
		Short: "List the weeks with stored availability",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			weeks, err := services.ListWeeks(app.Ctx, app.Database, app.Logger, app.now())
			if errors.Is(err, services.ErrNoAvailability) {
				fmt.Fprintln(out, "No availability stored yet.")
				return nil
			}
			if err != nil {
				return err
			}

			for _, w := range weeks {
				fmt.Fprintln(out, w)
			}
			return nil
		},
	}
}
