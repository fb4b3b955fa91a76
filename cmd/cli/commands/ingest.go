package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/rodizio/pkg/core/services"
	"github.com/jakechorley/rodizio/pkg/fileio"
	"github.com/jakechorley/rodizio/pkg/table"
)

// IngestCmd creates the ingest command
func IngestCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <stream> <file>",
		Short: "Clean an uploaded file and append it to storage",
		Long: fmt.Sprintf(`Clean a CSV or XLSX export with the ingestor for its stream and append the
records to storage. Streams: %s.`, strings.Join(streamNames(), ", ")),
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stream, err := services.ParseStream(args[0])
			if err != nil {
				return err
			}

			app.Logger.Debug("ingest command", zap.String("stream", string(stream)), zap.String("file", args[1]))

			raw, err := fileio.ReadFile(args[1])
			if err != nil {
				return err
			}

			result, err := services.IngestUpload(
				app.Ctx,
				app.Database,
				app.Recorder,
				app.Logger,
				stream,
				filepath.Base(args[1]),
				raw,
				app.Now,
			)
			if err != nil {
				var mce *table.MissingColumnError
				if errors.As(err, &mce) {
					return fmt.Errorf("upload rejected: %w", err)
				}
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %s upload stored\n\n", result.Stream)
			fmt.Fprintf(out, "Import ID:      %s\n", result.ImportID)
			fmt.Fprintf(out, "Rows read:      %d\n", result.Report.RowsIn)
			fmt.Fprintf(out, "Records stored: %d\n", result.Appended)
			fmt.Fprintf(out, "Rows skipped:   %d\n", result.Report.Skipped)
			fmt.Fprintf(out, "Duplicates:     %d\n", result.Report.Dupes)
			if result.AlreadyStored > 0 {
				fmt.Fprintf(out, "Already stored: %d\n", result.AlreadyStored)
			}
			if len(result.Weeks) > 0 {
				fmt.Fprintf(out, "Weeks:          %s\n", strings.Join(result.Weeks, ", "))
			}
			fmt.Fprintln(out)

			return nil
		},
	}
}

func streamNames() []string {
	names := make([]string, len(services.Streams))
	for i, s := range services.Streams {
		names[i] = string(s)
	}
	return names
}
