package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/crm-cleaner/internal/fetcher"
)

var processCmd = &cobra.Command{
	Use:   "process <file>",
	Short: "Clean a contact file synchronously",
	Long:  "Runs the full cleaning pipeline on a local CSV or XLSX file and prints the job result.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]

		if !fetcher.SupportedExt(path) {
			return eris.Errorf("unsupported file type: %s", path)
		}

		p, st, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		job, err := st.CreateJob(ctx, path)
		if err != nil {
			return eris.Wrap(err, "process: create job")
		}

		if err := p.Process(ctx, job.ID, path); err != nil {
			return err
		}

		done, err := st.GetJob(ctx, job.ID)
		if err != nil {
			return eris.Wrap(err, "process: reload job")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(done)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)
}
