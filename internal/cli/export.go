package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export trials as CSV or JSON",
		Long:  "Export completed trials. CSV output renders fields that do not apply to a session's response mode as NA.",
		Run:   runExport,
	}

	cmd.Flags().StringP("participant", "p", "", "Filter by participant ID")
	cmd.Flags().String("as", "csv", "Export format: csv or json")
	cmd.Flags().StringP("out", "o", "", "Output file (default: stdout)")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")
	as, _ := cmd.Flags().GetString("as")
	out, _ := cmd.Flags().GetString("out")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	var w io.Writer = os.Stdout
	if out != "" {
		f, err := os.Create(out)
		if err != nil {
			exitErr("create output", err)
		}
		defer f.Close()
		w = f
	}

	switch as {
	case "csv":
		rows, err := s.ExportTrials(cmd.Context(), pid)
		if err != nil {
			exitErr("export", err)
		}
		cw := csv.NewWriter(w)
		cw.Write(store.TrialColumns)
		cw.WriteAll(rows)
		if err := cw.Error(); err != nil {
			exitErr("write csv", err)
		}
	case "json":
		trials, err := s.ListTrials(cmd.Context(), store.TrialFilter{ParticipantID: pid})
		if err != nil {
			exitErr("export", err)
		}
		b, _ := json.MarshalIndent(trials, "", "  ")
		fmt.Fprintln(w, string(b))
	default:
		exitErr("export", fmt.Errorf("unknown format %q, want csv or json", as))
	}
}
