package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/report"
)

func init() {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write an HTML chart report for a participant",
		Run:   runReport,
	}

	cmd.Flags().StringP("participant", "p", "", "Participant ID (required)")
	cmd.Flags().StringP("out", "o", "", "Output file (default: report-<participant>.html)")
	cmd.MarkFlagRequired("participant")

	RootCmd.AddCommand(cmd)
}

func runReport(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")
	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = fmt.Sprintf("report-%s.html", pid)
	}

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sum, trials, err := summarize(cmd.Context(), s, pid)
	if err != nil {
		exitErr("report", err)
	}

	f, err := os.Create(out)
	if err != nil {
		exitErr("create report", err)
	}
	defer f.Close()
	if err := report.Render(f, sum, trials); err != nil {
		exitErr("report", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"participant":%q,"file":%q}`+"\n", pid, out)
}
