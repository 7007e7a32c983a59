package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "errors",
		Short: "List aborted trial attempts",
		Run:   runErrors,
	}

	cmd.Flags().StringP("participant", "p", "", "Filter by participant ID")
	cmd.Flags().StringP("type", "t", "", "Filter by error type: eye, early or key")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0: all)")

	RootCmd.AddCommand(cmd)
}

func runErrors(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")
	kind, _ := cmd.Flags().GetString("type")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	errs, err := s.ListErrors(cmd.Context(), store.ErrorFilter{
		ParticipantID: pid,
		ErrType:       model.ErrKind(kind),
		Limit:         limit,
	})
	if err != nil {
		exitErr("list errors", err)
	}

	headers := []string{"id", "block", "trial", "alignment", "cue", "target", "err_type"}
	printResult(errs, headers, func() [][]string {
		rows := make([][]string, 0, len(errs))
		for _, e := range errs {
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				strconv.Itoa(e.BlockNum),
				strconv.Itoa(e.TrialNum),
				string(e.Alignment),
				string(e.Cue),
				string(e.Target),
				string(e.ErrType),
			})
		}
		return rows
	})
}
