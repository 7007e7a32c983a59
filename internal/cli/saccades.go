package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "saccades",
		Short: "List stored saccades",
		Run:   runSaccades,
	}

	cmd.Flags().StringP("participant", "p", "", "Filter by participant ID")
	cmd.Flags().Int64P("trial", "t", 0, "Filter by trial ID")

	RootCmd.AddCommand(cmd)
}

func runSaccades(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")
	trialID, _ := cmd.Flags().GetInt64("trial")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	saccades, err := s.ListSaccades(cmd.Context(), store.SaccadeFilter{
		ParticipantID: pid,
		TrialID:       trialID,
	})
	if err != nil {
		exitErr("list saccades", err)
	}

	headers := []string{"id", "trial_id", "rt", "accuracy", "dist", "end_x", "end_y", "duration"}
	printResult(saccades, headers, func() [][]string {
		rows := make([][]string, 0, len(saccades))
		for _, sc := range saccades {
			rows = append(rows, []string{
				strconv.FormatInt(sc.ID, 10),
				strconv.FormatInt(sc.TrialID, 10),
				strconv.FormatInt(sc.RT, 10),
				string(sc.Accuracy),
				floatCell(sc.DistFromTarget),
				floatCell(sc.EndX),
				floatCell(sc.EndY),
				strconv.FormatInt(sc.Duration, 10),
			})
		}
		return rows
	})
}
