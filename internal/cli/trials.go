package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "trials",
		Short: "List completed trials",
		Run:   runTrials,
	}

	cmd.Flags().StringP("participant", "p", "", "Filter by participant ID")
	cmd.Flags().IntP("block", "b", 0, "Filter by block number")
	cmd.Flags().IntP("limit", "l", 0, "Max results (0: all)")

	RootCmd.AddCommand(cmd)
}

func runTrials(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")
	block, _ := cmd.Flags().GetInt("block")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	trials, err := s.ListTrials(cmd.Context(), store.TrialFilter{
		ParticipantID: pid,
		BlockNum:      block,
		Limit:         limit,
	})
	if err != nil {
		exitErr("list trials", err)
	}

	headers := []string{"id", "block", "trial", "alignment", "cue", "target", "acquired", "rt", "moved_eyes"}
	printResult(trials, headers, func() [][]string {
		rows := make([][]string, 0, len(trials))
		for _, t := range trials {
			rows = append(rows, trialRow(t))
		}
		return rows
	})
}

func trialRow(t model.TrialResult) []string {
	return []string{
		strconv.FormatInt(t.ID, 10),
		strconv.Itoa(t.BlockNum),
		strconv.Itoa(t.TrialNum),
		string(t.Alignment),
		string(t.Cue),
		string(t.Target),
		boolCell(t.TargetAcquired),
		intCell(t.KeypressRT),
		boolCell(t.MovedEyes),
	}
}
