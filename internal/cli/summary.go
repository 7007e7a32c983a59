package cli

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/session"
	"github.com/rcliao/object-cueing/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Summarize a participant's performance",
		Run:   runSummary,
	}

	cmd.Flags().StringP("participant", "p", "", "Participant ID (required)")
	cmd.MarkFlagRequired("participant")

	RootCmd.AddCommand(cmd)
}

func runSummary(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	sum, _, err := summarize(cmd.Context(), s, pid)
	if err != nil {
		exitErr("summary", err)
	}
	printResult(sum, summaryHeaders, func() [][]string { return summaryRows(sum) })
}

// summarize loads a participant's trials and errors and computes their
// summary. The trials are returned for callers that chart them.
func summarize(ctx context.Context, s *store.SQLiteStore, pid string) (session.Summary, []model.TrialResult, error) {
	p, err := findParticipant(ctx, s, pid)
	if err != nil {
		return session.Summary{}, nil, err
	}
	trials, err := s.ListTrials(ctx, store.TrialFilter{ParticipantID: pid})
	if err != nil {
		return session.Summary{}, nil, err
	}
	errs, err := s.ListErrors(ctx, store.ErrorFilter{ParticipantID: pid})
	if err != nil {
		return session.Summary{}, nil, err
	}
	return session.Summarize(pid, p.Mode, trials, errs), trials, nil
}

func findParticipant(ctx context.Context, s *store.SQLiteStore, id string) (*model.Participant, error) {
	ps, err := s.ListParticipants(ctx)
	if err != nil {
		return nil, err
	}
	for i := range ps {
		if ps[i].ID == id {
			return &ps[i], nil
		}
	}
	return nil, fmt.Errorf("participant not found: %s", id)
}

var summaryHeaders = []string{"metric", "value"}

func summaryRows(s session.Summary) [][]string {
	rows := [][]string{
		{"participant", s.ParticipantID},
		{"session_type", string(s.SessionType)},
		{"completed", strconv.Itoa(s.Completed)},
	}
	kinds := make([]string, 0, len(s.Aborted))
	for k := range s.Aborted {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		rows = append(rows, []string{"aborted_" + k, strconv.Itoa(s.Aborted[model.ErrKind(k)])})
	}

	pct := func(v float64) string { return strconv.FormatFloat(v*100, 'f', 1, 64) + "%" }
	switch s.SessionType {
	case model.ModeKeypress:
		rows = append(rows,
			[]string{"mean_rt_ms", floatCell(s.MeanRT)},
			[]string{"rt_sd_ms", floatCell(s.RTSD)},
			[]string{"detection_rate", pct(s.DetectionRate)},
			[]string{"false_alarm_rate", pct(s.FalseAlarmRate)},
			[]string{"moved_eyes_rate", pct(s.MovedEyesRate)},
		)
		for _, t := range s.ByTarget {
			rows = append(rows, []string{"mean_rt_ms " + string(t.Target), floatCell(t.MeanRT)})
		}
	case model.ModeSaccade:
		rows = append(rows, []string{"acquisition_rate", pct(s.AcquisitionRate)})
		for _, t := range s.ByTarget {
			rows = append(rows, []string{"acquisition_rate " + string(t.Target), pct(t.AcquisitionRate)})
		}
	}
	return rows
}
