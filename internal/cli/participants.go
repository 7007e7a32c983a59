package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	participantsCmd := &cobra.Command{
		Use:   "participants",
		Short: "Participant management",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all participants",
		Run:   runParticipantsList,
	}

	participantsCmd.AddCommand(listCmd)
	RootCmd.AddCommand(participantsCmd)
}

func runParticipantsList(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	ps, err := s.ListParticipants(cmd.Context())
	if err != nil {
		exitErr("list participants", err)
	}

	headers := []string{"id", "userhash", "session_type", "seed", "created_at"}
	printResult(ps, headers, func() [][]string {
		rows := make([][]string, 0, len(ps))
		for _, p := range ps {
			rows = append(rows, []string{
				p.ID,
				p.UserHash,
				string(p.Mode),
				strconv.FormatInt(p.Seed, 10),
				p.CreatedAt.Format(time.RFC3339),
			})
		}
		return rows
	})
}
