package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rm",
		Short: "Delete a participant and all their data",
		Run:   runRm,
	}

	cmd.Flags().StringP("participant", "p", "", "Participant ID (required)")
	cmd.MarkFlagRequired("participant")

	RootCmd.AddCommand(cmd)
}

func runRm(cmd *cobra.Command, args []string) {
	pid, _ := cmd.Flags().GetString("participant")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	if err := s.RemoveParticipant(cmd.Context(), pid); err != nil {
		exitErr("rm", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"participant":%q}`+"\n", pid)
}
