package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show database statistics",
		Run:   runStats,
	}

	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	stats, err := s.Stats(cmd.Context(), cfg.Database.Path)
	if err != nil {
		exitErr("stats", err)
	}

	printResult(stats, []string{"stat", "value"}, func() [][]string {
		rows := [][]string{
			{"db_path", stats.DBPath},
			{"db_size_bytes", strconv.FormatInt(stats.DBSizeBytes, 10)},
			{"participants", strconv.Itoa(stats.Participants)},
			{"trials", strconv.Itoa(stats.Trials)},
			{"errors", strconv.Itoa(stats.Errors)},
			{"saccades", strconv.Itoa(stats.Saccades)},
		}
		for _, ss := range stats.Sessions {
			rows = append(rows, []string{"trials " + ss.SessionType, strconv.Itoa(ss.Trials)})
		}
		for _, ek := range stats.ErrorKinds {
			rows = append(rows, []string{"errors " + ek.ErrType, strconv.Itoa(ek.Count)})
		}
		return rows
	})
}
