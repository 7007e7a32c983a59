package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rcliao/object-cueing/internal/config"
	"github.com/rcliao/object-cueing/internal/milestone"
	"github.com/rcliao/object-cueing/internal/model"
	"github.com/rcliao/object-cueing/internal/recorder"
	"github.com/rcliao/object-cueing/internal/session"
	"github.com/rcliao/object-cueing/internal/sim"
	"github.com/rcliao/object-cueing/internal/store"
	"github.com/rcliao/object-cueing/internal/trial"
)

func init() {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a session with a simulated participant",
		Long: "Runs a full session against a simulated participant on a virtual clock. " +
			"Trials, aborted attempts and saccades are stored like a live session.",
		Run: runRun,
	}

	cmd.Flags().StringP("mode", "m", "", "Response mode: saccade or keypress (default from config)")
	cmd.Flags().String("trials-file", "", "CSV trial list with box_alignment, cue_location, target_location columns")
	cmd.Flags().Int64("seed", 0, "Random seed for the deck and the participant (0: time-based)")
	cmd.Flags().Int("blocks", 0, "Number of blocks (default from config)")
	cmd.Flags().Int("trials-per-block", 0, "Completed trials per block (default from config)")
	cmd.Flags().Float64("p-break-fixation", -1, "Probability the participant breaks fixation before the target")
	cmd.Flags().Float64("p-early-press", -1, "Probability of a premature response key press")
	cmd.Flags().Float64("p-miss", -1, "Probability the first saccade misses the target")

	RootCmd.AddCommand(cmd)
}

func runRun(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig()
	if err != nil {
		exitErr("load config", err)
	}
	if err := applyRunFlags(cmd, cfg); err != nil {
		exitErr("run", err)
	}
	mode := cfg.ResponseMode()

	log := newLogger(cfg)
	defer log.Sync()

	s, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	l, err := cfg.Layout()
	if err != nil {
		exitErr("layout", err)
	}

	var design []model.Factors
	if path := cfg.Experiment.TrialsFile; path != "" {
		f, err := os.Open(path)
		if err != nil {
			exitErr("open trials file", err)
		}
		design, err = session.LoadTrialList(f, mode)
		f.Close()
		if err != nil {
			exitErr("load trials file", err)
		}
	}

	clock := sim.NewClock(cfg.Display.RefreshStepMS)
	observer := sim.NewParticipant(clock, mode, l.Center(), behavior(cmd, cfg), log)

	tr, err := trial.NewRunner(cfg.Trial(), trial.Deps{
		Clock:   clock,
		Gaze:    observer,
		Keys:    observer,
		Display: observer,
		Layout:  l,
		Errors:  s,
		Log:     log,
	})
	if err != nil {
		exitErr("trial runner", err)
	}

	sess, err := session.NewRunner(session.Config{
		Blocks:         cfg.Experiment.Blocks,
		TrialsPerBlock: cfg.Experiment.TrialsPerBlock,
		Seed:           cfg.Experiment.Seed,
		Design:         design,
	}, session.Deps{
		Trials:       tr,
		Recorder:     recorder.New(s, log),
		Participants: s,
		Display:      observer,
		Keys:         observer,
		Log:          log,
	})
	if err != nil {
		exitErr("session", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := sess.Run(ctx)
	if err != nil {
		if res != nil {
			log.Warn("session stopped early",
				zap.String("participant", res.Participant.ID),
				zap.Int("completed", res.Completed),
				zap.Error(err))
		}
		exitErr("run session", err)
	}

	pid := res.Participant.ID
	trials, err := s.ListTrials(ctx, store.TrialFilter{ParticipantID: pid})
	if err != nil {
		exitErr("list trials", err)
	}
	errs, err := s.ListErrors(ctx, store.ErrorFilter{ParticipantID: pid})
	if err != nil {
		exitErr("list errors", err)
	}
	sum := session.Summarize(pid, mode, trials, errs)

	out := struct {
		*session.Result
		Summary session.Summary `json:"summary"`
	}{res, sum}
	printResult(out, summaryHeaders, func() [][]string { return summaryRows(sum) })
}

func applyRunFlags(cmd *cobra.Command, cfg *config.Config) error {
	if cmd.Flags().Changed("mode") {
		m, _ := cmd.Flags().GetString("mode")
		mode, err := model.ParseResponseMode(m)
		if err != nil {
			return err
		}
		cfg.SetMode(mode)
	}
	if cmd.Flags().Changed("trials-file") {
		cfg.Experiment.TrialsFile, _ = cmd.Flags().GetString("trials-file")
	}
	if cmd.Flags().Changed("seed") {
		cfg.Experiment.Seed, _ = cmd.Flags().GetInt64("seed")
	}
	if cfg.Experiment.Seed == 0 {
		cfg.Experiment.Seed = time.Now().UnixNano()
	}
	if cmd.Flags().Changed("blocks") {
		cfg.Experiment.Blocks, _ = cmd.Flags().GetInt("blocks")
	}
	if cmd.Flags().Changed("trials-per-block") {
		cfg.Experiment.TrialsPerBlock, _ = cmd.Flags().GetInt("trials-per-block")
	}
	if cfg.Experiment.Blocks <= 0 || cfg.Experiment.TrialsPerBlock <= 0 {
		return fmt.Errorf("blocks and trials per block must be positive")
	}
	return nil
}

// behavior builds the simulated participant from the config timeline and
// any probability overrides.
func behavior(cmd *cobra.Command, cfg *config.Config) sim.Behavior {
	b := sim.DefaultBehavior(cfg.Experiment.Seed)
	for _, m := range cfg.Experiment.Milestones {
		switch m.Name {
		case milestone.CueOn:
			b.CueOn = m.Offset
		case milestone.TargetOn:
			b.TargetOn = m.Offset
		}
	}
	if p, _ := cmd.Flags().GetFloat64("p-break-fixation"); p >= 0 {
		b.PBreakFixation = p
	}
	if p, _ := cmd.Flags().GetFloat64("p-early-press"); p >= 0 {
		b.PEarlyPress = p
	}
	if p, _ := cmd.Flags().GetFloat64("p-miss"); p >= 0 {
		b.PMiss = p
	}
	return b
}
