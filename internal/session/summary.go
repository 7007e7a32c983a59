package session

import (
	"math"

	"github.com/rcliao/object-cueing/internal/model"
)

// Summary holds per-participant performance metrics.
type Summary struct {
	ParticipantID string                `json:"participant_id"`
	SessionType   model.ResponseMode    `json:"session_type"`
	Completed     int                   `json:"completed"`
	Aborted       map[model.ErrKind]int `json:"aborted"`

	// Keypress sessions. RT statistics cover target trials with a response.
	MeanRT         float64 `json:"mean_rt_ms,omitempty"`
	RTSD           float64 `json:"rt_sd_ms,omitempty"`
	DetectionRate  float64 `json:"detection_rate,omitempty"`
	FalseAlarmRate float64 `json:"false_alarm_rate,omitempty"`
	MovedEyesRate  float64 `json:"moved_eyes_rate,omitempty"`

	// Saccade sessions.
	AcquisitionRate float64 `json:"acquisition_rate,omitempty"`

	ByTarget []TargetSummary `json:"by_target"`
}

// TargetSummary breaks the metrics down by target location.
type TargetSummary struct {
	Target          model.TargetLocation `json:"target_location"`
	Trials          int                  `json:"trials"`
	MeanRT          float64              `json:"mean_rt_ms"`
	AcquisitionRate float64              `json:"acquisition_rate"`
}

// Summarize computes the metrics for one participant's trials and errors.
func Summarize(participantID string, mode model.ResponseMode, trials []model.TrialResult, errs []model.ErrorRecord) Summary {
	s := Summary{
		ParticipantID: participantID,
		SessionType:   mode,
		Completed:     len(trials),
		Aborted:       map[model.ErrKind]int{},
	}
	for _, e := range errs {
		s.Aborted[e.ErrType]++
	}

	switch mode {
	case model.ModeKeypress:
		var targets, detected, catches, falseAlarms, moved int
		for _, t := range trials {
			if t.MovedEyes != nil && *t.MovedEyes {
				moved++
			}
			responded := t.KeypressRT != nil && *t.KeypressRT != model.Timeout
			if t.IsCatch() {
				catches++
				if responded {
					falseAlarms++
				}
				continue
			}
			targets++
			if responded {
				detected++
			}
		}
		rts := ResponseTimes(trials)
		s.MeanRT = Mean(rts)
		s.RTSD = StdDev(rts)
		s.DetectionRate = rate(detected, targets)
		s.FalseAlarmRate = rate(falseAlarms, catches)
		s.MovedEyesRate = rate(moved, len(trials))
	case model.ModeSaccade:
		s.AcquisitionRate = acquisitionRate(trials)
	}

	for _, target := range []model.TargetLocation{model.CuedLocation, model.CuedObject, model.UncuedAdjacent, model.UncuedOpposite} {
		var sub []model.TrialResult
		for _, t := range trials {
			if t.Target == target {
				sub = append(sub, t)
			}
		}
		if len(sub) == 0 {
			continue
		}
		s.ByTarget = append(s.ByTarget, TargetSummary{
			Target:          target,
			Trials:          len(sub),
			MeanRT:          Mean(ResponseTimes(sub)),
			AcquisitionRate: acquisitionRate(sub),
		})
	}
	return s
}

// ResponseTimes returns the keypress RTs of target trials that got a response.
func ResponseTimes(trials []model.TrialResult) []float64 {
	var rts []float64
	for _, t := range trials {
		if t.IsCatch() || t.KeypressRT == nil || *t.KeypressRT == model.Timeout {
			continue
		}
		rts = append(rts, float64(*t.KeypressRT))
	}
	return rts
}

// Mean returns the average of xs, or 0 if xs is empty.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation of xs, or 0 for fewer
// than two values.
func StdDev(xs []float64) float64 {
	if len(xs) <= 1 {
		return 0
	}
	avg := Mean(xs)
	var sumSquaredDiff float64
	for _, x := range xs {
		diff := x - avg
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(xs)))
}

func acquisitionRate(trials []model.TrialResult) float64 {
	var n, acquired int
	for _, t := range trials {
		if t.TargetAcquired == nil {
			continue
		}
		n++
		if *t.TargetAcquired {
			acquired++
		}
	}
	return rate(acquired, n)
}

func rate(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(n) / float64(of)
}
