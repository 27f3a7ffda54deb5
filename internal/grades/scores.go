package grades

import (
	"context"
	"math"
)

// ScoreTuple is one score record resolved against the question index.
type ScoreTuple struct {
	QuestionID int64    `json:"question_id"`
	Score      float64  `json:"score"`
	TotalScore float64  `json:"total_score"`
	Round      int      `json:"round,omitempty"`
	Question   Question `json:"question"`
}

// ReviewBreakdown holds a participant's per-question review scores. ByRound
// is populated only for assignments that vary rubrics by round; the rounds
// are merged into this single category rather than kept separate.
type ReviewBreakdown struct {
	Assessments []ScoreTuple         `json:"assessments"`
	ByRound     map[int][]ScoreTuple `json:"by_round,omitempty"`
}

type ParticipantScoreResult struct {
	ParticipantID      int64           `json:"participant_id"`
	Review             ReviewBreakdown `json:"review"`
	TotalScore         float64         `json:"total_score"`
	MaxPointsAvailable float64         `json:"max_pts_available,omitempty"`
	TeamID             int64           `json:"team_id,omitempty"`
	// TeamAverage is this participant's own mean percentage; the heat-map
	// assembler folds it into the team-level mean.
	TeamAverage float64 `json:"team_average"`
	HasTeam     bool    `json:"-"`
	// Applicable is false for a microtask participant with no sign-up
	// topic: "not applicable", not an error.
	Applicable bool `json:"-"`
}

// ParticipantScores computes the score breakdown and totals for one
// participant. Missing data (no records, no team, unknown questions,
// zero total-score records) resolves to empty/zero values.
func (s *Service) ParticipantScores(ctx context.Context, a Assignment, p Participant, idx QuestionIndex) (ParticipantScoreResult, error) {
	res := ParticipantScoreResult{
		ParticipantID: p.ID,
		TeamID:        p.TeamID,
		HasTeam:       p.TeamID != 0,
		Applicable:    true,
	}

	records, err := s.store.ScoreRecordsOf(ctx, p.ID, a.ID)
	if err != nil {
		return ParticipantScoreResult{}, err
	}

	tuples := make([]ScoreTuple, 0, len(records))
	for _, rec := range records {
		q, ok := idx.FindQuestion(rec.QuestionID)
		if !ok {
			// Record for a question outside the current rubric; skip.
			continue
		}
		tuples = append(tuples, ScoreTuple{
			QuestionID: rec.QuestionID,
			Score:      rec.Score,
			TotalScore: rec.TotalScore,
			Round:      rec.Round,
			Question:   q,
		})
	}
	res.Review.Assessments = tuples
	res.TotalScore = weightedTotal(tuples)
	res.TeamAverage = meanPercentage(tuples)

	if a.VariesByRound {
		res.Review.ByRound = mergeByRound(tuples)
	}

	if a.Microtask {
		topic, ok, err := s.store.MicrotaskTopic(ctx, a.ID)
		if err != nil {
			return ParticipantScoreResult{}, err
		}
		if !ok {
			return ParticipantScoreResult{ParticipantID: p.ID}, nil
		}
		res.TotalScore = round2(res.TotalScore * topic.Micropayment / 100)
		res.MaxPointsAvailable = topic.Micropayment
	}

	// Override grade replaces the computed total entirely; otherwise the
	// computed total is capped at 100.
	if p.Grade != nil {
		res.TotalScore = *p.Grade
	} else if res.TotalScore > 100 {
		res.TotalScore = 100
	}
	return res, nil
}

// weightedTotal sums each question's percentage scaled by its weight. A
// rubric whose weights sum to 100 yields a 0-100 total; heavier rubrics can
// exceed 100 and get capped downstream.
func weightedTotal(tuples []ScoreTuple) float64 {
	var sum float64
	for _, t := range tuples {
		sum += percentage(t) * t.Question.Weight / 100
	}
	return round2(sum)
}

// meanPercentage is the unweighted mean percentage over the tuples, 0 when
// there are none.
func meanPercentage(tuples []ScoreTuple) float64 {
	if len(tuples) == 0 {
		return 0
	}
	var sum float64
	for _, t := range tuples {
		sum += percentage(t)
	}
	return round2(sum / float64(len(tuples)))
}

// percentage guards the zero total-score case instead of dividing through.
func percentage(t ScoreTuple) float64 {
	if t.TotalScore <= 0 {
		return 0
	}
	return round2(t.Score / t.TotalScore * 100)
}

func mergeByRound(tuples []ScoreTuple) map[int][]ScoreTuple {
	byRound := map[int][]ScoreTuple{}
	for _, t := range tuples {
		byRound[t.Round] = append(byRound[t.Round], t)
	}
	return byRound
}

// round2 keeps percentage math on two decimal places so repeated averaging
// does not drift.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
