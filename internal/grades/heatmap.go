package grades

import (
	"context"
	"fmt"
	"sort"
)

// HeatMapResult is the aggregate grading report for one assignment.
type HeatMapResult struct {
	Assignment   Assignment                       `json:"assignment"`
	Participants map[int64]ParticipantScoreResult `json:"participants"`
	// TeamAverages is a true multi-member mean per team.
	TeamAverages map[int64]float64 `json:"team_averages"`
	AvgOfAvg     float64           `json:"avg_of_avg"`
	// ParticipantCount counts every participant processed, including ones
	// whose result came back not-applicable.
	ParticipantCount int `json:"participant_count"`
}

// AssembleHeatMap loads an assignment, builds its question index, and runs
// the score aggregator across all of its participants.
func (s *Service) AssembleHeatMap(ctx context.Context, assignmentID int64) (HeatMapResult, error) {
	a, err := s.store.GetAssignment(ctx, assignmentID)
	if err != nil {
		return HeatMapResult{}, err
	}
	participants, err := s.store.ParticipantsOf(ctx, assignmentID)
	if err != nil {
		return HeatMapResult{}, err
	}

	hm := HeatMapResult{
		Assignment:   a,
		Participants: map[int64]ParticipantScoreResult{},
		TeamAverages: map[int64]float64{},
	}

	// Vary-by-topic rubrics depend on each participant's signed-up topic,
	// so the index is rebuilt per participant in that mode only.
	var shared QuestionIndex
	if !a.VariesByTopic {
		questionnaires, err := s.store.QuestionnairesOf(ctx, a.ID)
		if err != nil {
			return HeatMapResult{}, err
		}
		links, err := s.store.AssignmentQuestionnaires(ctx, a.ID)
		if err != nil {
			return HeatMapResult{}, err
		}
		shared = BuildQuestionIndex(a, questionnaires, links)
	}

	type bucket struct {
		sum float64
		n   int
	}
	teamBuckets := map[int64]*bucket{}

	for _, p := range participants {
		idx := shared
		if a.VariesByTopic {
			idx, err = s.QuestionIndexFor(ctx, a, p)
			if err != nil {
				return HeatMapResult{}, err
			}
		}
		res, err := s.ParticipantScores(ctx, a, p, idx)
		if err != nil {
			return HeatMapResult{}, err
		}
		hm.ParticipantCount++
		if !res.Applicable {
			continue
		}
		hm.Participants[p.ID] = res
		if res.HasTeam {
			b := teamBuckets[res.TeamID]
			if b == nil {
				b = &bucket{}
				teamBuckets[res.TeamID] = b
			}
			b.sum += res.TeamAverage
			b.n++
		}
	}

	for teamID, b := range teamBuckets {
		hm.TeamAverages[teamID] = round2(b.sum / float64(b.n))
	}
	hm.AvgOfAvg = mean(hm.Averages())
	return hm, nil
}

// Averages returns the team-average vector in team-id order, feeding the
// summary statistics.
func (hm HeatMapResult) Averages() []float64 {
	ids := make([]int64, 0, len(hm.TeamAverages))
	for id := range hm.TeamAverages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]float64, 0, len(ids))
	for _, id := range ids {
		out = append(out, hm.TeamAverages[id])
	}
	return out
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return round2(sum / float64(len(vals)))
}

// RedactedScore is one anonymized entry of the student-facing heat map.
type RedactedScore struct {
	Reviewer           string          `json:"reviewer"` // reviewer_N
	Review             ReviewBreakdown `json:"review"`
	TotalScore         float64         `json:"total_score"`
	MaxPointsAvailable float64         `json:"max_pts_available,omitempty"`
}

// RedactHeatMap replaces the participant-keyed mapping with an anonymized
// sequence in stable (sorted participant id) iteration order. Score content
// is preserved; participant and user identities are not.
func RedactHeatMap(hm HeatMapResult) []RedactedScore {
	ids := make([]int64, 0, len(hm.Participants))
	for id := range hm.Participants {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	out := make([]RedactedScore, 0, len(ids))
	for i, id := range ids {
		res := hm.Participants[id]
		out = append(out, RedactedScore{
			Reviewer:           fmt.Sprintf("reviewer_%d", i+1),
			Review:             res.Review,
			TotalScore:         res.TotalScore,
			MaxPointsAvailable: res.MaxPointsAvailable,
		})
	}
	return out
}
