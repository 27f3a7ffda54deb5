package grades

import (
	"context"
	"fmt"
)

// SetOverrideGrade records an instructor override for a participant. The
// write is skipped when the submitted grade equals the computed total (the
// computed score keeps applying); a nil grade clears any override. The
// returned note is surfaced to the caller.
func (s *Service) SetOverrideGrade(ctx context.Context, participantID int64, grade *float64, computedTotal float64) (Participant, string, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return Participant{}, "", err
	}
	if grade != nil && round2(*grade) == round2(computedTotal) {
		return p, fmt.Sprintf("The computed score will be used for participant %d.", p.ID), nil
	}
	if err := s.store.SetParticipantGrade(ctx, participantID, grade); err != nil {
		return Participant{}, "", err
	}
	p.Grade = grade
	if grade == nil {
		return p, fmt.Sprintf("The computed score will be used for participant %d.", p.ID), nil
	}
	return p, fmt.Sprintf("A score of %.2f%% has been saved for participant %d.", *grade, p.ID), nil
}

// SaveSubmissionGrade stores an instructor-entered submission grade and
// comment on the participant's team.
func (s *Service) SaveSubmissionGrade(ctx context.Context, participantID int64, grade float64, comment string) (Team, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return Team{}, err
	}
	team, ok, err := s.store.TeamOf(ctx, p.ID)
	if err != nil {
		return Team{}, err
	}
	if !ok {
		return Team{}, &NotFoundError{Kind: "team for participant", ID: participantID}
	}
	if err := s.store.SetTeamSubmission(ctx, team.ID, grade, comment); err != nil {
		return Team{}, err
	}
	team.GradeForSubmission = &grade
	team.CommentForSubmission = comment
	return team, nil
}
