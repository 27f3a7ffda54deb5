package grades

import (
	"context"

	"github.com/reviewloop/reviewloop/internal/rbac"
)

// ActorContext carries the requesting user's identity and role. It is passed
// explicitly into every gate predicate; there is no ambient session state.
type ActorContext struct {
	UserID int64
	Role   string
}

func (a ActorContext) HasPrivilegeAtLeast(role string) bool {
	return rbac.AtLeast(a.Role, role)
}

// CanViewAggregateReport gates the instructor grading report: TA-or-above.
func (s *Service) CanViewAggregateReport(actor ActorContext) bool {
	return actor.HasPrivilegeAtLeast("ta")
}

// CanViewOwnTeam allows TA-or-above unconditionally; a student may only view
// the record tied to their own user id.
func (s *Service) CanViewOwnTeam(ctx context.Context, actor ActorContext, participantID int64) (bool, error) {
	if actor.HasPrivilegeAtLeast("ta") {
		return true, nil
	}
	if actor.Role != "student" {
		return false, nil
	}
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return false, err
	}
	return p.UserID == actor.UserID, nil
}

// CanViewOwnScores requires student privilege, reader/reviewer authorization
// on the participant record, and a completed self-review when the assignment
// enables self-review.
func (s *Service) CanViewOwnScores(ctx context.Context, actor ActorContext, participantID int64) (bool, error) {
	if !actor.HasPrivilegeAtLeast("student") {
		return false, nil
	}
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return false, err
	}
	if !authorizedAsReaderOrReviewer(p) {
		return false, nil
	}
	a, err := s.store.GetAssignment(ctx, p.AssignmentID)
	if err != nil {
		return false, err
	}
	if a.SelfReviewEnabled {
		done, err := s.store.SelfReviewSubmitted(ctx, participantID)
		if err != nil || !done {
			return false, err
		}
	}
	return true, nil
}

// Full participants carry reader and reviewer authorization implicitly;
// submit-only participants do not.
func authorizedAsReaderOrReviewer(p Participant) bool {
	switch p.AuthRole {
	case "participant", "reader", "reviewer":
		return true
	}
	return false
}

// OwnRecordOrTeammate reports whether the actor may read score detail for the
// participant: on multi-member-team assignments any teammate may, otherwise
// only the participant's own user.
func (s *Service) OwnRecordOrTeammate(ctx context.Context, actor ActorContext, a Assignment, p Participant) (bool, error) {
	if p.UserID == actor.UserID {
		return true, nil
	}
	if a.MaxTeamSize <= 1 || p.TeamID == 0 {
		return false, nil
	}
	members, err := s.store.TeamMembers(ctx, p.TeamID)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.UserID == actor.UserID {
			return true, nil
		}
	}
	return false, nil
}
