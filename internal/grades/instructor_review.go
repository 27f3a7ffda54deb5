package grades

import "context"

// NextAction tells the caller where to route an instructor performing a
// review: a fresh review form ("new", referencing the response map) or an
// existing response to edit ("edit", referencing the response).
type NextAction struct {
	Target        string `json:"target"` // new|edit
	ReferenceID   int64  `json:"reference_id"`
	ReturnContext string `json:"return_context"`
}

const returnInstructor = "instructor"

// ResolveInstructorReview locates (or creates) the actor's reviewer record
// and the review map against the participant's team, then decides whether the
// instructor starts a new review or edits an existing one.
func (s *Service) ResolveInstructorReview(ctx context.Context, actor ActorContext, participantID int64) (NextAction, error) {
	p, err := s.store.GetParticipant(ctx, participantID)
	if err != nil {
		return NextAction{}, err
	}
	team, ok, err := s.store.TeamOf(ctx, p.ID)
	if err != nil {
		return NextAction{}, err
	}
	if !ok {
		return NextAction{}, &NotFoundError{Kind: "team for participant", ID: participantID}
	}
	reviewer, err := s.store.FindOrCreateReviewer(ctx, actor.UserID, p.AssignmentID)
	if err != nil {
		return NextAction{}, err
	}
	m, created, err := s.store.FindOrCreateReviewMap(ctx, p.AssignmentID, reviewer.ID, team.ID)
	if err != nil {
		return NextAction{}, err
	}
	if created {
		return NextAction{Target: "new", ReferenceID: m.ID, ReturnContext: returnInstructor}, nil
	}
	respID, ok, err := s.store.LatestResponseID(ctx, m.ID)
	if err != nil {
		return NextAction{}, err
	}
	if !ok {
		// Map existed but no response was ever written; still a new review.
		return NextAction{Target: "new", ReferenceID: m.ID, ReturnContext: returnInstructor}, nil
	}
	return NextAction{Target: "edit", ReferenceID: respID, ReturnContext: returnInstructor}, nil
}
