package grades

import (
	"context"
	"testing"
)

func seedReviewFixture(t *testing.T) (*Service, *MemoryStore) {
	t.Helper()
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutTeam(Team{ID: 5, AssignmentID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, TeamID: 5, AuthRole: "participant"})
	return NewService(st), st
}

func TestResolveInstructorReviewNew(t *testing.T) {
	svc, _ := seedReviewFixture(t)
	actor := ActorContext{UserID: 50, Role: "instructor"}

	next, err := svc.ResolveInstructorReview(context.Background(), actor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Target != "new" {
		t.Fatalf("target = %q, want new for a fresh map", next.Target)
	}
	if next.ReferenceID == 0 {
		t.Fatalf("expected the created map id as reference")
	}
	if next.ReturnContext != "instructor" {
		t.Fatalf("return context = %q", next.ReturnContext)
	}
}

func TestResolveInstructorReviewEditExisting(t *testing.T) {
	svc, st := seedReviewFixture(t)
	actor := ActorContext{UserID: 50, Role: "instructor"}
	ctx := context.Background()

	// First resolution creates reviewer + map.
	first, err := svc.ResolveInstructorReview(ctx, actor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A submitted response against that map flips routing to edit.
	rm, _ := st.maps[first.ReferenceID]
	st.PutResponseMap(rm, 900)

	next, err := svc.ResolveInstructorReview(ctx, actor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Target != "edit" {
		t.Fatalf("target = %q, want edit with an existing response", next.Target)
	}
	if next.ReferenceID != 900 {
		t.Fatalf("reference = %d, want latest response id 900", next.ReferenceID)
	}
}

func TestResolveInstructorReviewMapWithoutResponse(t *testing.T) {
	svc, _ := seedReviewFixture(t)
	actor := ActorContext{UserID: 50, Role: "instructor"}
	ctx := context.Background()

	first, _ := svc.ResolveInstructorReview(ctx, actor, 2)
	second, err := svc.ResolveInstructorReview(ctx, actor, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Target != "new" || second.ReferenceID != first.ReferenceID {
		t.Fatalf("map without responses should stay new, got %+v", second)
	}
}

func TestResolveInstructorReviewNoTeam(t *testing.T) {
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"})

	_, err := NewService(st).ResolveInstructorReview(context.Background(), ActorContext{UserID: 50, Role: "instructor"}, 2)
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound for a teamless participant, got %v", err)
	}
}
