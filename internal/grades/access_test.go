package grades

import (
	"context"
	"testing"
)

func seedGateFixture(t *testing.T, a Assignment, p Participant) *Service {
	t.Helper()
	st := NewInMemoryStore()
	st.PutAssignment(a)
	st.PutParticipant(p)
	return NewService(st)
}

func TestCanViewAggregateReport(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	cases := []struct {
		role string
		want bool
	}{
		{"student", false},
		{"ta", true},
		{"instructor", true},
		{"admin", true},
		{"", false},
	}
	for _, c := range cases {
		if got := svc.CanViewAggregateReport(ActorContext{UserID: 1, Role: c.role}); got != c.want {
			t.Errorf("role %q: got %v, want %v", c.role, got, c.want)
		}
	}
}

func TestCanViewOwnTeam(t *testing.T) {
	a := Assignment{ID: 1}
	p := Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"}
	svc := seedGateFixture(t, a, p)
	ctx := context.Background()

	if ok, err := svc.CanViewOwnTeam(ctx, ActorContext{UserID: 99, Role: "ta"}, 2); err != nil || !ok {
		t.Fatalf("ta should always view: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.CanViewOwnTeam(ctx, ActorContext{UserID: 7, Role: "student"}, 2); err != nil || !ok {
		t.Fatalf("student viewing own record: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.CanViewOwnTeam(ctx, ActorContext{UserID: 8, Role: "student"}, 2); err != nil || ok {
		t.Fatalf("student viewing another's record must be denied: ok=%v err=%v", ok, err)
	}
}

func TestCanViewOwnScores(t *testing.T) {
	a := Assignment{ID: 1}
	p := Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"}
	svc := seedGateFixture(t, a, p)
	ctx := context.Background()

	if ok, err := svc.CanViewOwnScores(ctx, ActorContext{UserID: 7, Role: "student"}, 2); err != nil || !ok {
		t.Fatalf("full participant should pass: ok=%v err=%v", ok, err)
	}
	if ok, _ := svc.CanViewOwnScores(ctx, ActorContext{UserID: 7, Role: ""}, 2); ok {
		t.Fatalf("missing role must be denied")
	}
}

func TestCanViewOwnScoresSubmitterDenied(t *testing.T) {
	a := Assignment{ID: 1}
	p := Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "submitter"}
	svc := seedGateFixture(t, a, p)

	if ok, _ := svc.CanViewOwnScores(context.Background(), ActorContext{UserID: 7, Role: "student"}, 2); ok {
		t.Fatalf("submit-only authorization must be denied")
	}
}

func TestCanViewOwnScoresSelfReview(t *testing.T) {
	a := Assignment{ID: 1, SelfReviewEnabled: true}
	p := Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"}
	st := NewInMemoryStore()
	st.PutAssignment(a)
	st.PutParticipant(p)
	svc := NewService(st)
	ctx := context.Background()
	actor := ActorContext{UserID: 7, Role: "student"}

	if ok, _ := svc.CanViewOwnScores(ctx, actor, 2); ok {
		t.Fatalf("unsubmitted self-review must deny access")
	}
	st.SetSelfReviewSubmitted(2, true)
	if ok, err := svc.CanViewOwnScores(ctx, actor, 2); err != nil || !ok {
		t.Fatalf("submitted self-review should allow: ok=%v err=%v", ok, err)
	}
}

func TestOwnRecordOrTeammate(t *testing.T) {
	a := Assignment{ID: 1, MaxTeamSize: 3}
	st := NewInMemoryStore()
	st.PutAssignment(a)
	st.PutTeam(Team{ID: 5, AssignmentID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, TeamID: 5, AuthRole: "participant"})
	st.PutParticipant(Participant{ID: 3, AssignmentID: 1, UserID: 8, TeamID: 5, AuthRole: "participant"})
	svc := NewService(st)
	ctx := context.Background()
	target, _ := st.GetParticipant(ctx, 2)

	if ok, err := svc.OwnRecordOrTeammate(ctx, ActorContext{UserID: 7, Role: "student"}, a, target); err != nil || !ok {
		t.Fatalf("own record: ok=%v err=%v", ok, err)
	}
	if ok, err := svc.OwnRecordOrTeammate(ctx, ActorContext{UserID: 8, Role: "student"}, a, target); err != nil || !ok {
		t.Fatalf("teammate on a team assignment: ok=%v err=%v", ok, err)
	}
	if ok, _ := svc.OwnRecordOrTeammate(ctx, ActorContext{UserID: 9, Role: "student"}, a, target); ok {
		t.Fatalf("non-teammate must be denied")
	}

	solo := Assignment{ID: 1, MaxTeamSize: 1}
	if ok, _ := svc.OwnRecordOrTeammate(ctx, ActorContext{UserID: 8, Role: "student"}, solo, target); ok {
		t.Fatalf("solo assignment allows only the participant's own user")
	}
}
