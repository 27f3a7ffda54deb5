package grades

import (
	"context"
	"strings"
	"testing"
)

func TestSetOverrideGrade(t *testing.T) {
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"})
	svc := NewService(st)
	ctx := context.Background()

	g := 95.0
	p, note, err := svc.SetOverrideGrade(ctx, 2, &g, 88.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Grade == nil || *p.Grade != 95.0 {
		t.Fatalf("grade not stored: %+v", p)
	}
	if !strings.Contains(note, "95.00") {
		t.Fatalf("note should carry the saved score, got %q", note)
	}
	stored, _ := st.GetParticipant(ctx, 2)
	if stored.Grade == nil || *stored.Grade != 95.0 {
		t.Fatalf("store not updated: %+v", stored)
	}
}

func TestSetOverrideGradeEqualToComputedSkipsWrite(t *testing.T) {
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"})
	svc := NewService(st)
	ctx := context.Background()

	g := 88.5
	_, note, err := svc.SetOverrideGrade(ctx, 2, &g, 88.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(note, "computed score") {
		t.Fatalf("note should say the computed score applies, got %q", note)
	}
	stored, _ := st.GetParticipant(ctx, 2)
	if stored.Grade != nil {
		t.Fatalf("grade equal to computed total must not be stored, got %v", *stored.Grade)
	}
}

func TestSetOverrideGradeClear(t *testing.T) {
	g := 70.0
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, Grade: &g, AuthRole: "participant"})
	svc := NewService(st)
	ctx := context.Background()

	_, note, err := svc.SetOverrideGrade(ctx, 2, nil, 55)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(note, "computed score") {
		t.Fatalf("clearing should fall back to the computed score, got %q", note)
	}
	stored, _ := st.GetParticipant(ctx, 2)
	if stored.Grade != nil {
		t.Fatalf("override not cleared: %v", *stored.Grade)
	}
}

func TestSetOverrideGradeUnknownParticipant(t *testing.T) {
	svc := NewService(NewInMemoryStore())
	g := 50.0
	if _, _, err := svc.SetOverrideGrade(context.Background(), 404, &g, 0); !IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
}

func TestSaveSubmissionGrade(t *testing.T) {
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutTeam(Team{ID: 5, AssignmentID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, TeamID: 5, AuthRole: "participant"})
	svc := NewService(st)
	ctx := context.Background()

	team, err := svc.SaveSubmissionGrade(ctx, 2, 87, "solid submission")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.GradeForSubmission == nil || *team.GradeForSubmission != 87 {
		t.Fatalf("submission grade not set: %+v", team)
	}
	if team.CommentForSubmission != "solid submission" {
		t.Fatalf("comment not set: %+v", team)
	}
}

func TestSaveSubmissionGradeNoTeam(t *testing.T) {
	st := NewInMemoryStore()
	st.PutAssignment(Assignment{ID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, AuthRole: "participant"})

	_, err := NewService(st).SaveSubmissionGrade(context.Background(), 2, 87, "x")
	if !IsNotFound(err) {
		t.Fatalf("expected NotFound for teamless participant, got %v", err)
	}
}
