package grades

import (
	"context"
	"testing"
)

func q(id, qnID int64, weight float64) Question {
	return Question{ID: id, QuestionnaireID: qnID, Weight: weight}
}

func TestBuildQuestionIndexPlainKeys(t *testing.T) {
	a := Assignment{ID: 1}
	qns := []Questionnaire{
		{ID: 10, Type: QuestionnaireReview, Questions: []Question{q(100, 10, 50), q(101, 10, 50)}},
		{ID: 11, Type: QuestionnaireFeedback, Questions: []Question{q(110, 11, 100)}},
	}
	idx := BuildQuestionIndex(a, qns, nil)
	if len(idx) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(idx))
	}
	if got := idx[QuestionnaireKey{QuestionnaireID: 10}]; len(got) != 2 {
		t.Fatalf("expected 2 questions under plain key, got %d", len(got))
	}
}

func TestBuildQuestionIndexByRound(t *testing.T) {
	a := Assignment{ID: 1, VariesByRound: true}
	qns := []Questionnaire{
		{ID: 10, Type: QuestionnaireReview, Questions: []Question{q(100, 10, 100)}},
	}
	links := []AssignmentQuestionnaire{
		{AssignmentID: 1, QuestionnaireID: 10, UsedInRound: 1},
		{AssignmentID: 1, QuestionnaireID: 10, UsedInRound: 2},
		{AssignmentID: 1, QuestionnaireID: 10, UsedInRound: 2}, // duplicate link
		{AssignmentID: 99, QuestionnaireID: 10, UsedInRound: 3}, // other assignment
	}
	idx := BuildQuestionIndex(a, qns, links)
	if len(idx) != 2 {
		t.Fatalf("expected one entry per round, got %d entries", len(idx))
	}
	for _, round := range []int{1, 2} {
		if _, ok := idx[QuestionnaireKey{QuestionnaireID: 10, Round: round}]; !ok {
			t.Fatalf("missing key for round %d", round)
		}
	}
}

func TestBuildQuestionIndexRoundFallback(t *testing.T) {
	// Varies by round but no link carries a round: fall back to plain key.
	a := Assignment{ID: 1, VariesByRound: true}
	qns := []Questionnaire{
		{ID: 10, Type: QuestionnaireReview, Questions: []Question{q(100, 10, 100)}},
	}
	idx := BuildQuestionIndex(a, qns, []AssignmentQuestionnaire{{AssignmentID: 1, QuestionnaireID: 10}})
	if _, ok := idx[QuestionnaireKey{QuestionnaireID: 10}]; !ok {
		t.Fatalf("expected fallback to plain key, got %v", idx)
	}
}

func TestFindQuestion(t *testing.T) {
	idx := QuestionIndex{
		{QuestionnaireID: 10}:           {q(100, 10, 50)},
		{QuestionnaireID: 11, Round: 2}: {q(110, 11, 50)},
	}
	got, ok := idx.FindQuestion(110)
	if !ok || got.ID != 110 {
		t.Fatalf("expected question 110, got %+v ok=%v", got, ok)
	}
	if _, ok := idx.FindQuestion(999); ok {
		t.Fatalf("expected miss for unknown question")
	}
}

func TestQuestionIndexForTopicVarying(t *testing.T) {
	st := NewInMemoryStore()
	a := Assignment{ID: 1, VariesByTopic: true}
	st.PutAssignment(a)
	st.PutTeam(Team{ID: 5, AssignmentID: 1})
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7, TeamID: 5, AuthRole: "participant"})
	st.SignUpTeam(5, 30)
	st.PutTopicQuestionnaire(1, 30, Questionnaire{ID: 12, Type: QuestionnaireReview, Questions: []Question{q(120, 12, 100)}})

	svc := NewService(st)
	idx, err := svc.QuestionIndexFor(context.Background(), a, Participant{ID: 2, TeamID: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 1 {
		t.Fatalf("expected single-entry index, got %d", len(idx))
	}
	if _, ok := idx.FindQuestion(120); !ok {
		t.Fatalf("topic questionnaire questions missing")
	}
}

func TestQuestionIndexForTopicVaryingNoTeam(t *testing.T) {
	st := NewInMemoryStore()
	a := Assignment{ID: 1, VariesByTopic: true}
	st.PutAssignment(a)
	st.PutParticipant(Participant{ID: 2, AssignmentID: 1, UserID: 7})

	svc := NewService(st)
	idx, err := svc.QuestionIndexFor(context.Background(), a, Participant{ID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx) != 0 {
		t.Fatalf("expected empty index without a team, got %d entries", len(idx))
	}
}
