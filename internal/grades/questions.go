package grades

import (
	"context"
	"fmt"
	"strconv"
)

// QuestionnaireKey identifies one rubric within an assignment. Round is only
// set for assignments that vary rubrics by round; 0 means unset.
type QuestionnaireKey struct {
	QuestionnaireID int64 `json:"questionnaire_id"`
	Round           int   `json:"round,omitempty"`
}

// MarshalText renders the key for JSON map encoding only; in-process lookups
// always use the composite struct.
func (k QuestionnaireKey) MarshalText() ([]byte, error) {
	if k.Round > 0 {
		return []byte(fmt.Sprintf("%d/round%d", k.QuestionnaireID, k.Round)), nil
	}
	return []byte(strconv.FormatInt(k.QuestionnaireID, 10)), nil
}

// QuestionIndex maps a rubric (and round, when the assignment varies by
// round) to its ordered question list.
type QuestionIndex map[QuestionnaireKey][]Question

// BuildQuestionIndex derives the index for an assignment from its
// questionnaires and assignment-questionnaire links. Pure function of its
// inputs; never produces duplicate entries for the same key.
func BuildQuestionIndex(a Assignment, questionnaires []Questionnaire, links []AssignmentQuestionnaire) QuestionIndex {
	linksByQn := map[int64][]AssignmentQuestionnaire{}
	for _, l := range links {
		if l.AssignmentID == a.ID {
			linksByQn[l.QuestionnaireID] = append(linksByQn[l.QuestionnaireID], l)
		}
	}

	idx := QuestionIndex{}
	for _, qn := range questionnaires {
		if !a.VariesByRound {
			put(idx, QuestionnaireKey{QuestionnaireID: qn.ID}, qn.Questions)
			continue
		}
		rounds := 0
		for _, l := range linksByQn[qn.ID] {
			if l.UsedInRound > 0 {
				put(idx, QuestionnaireKey{QuestionnaireID: qn.ID, Round: l.UsedInRound}, qn.Questions)
				rounds++
			}
		}
		if rounds == 0 {
			// No link (or no round on it): fall back to the plain key.
			put(idx, QuestionnaireKey{QuestionnaireID: qn.ID}, qn.Questions)
		}
	}
	return idx
}

// TopicQuestionIndex builds the single-entry index for a vary-by-topic
// assignment. Topic-varying and round-varying are mutually exclusive, so the
// key never carries a round.
func TopicQuestionIndex(qn Questionnaire) QuestionIndex {
	return QuestionIndex{QuestionnaireKey{QuestionnaireID: qn.ID}: qn.Questions}
}

// FindQuestion resolves a question id by scanning the flattened index.
// Linear on purpose: total questions per assignment are bounded by rubric
// size.
func (idx QuestionIndex) FindQuestion(questionID int64) (Question, bool) {
	for _, qs := range idx {
		for _, q := range qs {
			if q.ID == questionID {
				return q, true
			}
		}
	}
	return Question{}, false
}

func put(idx QuestionIndex, key QuestionnaireKey, qs []Question) {
	if _, exists := idx[key]; exists {
		return
	}
	idx[key] = qs
}

// TopicIDFor resolves the sign-up topic for a participant's team, ok=false
// when the participant has no team or no (non-waitlisted) signup.
func (s *Service) TopicIDFor(ctx context.Context, p Participant) (int64, bool, error) {
	team, ok, err := s.store.TeamOf(ctx, p.ID)
	if err != nil || !ok {
		return 0, false, err
	}
	return s.store.SignedUpTopicID(ctx, team.ID)
}

// QuestionIndexFor loads an assignment's rubrics and builds its index,
// resolving the topic-specific rubric for vary-by-topic assignments via the
// signed-up team's topic. A vary-by-topic participant with no team or topic
// gets an empty index.
func (s *Service) QuestionIndexFor(ctx context.Context, a Assignment, p Participant) (QuestionIndex, error) {
	if a.VariesByTopic {
		team, ok, err := s.store.TeamOf(ctx, p.ID)
		if err != nil || !ok {
			return QuestionIndex{}, err
		}
		topicID, ok, err := s.store.SignedUpTopicID(ctx, team.ID)
		if err != nil || !ok {
			return QuestionIndex{}, err
		}
		qn, ok, err := s.store.TopicQuestionnaire(ctx, a.ID, topicID)
		if err != nil || !ok {
			return QuestionIndex{}, err
		}
		return TopicQuestionIndex(qn), nil
	}

	questionnaires, err := s.store.QuestionnairesOf(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	links, err := s.store.AssignmentQuestionnaires(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	return BuildQuestionIndex(a, questionnaires, links), nil
}
