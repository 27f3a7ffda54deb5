package grades

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store for offline/dev runs and tests. Seed it
// with the Put/Add helpers.
type MemoryStore struct {
	mu           sync.RWMutex
	assignments  map[int64]Assignment
	participants map[int64]Participant
	qnsByAsg     map[int64][]Questionnaire
	linksByAsg   map[int64][]AssignmentQuestionnaire
	scoresByPart map[int64][]ScoreRecord
	teams        map[int64]Team
	topicByTeam  map[int64]int64
	topics       map[int64]Topic
	topicQns     map[[2]int64]Questionnaire
	selfReviews  map[int64]bool
	maps         map[int64]ResponseMap
	responses    map[int64][]int64
	seq          int64
}

func NewInMemoryStore() *MemoryStore {
	return &MemoryStore{
		assignments:  map[int64]Assignment{},
		participants: map[int64]Participant{},
		qnsByAsg:     map[int64][]Questionnaire{},
		linksByAsg:   map[int64][]AssignmentQuestionnaire{},
		scoresByPart: map[int64][]ScoreRecord{},
		teams:        map[int64]Team{},
		topicByTeam:  map[int64]int64{},
		topics:       map[int64]Topic{},
		topicQns:     map[[2]int64]Questionnaire{},
		selfReviews:  map[int64]bool{},
		maps:         map[int64]ResponseMap{},
		responses:    map[int64][]int64{},
		seq:          1000,
	}
}

/* ---- seeding helpers ---- */

func (m *MemoryStore) PutAssignment(a Assignment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[a.ID] = a
}

func (m *MemoryStore) PutParticipant(p Participant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.participants[p.ID] = p
}

func (m *MemoryStore) PutTeam(t Team) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.teams[t.ID] = t
}

func (m *MemoryStore) PutQuestionnaire(assignmentID int64, qn Questionnaire, links ...AssignmentQuestionnaire) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.qnsByAsg[assignmentID] = append(m.qnsByAsg[assignmentID], qn)
	m.linksByAsg[assignmentID] = append(m.linksByAsg[assignmentID], links...)
}

func (m *MemoryStore) AddScoreRecord(rec ScoreRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scoresByPart[rec.ParticipantID] = append(m.scoresByPart[rec.ParticipantID], rec)
}

func (m *MemoryStore) PutTopic(t Topic) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topics[t.ID] = t
}

func (m *MemoryStore) SignUpTeam(teamID, topicID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicByTeam[teamID] = topicID
}

func (m *MemoryStore) PutTopicQuestionnaire(assignmentID, topicID int64, qn Questionnaire) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.topicQns[[2]int64{assignmentID, topicID}] = qn
}

func (m *MemoryStore) SetSelfReviewSubmitted(participantID int64, done bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.selfReviews[participantID] = done
}

func (m *MemoryStore) PutResponseMap(rm ResponseMap, responseIDs ...int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.maps[rm.ID] = rm
	m.responses[rm.ID] = append(m.responses[rm.ID], responseIDs...)
}

/* ---- Store ---- */

func (m *MemoryStore) GetAssignment(_ context.Context, id int64) (Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assignments[id]
	if !ok {
		return Assignment{}, &NotFoundError{Kind: "assignment", ID: id}
	}
	return a, nil
}

func (m *MemoryStore) GetParticipant(_ context.Context, id int64) (Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.participants[id]
	if !ok {
		return Participant{}, &NotFoundError{Kind: "participant", ID: id}
	}
	return p, nil
}

func (m *MemoryStore) ParticipantsOf(_ context.Context, assignmentID int64) ([]Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Participant
	for _, p := range m.participants {
		if p.AssignmentID == assignmentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) QuestionnairesOf(_ context.Context, assignmentID int64) ([]Questionnaire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Questionnaire(nil), m.qnsByAsg[assignmentID]...), nil
}

func (m *MemoryStore) AssignmentQuestionnaires(_ context.Context, assignmentID int64) ([]AssignmentQuestionnaire, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]AssignmentQuestionnaire(nil), m.linksByAsg[assignmentID]...), nil
}

func (m *MemoryStore) ScoreRecordsOf(_ context.Context, participantID, _ int64) ([]ScoreRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]ScoreRecord(nil), m.scoresByPart[participantID]...), nil
}

func (m *MemoryStore) TeamOf(_ context.Context, participantID int64) (Team, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.participants[participantID]
	if !ok || p.TeamID == 0 {
		return Team{}, false, nil
	}
	t, ok := m.teams[p.TeamID]
	return t, ok, nil
}

func (m *MemoryStore) TeamMembers(_ context.Context, teamID int64) ([]Participant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Participant
	for _, p := range m.participants {
		if p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemoryStore) SignedUpTopicID(_ context.Context, teamID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.topicByTeam[teamID]
	return id, ok, nil
}

func (m *MemoryStore) MicrotaskTopic(_ context.Context, assignmentID int64) (Topic, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.topics {
		if t.AssignmentID == assignmentID {
			return t, true, nil
		}
	}
	return Topic{}, false, nil
}

func (m *MemoryStore) TopicQuestionnaire(_ context.Context, assignmentID, topicID int64) (Questionnaire, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	qn, ok := m.topicQns[[2]int64{assignmentID, topicID}]
	return qn, ok, nil
}

func (m *MemoryStore) SelfReviewSubmitted(_ context.Context, participantID int64) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.selfReviews[participantID], nil
}

func (m *MemoryStore) SetParticipantGrade(_ context.Context, participantID int64, grade *float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.participants[participantID]
	if !ok {
		return &NotFoundError{Kind: "participant", ID: participantID}
	}
	p.Grade = grade
	m.participants[participantID] = p
	return nil
}

func (m *MemoryStore) SetTeamSubmission(_ context.Context, teamID int64, grade float64, comment string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.teams[teamID]
	if !ok {
		return &NotFoundError{Kind: "team", ID: teamID}
	}
	t.GradeForSubmission = &grade
	t.CommentForSubmission = comment
	m.teams[teamID] = t
	return nil
}

func (m *MemoryStore) FindOrCreateReviewer(_ context.Context, userID, assignmentID int64) (Participant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.participants {
		if p.UserID == userID && p.AssignmentID == assignmentID {
			return p, nil
		}
	}
	m.seq++
	p := Participant{ID: m.seq, AssignmentID: assignmentID, UserID: userID, AuthRole: "reviewer"}
	m.participants[p.ID] = p
	return p, nil
}

func (m *MemoryStore) FindOrCreateReviewMap(_ context.Context, assignmentID, reviewerID, revieweeTeamID int64) (ResponseMap, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rm := range m.maps {
		if rm.AssignmentID == assignmentID && rm.ReviewerID == reviewerID &&
			rm.RevieweeTeamID == revieweeTeamID && rm.Kind == "review" {
			return rm, false, nil
		}
	}
	m.seq++
	rm := ResponseMap{ID: m.seq, AssignmentID: assignmentID, ReviewerID: reviewerID, RevieweeTeamID: revieweeTeamID, Kind: "review"}
	m.maps[rm.ID] = rm
	return rm, true, nil
}

func (m *MemoryStore) LatestResponseID(_ context.Context, mapID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := m.responses[mapID]
	if len(ids) == 0 {
		return 0, false, nil
	}
	return ids[len(ids)-1], true, nil
}
