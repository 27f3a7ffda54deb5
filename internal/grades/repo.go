package grades

import (
	"context"
	"errors"
	"fmt"
)

// NotFoundError reports an unknown assignment/participant/team id. Handlers
// translate it to 404; everything else on the read path is treated as a
// degenerate-data condition and resolves to empty values instead of erroring.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.Kind, e.ID) }

func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Store is the data-access surface the grading core consumes. Reads return
// fully-materialized collections; the only writes are the grade-override and
// submission-grade passthroughs.
type Store interface {
	GetAssignment(ctx context.Context, id int64) (Assignment, error)
	GetParticipant(ctx context.Context, id int64) (Participant, error)
	ParticipantsOf(ctx context.Context, assignmentID int64) ([]Participant, error)
	QuestionnairesOf(ctx context.Context, assignmentID int64) ([]Questionnaire, error)
	AssignmentQuestionnaires(ctx context.Context, assignmentID int64) ([]AssignmentQuestionnaire, error)
	ScoreRecordsOf(ctx context.Context, participantID, assignmentID int64) ([]ScoreRecord, error)

	// TeamOf returns ok=false when the participant has no team.
	TeamOf(ctx context.Context, participantID int64) (Team, bool, error)
	TeamMembers(ctx context.Context, teamID int64) ([]Participant, error)
	// SignedUpTopicID resolves a team's topic, skipping waitlisted signups.
	SignedUpTopicID(ctx context.Context, teamID int64) (int64, bool, error)
	// MicrotaskTopic returns the sign-up topic carrying the micropayment.
	MicrotaskTopic(ctx context.Context, assignmentID int64) (Topic, bool, error)
	// TopicQuestionnaire resolves the topic-specific rubric for
	// vary-by-topic assignments.
	TopicQuestionnaire(ctx context.Context, assignmentID, topicID int64) (Questionnaire, bool, error)

	SelfReviewSubmitted(ctx context.Context, participantID int64) (bool, error)

	SetParticipantGrade(ctx context.Context, participantID int64, grade *float64) error
	SetTeamSubmission(ctx context.Context, teamID int64, grade float64, comment string) error

	// FindOrCreateReviewer locates the actor's participant record for the
	// assignment, creating one (with a handle) when absent.
	FindOrCreateReviewer(ctx context.Context, userID, assignmentID int64) (Participant, error)
	// FindOrCreateReviewMap returns created=true when the map did not exist.
	FindOrCreateReviewMap(ctx context.Context, assignmentID, reviewerID, revieweeTeamID int64) (ResponseMap, bool, error)
	LatestResponseID(ctx context.Context, mapID int64) (int64, bool, error)
}

// Service wires the aggregation logic to a Store. It holds no state of its
// own; every call reads a fresh snapshot.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) Store() Store { return s.store }
