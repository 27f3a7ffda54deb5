package grades

// Read models consumed by the aggregation logic. The wider assignment /
// questionnaire / team domain owns these records; this package only reads
// them, except for the two narrow write paths on Store.

type Assignment struct {
	ID                int64  `json:"id"`
	Name              string `json:"name"`
	VariesByRound     bool   `json:"varies_by_round"`
	VariesByTopic     bool   `json:"varies_by_topic"`
	Microtask         bool   `json:"is_microtask"`
	SelfReviewEnabled bool   `json:"self_review_enabled"`
	MaxTeamSize       int    `json:"max_team_size"`
	RoundsOfReviews   int    `json:"rounds_of_reviews"`
}

// Questionnaire types mirror the rubric kinds produced upstream.
const (
	QuestionnaireReview     = "review"
	QuestionnaireMetareview = "metareview"
	QuestionnaireFeedback   = "feedback"
	QuestionnaireTeammate   = "teammate"
)

type Questionnaire struct {
	ID        int64      `json:"id"`
	Type      string     `json:"type"`
	Questions []Question `json:"questions"`
}

type Question struct {
	ID              int64   `json:"id"`
	QuestionnaireID int64   `json:"questionnaire_id"`
	Seq             int     `json:"seq"`
	Text            string  `json:"txt"`
	Weight          float64 `json:"weight"`
}

type Participant struct {
	ID           int64    `json:"id"`
	AssignmentID int64    `json:"assignment_id"`
	UserID       int64    `json:"user_id"`
	TeamID       int64    `json:"team_id,omitempty"` // 0 = no team
	Grade        *float64 `json:"grade,omitempty"`   // instructor override
	Handle       string   `json:"handle,omitempty"`
	AuthRole     string   `json:"auth_role,omitempty"` // participant|reader|reviewer|submitter
}

type Team struct {
	ID                   int64    `json:"id"`
	AssignmentID         int64    `json:"assignment_id"`
	GradeForSubmission   *float64 `json:"grade_for_submission,omitempty"`
	CommentForSubmission string   `json:"comment_for_submission,omitempty"`
}

// ScoreRecord is one reviewer's score on one question, produced by the
// upstream review-response pipeline. Score is in [0, TotalScore].
type ScoreRecord struct {
	ID            int64   `json:"id"`
	ParticipantID int64   `json:"participant_id"`
	QuestionID    int64   `json:"question_id"`
	Score         float64 `json:"score"`
	TotalScore    float64 `json:"total_score"`
	Round         int     `json:"round"`
}

type Topic struct {
	ID           int64   `json:"id"`
	AssignmentID int64   `json:"assignment_id"`
	Name         string  `json:"name"`
	Micropayment float64 `json:"micropayment"`
}

// AssignmentQuestionnaire links a rubric to an assignment, optionally pinning
// it to a review round or a sign-up topic.
type AssignmentQuestionnaire struct {
	AssignmentID    int64 `json:"assignment_id"`
	QuestionnaireID int64 `json:"questionnaire_id"`
	UsedInRound     int   `json:"used_in_round,omitempty"` // 0 = unset
	TopicID         int64 `json:"topic_id,omitempty"`      // 0 = unset
}

// ResponseMap pairs a reviewer participant with a reviewee team.
type ResponseMap struct {
	ID             int64  `json:"id"`
	AssignmentID   int64  `json:"assignment_id"`
	ReviewerID     int64  `json:"reviewer_id"`
	RevieweeTeamID int64  `json:"reviewee_team_id"`
	Kind           string `json:"kind"` // review|self_review
}
