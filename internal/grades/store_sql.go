package grades

import (
	"context"
	"database/sql"
	"errors"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) GetAssignment(ctx context.Context, id int64) (Assignment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,name,varies_by_round,varies_by_topic,is_microtask,self_review_enabled,max_team_size,rounds_of_reviews
		 FROM assignments WHERE id=$1`, id)
	var a Assignment
	err := row.Scan(&a.ID, &a.Name, &a.VariesByRound, &a.VariesByTopic, &a.Microtask,
		&a.SelfReviewEnabled, &a.MaxTeamSize, &a.RoundsOfReviews)
	if errors.Is(err, sql.ErrNoRows) {
		return Assignment{}, &NotFoundError{Kind: "assignment", ID: id}
	}
	if err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLStore) GetParticipant(ctx context.Context, id int64) (Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,assignment_id,user_id,team_id,grade,handle,auth_role FROM participants WHERE id=$1`, id)
	p, err := scanParticipant(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Participant{}, &NotFoundError{Kind: "participant", ID: id}
	}
	return p, err
}

type rowScanner interface{ Scan(dest ...any) error }

func scanParticipant(row rowScanner) (Participant, error) {
	var (
		p      Participant
		teamID sql.NullInt64
		grade  sql.NullFloat64
	)
	if err := row.Scan(&p.ID, &p.AssignmentID, &p.UserID, &teamID, &grade, &p.Handle, &p.AuthRole); err != nil {
		return Participant{}, err
	}
	if teamID.Valid {
		p.TeamID = teamID.Int64
	}
	if grade.Valid {
		g := grade.Float64
		p.Grade = &g
	}
	return p, nil
}

func (s *SQLStore) ParticipantsOf(ctx context.Context, assignmentID int64) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,assignment_id,user_id,team_id,grade,handle,auth_role
		 FROM participants WHERE assignment_id=$1 ORDER BY id`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) QuestionnairesOf(ctx context.Context, assignmentID int64) ([]Questionnaire, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT q.id, q.type
		 FROM questionnaires q
		 JOIN assignment_questionnaires aq ON aq.questionnaire_id = q.id
		 WHERE aq.assignment_id=$1 ORDER BY q.id`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Questionnaire
	for rows.Next() {
		var qn Questionnaire
		if err := rows.Scan(&qn.ID, &qn.Type); err != nil {
			return nil, err
		}
		out = append(out, qn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		qs, err := s.questionsOf(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Questions = qs
	}
	return out, nil
}

func (s *SQLStore) questionsOf(ctx context.Context, questionnaireID int64) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,questionnaire_id,seq,txt,weight FROM questions
		 WHERE questionnaire_id=$1 ORDER BY seq, id`, questionnaireID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Question
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.QuestionnaireID, &q.Seq, &q.Text, &q.Weight); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLStore) AssignmentQuestionnaires(ctx context.Context, assignmentID int64) ([]AssignmentQuestionnaire, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT assignment_id,questionnaire_id,COALESCE(used_in_round,0),COALESCE(topic_id,0)
		 FROM assignment_questionnaires WHERE assignment_id=$1`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AssignmentQuestionnaire
	for rows.Next() {
		var l AssignmentQuestionnaire
		if err := rows.Scan(&l.AssignmentID, &l.QuestionnaireID, &l.UsedInRound, &l.TopicID); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *SQLStore) ScoreRecordsOf(ctx context.Context, participantID, _ int64) ([]ScoreRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,participant_id,question_id,score,total_score,round
		 FROM score_records WHERE participant_id=$1 ORDER BY round, id`, participantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []ScoreRecord
	for rows.Next() {
		var r ScoreRecord
		if err := rows.Scan(&r.ID, &r.ParticipantID, &r.QuestionID, &r.Score, &r.TotalScore, &r.Round); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) TeamOf(ctx context.Context, participantID int64) (Team, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT t.id,t.assignment_id,t.grade_for_submission,t.comment_for_submission
		 FROM teams t JOIN participants p ON p.team_id = t.id WHERE p.id=$1`, participantID)
	var (
		t     Team
		grade sql.NullFloat64
	)
	err := row.Scan(&t.ID, &t.AssignmentID, &grade, &t.CommentForSubmission)
	if errors.Is(err, sql.ErrNoRows) {
		return Team{}, false, nil
	}
	if err != nil {
		return Team{}, false, err
	}
	if grade.Valid {
		g := grade.Float64
		t.GradeForSubmission = &g
	}
	return t, true, nil
}

func (s *SQLStore) TeamMembers(ctx context.Context, teamID int64) ([]Participant, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,assignment_id,user_id,team_id,grade,handle,auth_role
		 FROM participants WHERE team_id=$1 ORDER BY id`, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Participant
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) SignedUpTopicID(ctx context.Context, teamID int64) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT topic_id FROM signed_up_teams
		 WHERE team_id=$1 AND is_waitlisted=$2 ORDER BY id LIMIT 1`, teamID, false)
	var topicID int64
	err := row.Scan(&topicID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return topicID, true, nil
}

func (s *SQLStore) MicrotaskTopic(ctx context.Context, assignmentID int64) (Topic, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,assignment_id,name,micropayment FROM sign_up_topics
		 WHERE assignment_id=$1 ORDER BY id LIMIT 1`, assignmentID)
	var t Topic
	err := row.Scan(&t.ID, &t.AssignmentID, &t.Name, &t.Micropayment)
	if errors.Is(err, sql.ErrNoRows) {
		return Topic{}, false, nil
	}
	if err != nil {
		return Topic{}, false, err
	}
	return t, true, nil
}

func (s *SQLStore) TopicQuestionnaire(ctx context.Context, assignmentID, topicID int64) (Questionnaire, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT q.id, q.type FROM questionnaires q
		 JOIN assignment_questionnaires aq ON aq.questionnaire_id = q.id
		 WHERE aq.assignment_id=$1 AND aq.topic_id=$2 ORDER BY q.id LIMIT 1`,
		assignmentID, topicID)
	var qn Questionnaire
	err := row.Scan(&qn.ID, &qn.Type)
	if errors.Is(err, sql.ErrNoRows) {
		return Questionnaire{}, false, nil
	}
	if err != nil {
		return Questionnaire{}, false, err
	}
	qs, err := s.questionsOf(ctx, qn.ID)
	if err != nil {
		return Questionnaire{}, false, err
	}
	qn.Questions = qs
	return qn, true, nil
}

func (s *SQLStore) SelfReviewSubmitted(ctx context.Context, participantID int64) (bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM responses r
			JOIN response_maps m ON m.id = r.map_id
			WHERE m.kind='self_review' AND m.reviewer_id=$1 AND r.submitted=$2
		)`, participantID, true)
	var done bool
	if err := row.Scan(&done); err != nil {
		return false, err
	}
	return done, nil
}

func (s *SQLStore) SetParticipantGrade(ctx context.Context, participantID int64, grade *float64) error {
	var arg sql.NullFloat64
	if grade != nil {
		arg = sql.NullFloat64{Float64: *grade, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `UPDATE participants SET grade=$1 WHERE id=$2`, arg, participantID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: "participant", ID: participantID}
	}
	return nil
}

func (s *SQLStore) SetTeamSubmission(ctx context.Context, teamID int64, grade float64, comment string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE teams SET grade_for_submission=$1, comment_for_submission=$2 WHERE id=$3`,
		grade, comment, teamID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return &NotFoundError{Kind: "team", ID: teamID}
	}
	return nil
}

func (s *SQLStore) FindOrCreateReviewer(ctx context.Context, userID, assignmentID int64) (Participant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,assignment_id,user_id,team_id,grade,handle,auth_role
		 FROM participants WHERE user_id=$1 AND assignment_id=$2 ORDER BY id LIMIT 1`,
		userID, assignmentID)
	p, err := scanParticipant(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Participant{}, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO participants (assignment_id,user_id,auth_role) VALUES ($1,$2,'reviewer') RETURNING id`,
		assignmentID, userID).Scan(&id)
	if err != nil {
		return Participant{}, err
	}
	return Participant{ID: id, AssignmentID: assignmentID, UserID: userID, AuthRole: "reviewer"}, nil
}

func (s *SQLStore) FindOrCreateReviewMap(ctx context.Context, assignmentID, reviewerID, revieweeTeamID int64) (ResponseMap, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,assignment_id,reviewer_id,reviewee_team_id,kind FROM response_maps
		 WHERE assignment_id=$1 AND reviewer_id=$2 AND reviewee_team_id=$3 AND kind='review'
		 ORDER BY id LIMIT 1`,
		assignmentID, reviewerID, revieweeTeamID)
	var m ResponseMap
	err := row.Scan(&m.ID, &m.AssignmentID, &m.ReviewerID, &m.RevieweeTeamID, &m.Kind)
	if err == nil {
		return m, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return ResponseMap{}, false, err
	}
	var id int64
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO response_maps (assignment_id,reviewer_id,reviewee_team_id,kind)
		 VALUES ($1,$2,$3,'review') RETURNING id`,
		assignmentID, reviewerID, revieweeTeamID).Scan(&id)
	if err != nil {
		return ResponseMap{}, false, err
	}
	return ResponseMap{ID: id, AssignmentID: assignmentID, ReviewerID: reviewerID, RevieweeTeamID: revieweeTeamID, Kind: "review"}, true, nil
}

func (s *SQLStore) LatestResponseID(ctx context.Context, mapID int64) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id FROM responses WHERE map_id=$1 ORDER BY created_at DESC, id DESC LIMIT 1`, mapID)
	var id int64
	err := row.Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return id, true, nil
}
