package audit

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Event types recorded by the grading write paths.
const (
	TypeParticipantGradeSet     = "ParticipantGradeSet"
	TypeParticipantGradeCleared = "ParticipantGradeCleared"
	TypeTeamSubmissionGraded    = "TeamSubmissionGraded"
)

type Event struct {
	Offset    int64
	EventID   string
	SiteID    string
	Type      string
	Key       string // natural key: participant/team id
	DataJSON  string
	CreatedAt int64
}

// Recorder receives grade-write audit events.
type Recorder interface {
	Append(ctx context.Context, e Event) error
}

type EventRepo struct{ db *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db} }

func (r *EventRepo) Append(ctx context.Context, e Event) error {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.SiteID == "" {
		e.SiteID = "local"
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO event_log (event_id, site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		e.EventID, e.SiteID, e.Type, e.Key, e.DataJSON, time.Now().Unix())
	return err
}

// Nop discards events; used when running on the in-memory store.
type Nop struct{}

func (Nop) Append(context.Context, Event) error { return nil }
