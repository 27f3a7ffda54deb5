package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // driver: pgx
	_ "modernc.org/sqlite"             // driver: sqlite
)

type Driver string

const (
	DriverSQLite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
)

// Open opens a DB and ensures schema exists.
func Open(ctx context.Context, driver Driver, dsn string) (*sql.DB, error) {
	var drvName string
	switch driver {
	case DriverSQLite:
		drvName = "sqlite" // modernc driver
		if dsn == "" {
			dsn = "file:reviewloop.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
		}
	case DriverPostgres:
		drvName = "pgx" // pgx stdlib driver
		if dsn == "" {
			dsn = "postgres://localhost:5432/reviewloop?sslmode=disable"
		}
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}

	db, err := sql.Open(drvName, dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	if err := ensureSchema(ctx, db, driver); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB, driver Driver) error {
	var schema string
	switch driver {
	case DriverSQLite:
		schema = schemaSQLite
	case DriverPostgres:
		schema = schemaPostgres
	}
	_, err := db.ExecContext(ctx, schema)
	return err
}

const schemaSQLite = `
PRAGMA foreign_keys=ON;

CREATE TABLE IF NOT EXISTS users (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student'
);

CREATE TABLE IF NOT EXISTS assignments (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  name TEXT NOT NULL,
  varies_by_round INTEGER NOT NULL DEFAULT 0,
  varies_by_topic INTEGER NOT NULL DEFAULT 0,
  is_microtask INTEGER NOT NULL DEFAULT 0,
  self_review_enabled INTEGER NOT NULL DEFAULT 0,
  max_team_size INTEGER NOT NULL DEFAULT 1,
  rounds_of_reviews INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS questionnaires (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  type TEXT NOT NULL DEFAULT 'review'
);

CREATE TABLE IF NOT EXISTS questions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  questionnaire_id INTEGER NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL DEFAULT 0,
  txt TEXT NOT NULL DEFAULT '',
  weight REAL NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS assignment_questionnaires (
  assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  questionnaire_id INTEGER NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  used_in_round INTEGER,
  topic_id INTEGER
);

CREATE TABLE IF NOT EXISTS teams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  grade_for_submission REAL,
  comment_for_submission TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS participants (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  user_id INTEGER NOT NULL REFERENCES users(id),
  team_id INTEGER REFERENCES teams(id),
  grade REAL,
  handle TEXT NOT NULL DEFAULT '',
  auth_role TEXT NOT NULL DEFAULT 'participant'
);

CREATE TABLE IF NOT EXISTS sign_up_topics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  name TEXT NOT NULL DEFAULT '',
  micropayment REAL NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS signed_up_teams (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  topic_id INTEGER NOT NULL REFERENCES sign_up_topics(id) ON DELETE CASCADE,
  team_id INTEGER NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  is_waitlisted INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS score_records (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  participant_id INTEGER NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
  question_id INTEGER NOT NULL REFERENCES questions(id),
  score REAL NOT NULL DEFAULT 0,
  total_score REAL NOT NULL DEFAULT 0,
  round INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS response_maps (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  assignment_id INTEGER NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  reviewer_id INTEGER NOT NULL REFERENCES participants(id),
  reviewee_team_id INTEGER NOT NULL REFERENCES teams(id),
  kind TEXT NOT NULL DEFAULT 'review'
);

CREATE TABLE IF NOT EXISTS responses (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  map_id INTEGER NOT NULL REFERENCES response_maps(id) ON DELETE CASCADE,
  round INTEGER NOT NULL DEFAULT 0,
  submitted INTEGER NOT NULL DEFAULT 0,
  created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  offset INTEGER PRIMARY KEY AUTOINCREMENT, -- BIGSERIAL in Postgres
  event_id TEXT NOT NULL,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,                         -- e.g., ParticipantGradeSet
  key TEXT NOT NULL,                         -- natural key: participant/team id
  data TEXT NOT NULL,                        -- JSON payload
  created_at INTEGER NOT NULL
);
`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  full_name TEXT NOT NULL DEFAULT '',
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL DEFAULT 'student'
);

CREATE TABLE IF NOT EXISTS assignments (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  varies_by_round BOOLEAN NOT NULL DEFAULT FALSE,
  varies_by_topic BOOLEAN NOT NULL DEFAULT FALSE,
  is_microtask BOOLEAN NOT NULL DEFAULT FALSE,
  self_review_enabled BOOLEAN NOT NULL DEFAULT FALSE,
  max_team_size INTEGER NOT NULL DEFAULT 1,
  rounds_of_reviews INTEGER NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS questionnaires (
  id BIGSERIAL PRIMARY KEY,
  type TEXT NOT NULL DEFAULT 'review'
);

CREATE TABLE IF NOT EXISTS questions (
  id BIGSERIAL PRIMARY KEY,
  questionnaire_id BIGINT NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  seq INTEGER NOT NULL DEFAULT 0,
  txt TEXT NOT NULL DEFAULT '',
  weight DOUBLE PRECISION NOT NULL DEFAULT 1
);

CREATE TABLE IF NOT EXISTS assignment_questionnaires (
  assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  questionnaire_id BIGINT NOT NULL REFERENCES questionnaires(id) ON DELETE CASCADE,
  used_in_round INTEGER,
  topic_id BIGINT
);

CREATE TABLE IF NOT EXISTS teams (
  id BIGSERIAL PRIMARY KEY,
  assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  grade_for_submission DOUBLE PRECISION,
  comment_for_submission TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS participants (
  id BIGSERIAL PRIMARY KEY,
  assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  user_id BIGINT NOT NULL REFERENCES users(id),
  team_id BIGINT REFERENCES teams(id),
  grade DOUBLE PRECISION,
  handle TEXT NOT NULL DEFAULT '',
  auth_role TEXT NOT NULL DEFAULT 'participant'
);

CREATE TABLE IF NOT EXISTS sign_up_topics (
  id BIGSERIAL PRIMARY KEY,
  assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  name TEXT NOT NULL DEFAULT '',
  micropayment DOUBLE PRECISION NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS signed_up_teams (
  id BIGSERIAL PRIMARY KEY,
  topic_id BIGINT NOT NULL REFERENCES sign_up_topics(id) ON DELETE CASCADE,
  team_id BIGINT NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
  is_waitlisted BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS score_records (
  id BIGSERIAL PRIMARY KEY,
  participant_id BIGINT NOT NULL REFERENCES participants(id) ON DELETE CASCADE,
  question_id BIGINT NOT NULL REFERENCES questions(id),
  score DOUBLE PRECISION NOT NULL DEFAULT 0,
  total_score DOUBLE PRECISION NOT NULL DEFAULT 0,
  round INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS response_maps (
  id BIGSERIAL PRIMARY KEY,
  assignment_id BIGINT NOT NULL REFERENCES assignments(id) ON DELETE CASCADE,
  reviewer_id BIGINT NOT NULL REFERENCES participants(id),
  reviewee_team_id BIGINT NOT NULL REFERENCES teams(id),
  kind TEXT NOT NULL DEFAULT 'review'
);

CREATE TABLE IF NOT EXISTS responses (
  id BIGSERIAL PRIMARY KEY,
  map_id BIGINT NOT NULL REFERENCES response_maps(id) ON DELETE CASCADE,
  round INTEGER NOT NULL DEFAULT 0,
  submitted BOOLEAN NOT NULL DEFAULT FALSE,
  created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_log (
  "offset" BIGSERIAL PRIMARY KEY,
  event_id TEXT NOT NULL,
  site_id TEXT NOT NULL DEFAULT 'local',
  typ TEXT NOT NULL,
  key TEXT NOT NULL,
  data TEXT NOT NULL,
  created_at BIGINT NOT NULL
);
`
