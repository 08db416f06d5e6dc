package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nkazmina/learning-log/backend/internal/models"
)

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned on unique constraint violations.
var ErrAlreadyExists = errors.New("already exists")

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// DB is the subset of pgxpool.Pool the store needs. pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore handles user, topic, and entry CRUD against PostgreSQL.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		username   VARCHAR(150) UNIQUE NOT NULL,
		password   VARCHAR(255) NOT NULL,
		created_at TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS topics (
		id         UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		text       VARCHAR(200) NOT NULL,
		date_added TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
		owner_id   UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE
	)`,
	`CREATE TABLE IF NOT EXISTS entries (
		id              UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		topic_id        UUID NOT NULL REFERENCES topics(id) ON DELETE CASCADE,
		text            TEXT NOT NULL,
		date_added      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		owner_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		attachment_key  TEXT NOT NULL DEFAULT '',
		attachment_name TEXT NOT NULL DEFAULT ''
	)`,
}

// Migrate creates the tables if they don't exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// mapError translates driver errors into the store's sentinel errors.
func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrAlreadyExists)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// validID reports whether id parses as a UUID. Path parameters arrive as raw
// strings; anything that isn't a UUID can't match a row, so callers treat it
// as not found instead of letting the driver error surface as a 500.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

// ── Users ────────────────────────────────────────────────

func (s *PostgresStore) CreateUser(ctx context.Context, username, hashedPassword string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (username, password)
		 VALUES ($1, $2)
		 RETURNING id, username, created_at`,
		username, hashedPassword,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		return nil, mapError("create user", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, password, created_at FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Password, &u.CreatedAt)
	if err != nil {
		return nil, mapError("get user by username", err)
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	var u models.User
	err := s.db.QueryRow(ctx,
		`SELECT id, username, created_at FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.CreatedAt)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return &u, nil
}

// ── Topics ───────────────────────────────────────────────

func (s *PostgresStore) CreateTopic(ctx context.Context, ownerID, text string) (*models.Topic, error) {
	var t models.Topic
	err := s.db.QueryRow(ctx,
		`INSERT INTO topics (text, owner_id)
		 VALUES ($1, $2)
		 RETURNING id, text, date_added, owner_id`,
		text, ownerID,
	).Scan(&t.ID, &t.Text, &t.DateAdded, &t.OwnerID)
	if err != nil {
		return nil, mapError("create topic", err)
	}
	return &t, nil
}

// ListTopics returns all topics ordered ascending by creation time.
func (s *PostgresStore) ListTopics(ctx context.Context) ([]models.Topic, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, text, date_added, owner_id FROM topics ORDER BY date_added ASC`)
	if err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	defer rows.Close()

	var topics []models.Topic
	for rows.Next() {
		var t models.Topic
		if err := rows.Scan(&t.ID, &t.Text, &t.DateAdded, &t.OwnerID); err != nil {
			return nil, fmt.Errorf("list topics: %w", err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return topics, nil
}

func (s *PostgresStore) GetTopic(ctx context.Context, id string) (*models.Topic, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get topic: %w", ErrNotFound)
	}
	var t models.Topic
	err := s.db.QueryRow(ctx,
		`SELECT id, text, date_added, owner_id FROM topics WHERE id = $1`, id,
	).Scan(&t.ID, &t.Text, &t.DateAdded, &t.OwnerID)
	if err != nil {
		return nil, mapError("get topic", err)
	}
	return &t, nil
}

// ── Entries ──────────────────────────────────────────────

const entryColumns = `id, topic_id, text, date_added, owner_id, attachment_key, attachment_name`

func scanEntry(row pgx.Row) (*models.Entry, error) {
	var e models.Entry
	err := row.Scan(&e.ID, &e.TopicID, &e.Text, &e.DateAdded, &e.OwnerID,
		&e.AttachmentKey, &e.AttachmentName)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *PostgresStore) CreateEntry(ctx context.Context, topicID, ownerID, text string) (*models.Entry, error) {
	e, err := scanEntry(s.db.QueryRow(ctx,
		`INSERT INTO entries (topic_id, owner_id, text)
		 VALUES ($1, $2, $3)
		 RETURNING `+entryColumns,
		topicID, ownerID, text,
	))
	if err != nil {
		return nil, mapError("create entry", err)
	}
	return e, nil
}

// ListEntries returns a topic's entries ordered descending by date_added.
func (s *PostgresStore) ListEntries(ctx context.Context, topicID string) ([]models.Entry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE topic_id = $1 ORDER BY date_added DESC`,
		topicID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return entries, nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, id string) (*models.Entry, error) {
	if !validID(id) {
		return nil, fmt.Errorf("get entry: %w", ErrNotFound)
	}
	e, err := scanEntry(s.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM entries WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get entry", err)
	}
	return e, nil
}

// UpdateEntryText replaces an entry's text and refreshes its date_added.
func (s *PostgresStore) UpdateEntryText(ctx context.Context, id, text string) (*models.Entry, error) {
	if !validID(id) {
		return nil, fmt.Errorf("update entry: %w", ErrNotFound)
	}
	e, err := scanEntry(s.db.QueryRow(ctx,
		`UPDATE entries SET text = $2, date_added = NOW()
		 WHERE id = $1
		 RETURNING `+entryColumns,
		id, text,
	))
	if err != nil {
		return nil, mapError("update entry", err)
	}
	return e, nil
}

// SetEntryAttachment records the object key and original filename of an
// entry's attachment.
func (s *PostgresStore) SetEntryAttachment(ctx context.Context, id, key, name string) error {
	if !validID(id) {
		return fmt.Errorf("set entry attachment: %w", ErrNotFound)
	}
	tag, err := s.db.Exec(ctx,
		`UPDATE entries SET attachment_key = $2, attachment_name = $3 WHERE id = $1`,
		id, key, name)
	if err != nil {
		return mapError("set entry attachment", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("set entry attachment: %w", ErrNotFound)
	}
	return nil
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, id string) error {
	if !validID(id) {
		return fmt.Errorf("delete entry: %w", ErrNotFound)
	}
	tag, err := s.db.Exec(ctx, `DELETE FROM entries WHERE id = $1`, id)
	if err != nil {
		return mapError("delete entry", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete entry: %w", ErrNotFound)
	}
	return nil
}
