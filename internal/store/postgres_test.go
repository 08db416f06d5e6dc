package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresStore(mock), mock
}

func TestCreateUser(t *testing.T) {
	s, mock := newMockStore(t)
	id := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("testuser", "hashed").
		WillReturnRows(pgxmock.NewRows([]string{"id", "username", "created_at"}).
			AddRow(id, "testuser", now))

	u, err := s.CreateUser(context.Background(), "testuser", "hashed")
	require.NoError(t, err)
	assert.Equal(t, id, u.ID)
	assert.Equal(t, "testuser", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUserDuplicateUsername(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("testuser", "hashed").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	_, err := s.CreateUser(context.Background(), "testuser", "hashed")
	assert.ErrorIs(t, err, ErrAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByUsernameNotFound(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(`SELECT id, username, password, created_at FROM users`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetUserByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTopic(t *testing.T) {
	s, mock := newMockStore(t)
	topicID := uuid.NewString()
	ownerID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`SELECT id, text, date_added, owner_id FROM topics`).
		WithArgs(topicID).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "date_added", "owner_id"}).
			AddRow(topicID, "Test Topic", now, ownerID))

	topic, err := s.GetTopic(context.Background(), topicID)
	require.NoError(t, err)
	assert.Equal(t, "Test Topic", topic.Text)
	assert.Equal(t, ownerID, topic.OwnerID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTopicNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	topicID := uuid.NewString()

	mock.ExpectQuery(`SELECT id, text, date_added, owner_id FROM topics`).
		WithArgs(topicID).
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetTopic(context.Background(), topicID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTopicMalformedID(t *testing.T) {
	s, mock := newMockStore(t)

	// No query expected: a non-UUID path parameter is a not-found, not a 500.
	_, err := s.GetTopic(context.Background(), "1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTopics(t *testing.T) {
	s, mock := newMockStore(t)
	ownerID := uuid.NewString()
	first := time.Now().Add(-time.Hour)
	second := time.Now()

	mock.ExpectQuery(`SELECT id, text, date_added, owner_id FROM topics ORDER BY date_added ASC`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "text", "date_added", "owner_id"}).
			AddRow(uuid.NewString(), "Topic#0", first, ownerID).
			AddRow(uuid.NewString(), "Topic#1", second, ownerID))

	topics, err := s.ListTopics(context.Background())
	require.NoError(t, err)
	require.Len(t, topics, 2)
	assert.True(t, topics[0].DateAdded.Before(topics[1].DateAdded))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntry(t *testing.T) {
	s, mock := newMockStore(t)
	entryID := uuid.NewString()
	topicID := uuid.NewString()
	ownerID := uuid.NewString()
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO entries`).
		WithArgs(topicID, ownerID, "test entry").
		WillReturnRows(entryRows().
			AddRow(entryID, topicID, "test entry", now, ownerID, "", ""))

	e, err := s.CreateEntry(context.Background(), topicID, ownerID, "test entry")
	require.NoError(t, err)
	assert.Equal(t, ownerID, e.OwnerID)
	assert.Equal(t, topicID, e.TopicID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEntryTextNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	entryID := uuid.NewString()

	mock.ExpectQuery(`UPDATE entries SET text`).
		WithArgs(entryID, "new text").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.UpdateEntryText(context.Background(), entryID, "new text")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntry(t *testing.T) {
	s, mock := newMockStore(t)
	entryID := uuid.NewString()

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(entryID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	assert.NoError(t, s.DeleteEntry(context.Background(), entryID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntryNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	entryID := uuid.NewString()

	mock.ExpectExec(`DELETE FROM entries`).
		WithArgs(entryID).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := s.DeleteEntry(context.Background(), entryID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetEntryAttachment(t *testing.T) {
	s, mock := newMockStore(t)
	entryID := uuid.NewString()

	mock.ExpectExec(`UPDATE entries SET attachment_key`).
		WithArgs(entryID, "owner/entry", "notes.pdf").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, s.SetEntryAttachment(context.Background(), entryID, "owner/entry", "notes.pdf"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func entryRows() *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "topic_id", "text", "date_added", "owner_id", "attachment_key", "attachment_name",
	})
}
