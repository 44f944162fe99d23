package messages

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	qSent     = `(?s)^SELECT\s+m\.id,.*FROM\s+messages\s+AS\s+m\s+JOIN\s+users\s+AS\s+u\s+ON\s+m\.to_username\s*=\s*u\.username\s+WHERE\s+m\.from_username\s*=\s*\$1\s*$`
	qReceived = `(?s)^SELECT\s+m\.id,.*FROM\s+messages\s+AS\s+m\s+JOIN\s+users\s+AS\s+u\s+ON\s+m\.from_username\s*=\s*u\.username\s+WHERE\s+m\.to_username\s*=\s*\$1\s*$`
)

var columns = []string{"id", "username", "first_name", "last_name", "phone", "body", "sent_at", "read_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return NewPostgresRepository(db), mock, db
}

func TestSentBy_NestsRecipient(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	sent := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	read := sent.Add(time.Minute)
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "bob", "Bob", "B", "555-9999", "hi", sent, nil).
		AddRow(int64(2), "carol", "Carol", "C", "555-0000", "yo", sent, read)
	mock.ExpectQuery(qSent).WithArgs("alice").WillReturnRows(rows)

	got, err := repo.SentBy(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, "bob", got[0].ToUser.Username)
	assert.Equal(t, "555-9999", got[0].ToUser.Phone)
	assert.Equal(t, "hi", got[0].Body)
	assert.Nil(t, got[0].ReadAt)

	require.NotNil(t, got[1].ReadAt)
	assert.True(t, got[1].ReadAt.Equal(read))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReceivedBy_NestsSender(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	sent := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "alice", "Alice", "A", "555-1234", "hi", sent, nil)
	mock.ExpectQuery(qReceived).WithArgs("bob").WillReturnRows(rows)

	got, err := repo.ReceivedBy(context.Background(), "bob")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].FromUser.Username)
	assert.Equal(t, "Alice", got[0].FromUser.FirstName)
	assert.True(t, got[0].SentAt.Equal(sent))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSentBy_Empty(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSent).WithArgs("alice").WillReturnRows(sqlmock.NewRows(columns))

	got, err := repo.SentBy(context.Background(), "alice")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestQueries_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(qSent).WillReturnError(errors.New("db err"))
	mock.ExpectQuery(qReceived).WillReturnError(errors.New("db err"))

	_, err := repo.SentBy(context.Background(), "alice")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db err`), err.Error())

	_, err = repo.ReceivedBy(context.Background(), "bob")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*db err`), err.Error())
}

func TestReceivedBy_ScanError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow("not-a-number", "alice", "Alice", "A", "555-1234", "hi", time.Now(), nil)
	mock.ExpectQuery(qReceived).WithArgs("bob").WillReturnRows(rows)

	_, err := repo.ReceivedBy(context.Background(), "bob")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*Scan`), err.Error())
}

func TestSentBy_IterationError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows(columns).
		AddRow(int64(1), "bob", "Bob", "B", "555-0000", "hi", time.Now(), nil).
		RowError(0, errors.New("conn reset"))
	mock.ExpectQuery(qSent).WithArgs("alice").WillReturnRows(rows)

	_, err := repo.SentBy(context.Background(), "alice")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*conn reset`), err.Error())
}
