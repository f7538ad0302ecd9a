package sqlstore_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jrsteele09/go-commerce-session/session/sqlstore"
	"github.com/stretchr/testify/require"
)

func setupSQL(t *testing.T) (*sqlstore.SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s, err := sqlstore.New(db, "")
	require.NoError(t, err)
	return s, mock
}

func TestSQLStoreEnsureSchema(t *testing.T) {
	s, mock := setupSQL(t)
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS session_store")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, s.EnsureSchema(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreGet(t *testing.T) {
	ctx := context.Background()
	s, mock := setupSQL(t)
	query := regexp.QuoteMeta("SELECT value FROM session_store WHERE key = ?")

	mock.ExpectQuery(query).WithArgs("commerce.session").
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte(`{"usid":"u1"}`)))
	data, found, err := s.Get(ctx, "commerce.session")
	require.NoError(t, err)
	require.True(t, found)
	require.JSONEq(t, `{"usid":"u1"}`, string(data))

	mock.ExpectQuery(query).WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	_, found, err = s.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)

	mock.ExpectQuery(query).WithArgs("broken").WillReturnError(errors.New("disk I/O error"))
	_, _, err = s.Get(ctx, "broken")
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreSetAndDelete(t *testing.T) {
	ctx := context.Background()
	s, mock := setupSQL(t)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO session_store (key, value, updated_at) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE")).
		WithArgs("commerce.session", []byte("payload"), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	require.NoError(t, s.Set(ctx, "commerce.session", []byte("payload")))

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM session_store WHERE key = ?")).
		WithArgs("commerce.session").
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, s.Delete(ctx, "commerce.session"))

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStoreRejectsBadTableName(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = sqlstore.New(db, "sessions; DROP TABLE users")
	require.Error(t, err)

	_, err = sqlstore.New(nil, "")
	require.Error(t, err)
}
