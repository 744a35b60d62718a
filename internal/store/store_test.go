package store

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return AttachDB(db), mock
}

func TestRecordSearch_Success(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`UPDATE _nav_stats_total SET total_searches`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_daily\(day, searches\)`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_kind`).WithArgs("unit_found").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_recent_queries`).WithArgs("lahore").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RecordSearch(context.Background(), "unit_found", "lahore"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSearch_EmptyQuerySkipsRecent(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`UPDATE _nav_stats_total`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_daily`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_kind`).WithArgs("not_found").WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.RecordSearch(context.Background(), "not_found", ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordSearch_ErrorsAreJoinedAndWritesContinue(t *testing.T) {
	s, mock := newMock(t)
	boom := errors.New("boom")
	mock.ExpectExec(`UPDATE _nav_stats_total`).WillReturnError(boom)
	mock.ExpectExec(`INSERT INTO _nav_stats_daily`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_kind`).WillReturnError(sqlmock.ErrCancelled)
	mock.ExpectExec(`INSERT INTO _nav_recent_queries`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := s.RecordSearch(context.Background(), "error", "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, sqlmock.ErrCancelled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrSessions(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`UPDATE _nav_stats_total SET total_sessions`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_daily\(day, sessions\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.IncrSessions(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIncrVisitors(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`UPDATE _nav_stats_total SET total_visitors`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO _nav_stats_daily\(day, visitors\)`).WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, s.IncrVisitors(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTotals(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`SELECT total_searches, total_sessions, total_visitors FROM _nav_stats_total`).
		WillReturnRows(sqlmock.NewRows([]string{"total_searches", "total_sessions", "total_visitors"}).AddRow(42, 7, 5))
	mock.ExpectQuery(`SELECT searches FROM _nav_stats_daily`).
		WillReturnRows(sqlmock.NewRows([]string{"searches"}))
	mock.ExpectQuery(`SELECT kind, searches FROM _nav_stats_kind`).
		WillReturnRows(sqlmock.NewRows([]string{"kind", "searches"}).AddRow("unit_found", 30).AddRow("not_found", 12))

	got, err := s.GetTotals(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &Totals{Total: 42, Today: 0, Sessions: 7, Visitors: 5, ByKind: map[string]int64{"unit_found": 30, "not_found": 12}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetTotals_QueryError(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`SELECT total_searches`).WillReturnError(sqlmock.ErrCancelled)

	_, err := s.GetTotals(context.Background())
	assert.ErrorIs(t, err, sqlmock.ErrCancelled)
}

func TestTopQueries_Defaults(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectQuery(`SELECT query, hits\s+FROM _nav_recent_queries`).
		WithArgs(24, 20).
		WillReturnRows(sqlmock.NewRows([]string{"query", "hits"}).AddRow("cpec", 9).AddRow("lahore", 3))

	got, err := s.TopQueries(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, []QueryCount{{Query: "cpec", Hits: 9}, {Query: "lahore", Hits: 3}}, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneRecent(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM _nav_recent_queries`).WithArgs(30).WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := s.PruneRecent(context.Background(), 0)
	require.NoError(t, err)
	assert.EqualValues(t, 7, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPruneRecent_Error(t *testing.T) {
	s, mock := newMock(t)
	mock.ExpectExec(`DELETE FROM _nav_recent_queries`).WithArgs(7).WillReturnError(errors.New("locked"))

	_, err := s.PruneRecent(context.Background(), 7)
	assert.EqualError(t, err, "locked")
}
