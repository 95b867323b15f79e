package entity

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantix-mfg/qc-admin-api/internal/models"
)

func newRepoMock(t *testing.T) (*Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	repo := NewRepository(sqlxDB, testConfig())
	return repo, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func testConfig() Config {
	return Config{
		Name:             "sampling reason",
		Table:            "sampling_reasons",
		APIPath:          "/sampling-reasons",
		SearchableFields: []string{"name", "description"},
		DefaultLimit:     20,
		MaxLimit:         100,
	}
}

func queryOpts(search string, active *bool) models.QueryOptions {
	return models.QueryOptions{Page: 1, Limit: 20, Search: search, IsActive: active}
}

func recordRows() *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "name", "description", "is_active", "created_by", "updated_by", "created_at", "updated_at"}).
		AddRow(int64(7), "Incoming inspection", nil, true, int64(1), int64(1), now, now)
}

func TestRepositoryGetByID(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT id, name, description, is_active, created_by, updated_by, created_at, updated_at FROM sampling_reasons WHERE id").
		WithArgs(int64(7)).
		WillReturnRows(recordRows())

	rec, err := repo.GetByID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "Incoming inspection", rec.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryGetByIDNoRows(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .+ FROM sampling_reasons WHERE id").
		WithArgs(int64(99)).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepositoryListWithSearchAndStatus(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	active := true
	mock.ExpectQuery("SELECT .+ FROM sampling_reasons WHERE is_active").
		WithArgs(true, "%pump%").
		WillReturnRows(recordRows())
	mock.ExpectQuery("SELECT COUNT").
		WithArgs(true, "%pump%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	records, total, err := repo.List(context.Background(), queryOpts("Pump", &active))
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, total)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryListRejectsUnknownSortColumn(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	// hostile sort input must never reach the SQL text
	mock.ExpectQuery("SELECT .+ FROM sampling_reasons ORDER BY name ASC").
		WillReturnRows(recordRows())
	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	opts := queryOpts("", nil)
	opts.SortBy = "name; DROP TABLE sampling_reasons"
	opts.SortOrder = "DESC; --"
	_, _, err := repo.List(context.Background(), opts)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryCreateDuplicateName(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO sampling_reasons").
		WithArgs("Incoming inspection", nil, true, int64(9), sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: "23505"})

	_, err := repo.Create(context.Background(), CreateRecord{Name: "Incoming inspection", IsActive: true}, 9)
	assert.ErrorIs(t, err, ErrDuplicateName)
}

func TestRepositoryCreateReturnsRow(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO sampling_reasons").
		WithArgs("Incoming inspection", nil, true, int64(9), sqlmock.AnyArg()).
		WillReturnRows(recordRows())

	rec, err := repo.Create(context.Background(), CreateRecord{Name: "Incoming inspection", IsActive: true}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
}

func TestRepositoryUpdatePartialPayload(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	name := "Final inspection"
	mock.ExpectQuery("UPDATE sampling_reasons SET name").
		WithArgs(name, int64(9), sqlmock.AnyArg(), int64(7)).
		WillReturnRows(recordRows())

	rec, err := repo.Update(context.Background(), 7, UpdateRecord{Name: &name}, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(7), rec.ID)
}

func TestRepositoryUpdateMissingRow(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	name := "Final inspection"
	mock.ExpectQuery("UPDATE sampling_reasons SET name").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Update(context.Background(), 42, UpdateRecord{Name: &name}, 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepositoryDeleteMissingRow(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectExec("DELETE FROM sampling_reasons").
		WithArgs(int64(42)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRepositoryToggleStatus(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("UPDATE sampling_reasons SET is_active = NOT is_active").
		WithArgs(int64(7), int64(9), sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))

	active, err := repo.ToggleStatus(context.Background(), 7, 9)
	require.NoError(t, err)
	assert.False(t, active)
}

func TestRepositoryHealthWarningWhenEmpty(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	mock.ExpectQuery("SELECT COUNT").
		WillReturnRows(sqlmock.NewRows([]string{"total", "active", "last_updated"}).AddRow(0, 0, nil))

	health, err := repo.Health(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "warning", health.Status)
	assert.Equal(t, 0, health.Total)
}

func TestRepositoryStatistics(t *testing.T) {
	repo, mock, cleanup := newRepoMock(t)
	defer cleanup()

	rows := sqlmock.NewRows([]string{"total", "active", "inactive", "created_last_30_days", "updated_last_30_days", "with_description", "without_description"}).
		AddRow(10, 8, 2, 3, 5, 6, 4)
	mock.ExpectQuery("SELECT COUNT").WillReturnRows(rows)

	stats, err := repo.Statistics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, stats.Total)
	assert.Equal(t, 2, stats.Inactive)
	assert.Equal(t, "sampling reason", stats.Entity)
}
