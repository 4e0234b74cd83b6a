package policy

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockApplier(t *testing.T) (*Applier, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err, "failed to create sqlmock")
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open gorm")

	return NewApplier(gormDB), mock
}

func expectExistsQuery(mock sqlmock.Sqlmock, tmpl Template, count int) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM pg_policies`).
		WithArgs(tmpl.Schema, tmpl.Table, tmpl.Name).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(count))
}

func TestApplyCreatesMissingPolicies(t *testing.T) {
	applier, mock := newMockApplier(t)

	for _, tmpl := range Templates() {
		expectExistsQuery(mock, tmpl, 0)
		mock.ExpectExec(`CREATE POLICY`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	results, err := applier.Apply(context.Background())
	require.NoError(t, err)

	require.Len(t, results, len(Templates()))
	for _, result := range results {
		assert.Equal(t, StatusCreated, result.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplyIsIdempotent(t *testing.T) {
	applier, mock := newMockApplier(t)

	// Both policies already present: no CREATE statements expected.
	for _, tmpl := range Templates() {
		expectExistsQuery(mock, tmpl, 1)
	}

	results, err := applier.Apply(context.Background())
	require.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, StatusExists, result.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveDropsPresentPolicies(t *testing.T) {
	applier, mock := newMockApplier(t)

	for _, tmpl := range Templates() {
		expectExistsQuery(mock, tmpl, 1)
		mock.ExpectExec(`DROP POLICY IF EXISTS`).
			WillReturnResult(sqlmock.NewResult(0, 0))
	}

	results, err := applier.Remove(context.Background())
	require.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, StatusRemoved, result.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRemoveMissingPoliciesReportsAbsent(t *testing.T) {
	applier, mock := newMockApplier(t)

	for _, tmpl := range Templates() {
		expectExistsQuery(mock, tmpl, 0)
	}

	results, err := applier.Remove(context.Background())
	require.NoError(t, err)

	for _, result := range results {
		assert.Equal(t, StatusAbsent, result.Status)
	}

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestApplied(t *testing.T) {
	applier, mock := newMockApplier(t)

	expectExistsQuery(mock, ObjectsPolicy, 1)
	expectExistsQuery(mock, BucketsPolicy, 0)

	applied, err := applier.Applied(context.Background())
	require.NoError(t, err)

	assert.True(t, applied[ObjectsPolicy.Name])
	assert.False(t, applied[BucketsPolicy.Name])
}
