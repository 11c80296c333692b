// internal/adapters/db/journal_repository_test.go
package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LucasDeWerk/vstcount/internal/adapters/db"
	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/test/helpers"
)

func setupJournal(t *testing.T) (ports.CountJournal, *helpers.TestDB) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	testDB := helpers.SetupTestDB(t)
	repo := db.NewJournalRepository(testDB.Database, helpers.TestLogger())
	return repo, testDB
}

func TestJournalRepository_RecordAndFind(t *testing.T) {
	repo, testDB := setupJournal(t)
	ctx := context.Background()

	entry := helpers.CreateTestJournalEntry()
	require.NoError(t, repo.Record(ctx, entry))

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)

	assert.Equal(t, entry.CompanyID, found.CompanyID)
	assert.Equal(t, entry.ProductID, found.ProductID)
	assert.Equal(t, entry.CountedQuantity, found.CountedQuantity)
	assert.True(t, entry.Variance.Equal(found.Variance))
	assert.Equal(t, entry.Source, found.Source)
	assert.Equal(t, entry.Outcome, found.Outcome)
	assert.WithinDuration(t, entry.SubmittedAt, found.SubmittedAt, time.Second)

	helpers.TruncateAllTables(t, testDB.PgxPool)
}

func TestJournalRepository_FindByID_NotFound(t *testing.T) {
	repo, _ := setupJournal(t)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.Error(t, err)
}

func TestJournalRepository_SetEvidenceKey(t *testing.T) {
	repo, testDB := setupJournal(t)
	ctx := context.Background()

	entry := helpers.CreateTestJournalEntry()
	require.NoError(t, repo.Record(ctx, entry))

	key := "evidence/ACME:01:INV-7/" + entry.ID.String() + "/capture.jpg"
	require.NoError(t, repo.SetEvidenceKey(ctx, entry.ID, key))

	found, err := repo.FindByID(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, key, found.EvidenceKey)

	helpers.TruncateAllTables(t, testDB.PgxPool)
}

func TestJournalRepository_List(t *testing.T) {
	repo, testDB := setupJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := helpers.CreateTestJournalEntry(func(e *domain.JournalEntry) {
			e.ProductID = "P-100"
		})
		require.NoError(t, repo.Record(ctx, entry))
	}
	failed := helpers.CreateTestJournalEntry(func(e *domain.JournalEntry) {
		e.ProductID = "P-200"
		e.Outcome = domain.OutcomeFailed
		e.FailureKind = string(domain.KindTimeout)
	})
	require.NoError(t, repo.Record(ctx, failed))
	other := helpers.CreateTestJournalEntry(func(e *domain.JournalEntry) {
		e.CompanyID = "OTHER"
	})
	require.NoError(t, repo.Record(ctx, other))

	t.Run("filters by company", func(t *testing.T) {
		result, err := repo.List(ctx, ports.JournalParams{
			CompanyID: "ACME",
			Page:      1,
			PageSize:  50,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 6, result.TotalCount)
	})

	t.Run("filters by outcome", func(t *testing.T) {
		result, err := repo.List(ctx, ports.JournalParams{
			CompanyID: "ACME",
			Outcome:   string(domain.OutcomeFailed),
			Page:      1,
			PageSize:  50,
		})
		require.NoError(t, err)
		require.Len(t, result.Entries, 1)
		assert.Equal(t, "P-200", result.Entries[0].ProductID)
		assert.Equal(t, string(domain.KindTimeout), result.Entries[0].FailureKind)
	})

	t.Run("filters by product", func(t *testing.T) {
		result, err := repo.List(ctx, ports.JournalParams{
			ProductID: "P-100",
			Page:      1,
			PageSize:  50,
		})
		require.NoError(t, err)
		assert.EqualValues(t, 5, result.TotalCount)
	})

	t.Run("paginates", func(t *testing.T) {
		result, err := repo.List(ctx, ports.JournalParams{
			CompanyID: "ACME",
			Page:      2,
			PageSize:  4,
		})
		require.NoError(t, err)
		assert.Len(t, result.Entries, 2)
		assert.Equal(t, 2, result.TotalPages)
	})

	helpers.TruncateAllTables(t, testDB.PgxPool)
}

func TestJournalRepository_DeleteOlderThan(t *testing.T) {
	repo, testDB := setupJournal(t)
	ctx := context.Background()

	old := helpers.CreateTestJournalEntry(func(e *domain.JournalEntry) {
		e.SubmittedAt = time.Now().AddDate(0, 0, -120)
	})
	require.NoError(t, repo.Record(ctx, old))

	recent := helpers.CreateTestJournalEntry(func(e *domain.JournalEntry) {
		e.ExpectedStock = decimal.NewFromInt(20)
	})
	require.NoError(t, repo.Record(ctx, recent))

	deleted, err := repo.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -90))
	require.NoError(t, err)
	assert.EqualValues(t, 1, deleted)

	_, err = repo.FindByID(ctx, old.ID)
	assert.Error(t, err)

	found, err := repo.FindByID(ctx, recent.ID)
	require.NoError(t, err)
	assert.Equal(t, recent.ID, found.ID)

	helpers.TruncateAllTables(t, testDB.PgxPool)
}
