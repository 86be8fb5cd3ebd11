package repository_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/slcgroup/costing-api/internal/domain"
	"github.com/slcgroup/costing-api/internal/repository"
	"github.com/slcgroup/costing-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteRepository_NextQuoteNumber(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	first, err := repo.NextQuoteNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0001", first)

	// The sequence only advances once a quote is stored
	again, err := repo.NextQuoteNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0001", again)

	require.NoError(t, repo.Create(ctx, &domain.Quote{
		QuoteNumber: first,
		ClientName:  "Client A",
		Status:      domain.QuoteStatusDraft,
		TaxRate:     10,
	}))

	second, err := repo.NextQuoteNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "Q-2026-0002", second)

	t.Run("sequences are per year", func(t *testing.T) {
		number, err := repo.NextQuoteNumber(ctx, 2027)
		require.NoError(t, err)
		assert.Equal(t, "Q-2027-0001", number)
	})

	t.Run("gaps resume from the highest number", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, &domain.Quote{
			QuoteNumber: "Q-2026-0042",
			ClientName:  "Client B",
			Status:      domain.QuoteStatusDraft,
			TaxRate:     10,
		}))

		number, err := repo.NextQuoteNumber(ctx, 2026)
		require.NoError(t, err)
		assert.Equal(t, "Q-2026-0043", number)
	})
}

func TestQuoteRepository_CreateWithNumber(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	first := &domain.Quote{ClientName: "Client A", Status: domain.QuoteStatusDraft, TaxRate: 10}
	require.NoError(t, repo.CreateWithNumber(ctx, first, 2026))
	assert.Equal(t, "Q-2026-0001", first.QuoteNumber)

	second := &domain.Quote{ClientName: "Client B", Status: domain.QuoteStatusDraft, TaxRate: 10}
	require.NoError(t, repo.CreateWithNumber(ctx, second, 2026))
	assert.Equal(t, "Q-2026-0002", second.QuoteNumber)

	t.Run("concurrent creators get distinct numbers", func(t *testing.T) {
		const workers = 5

		var wg sync.WaitGroup
		errs := make([]error, workers)
		quotes := make([]*domain.Quote, workers)

		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				quotes[i] = &domain.Quote{
					ClientName: fmt.Sprintf("Concurrent %d", i),
					Status:     domain.QuoteStatusDraft,
					TaxRate:    10,
				}
				errs[i] = repo.CreateWithNumber(ctx, quotes[i], 2026)
			}(i)
		}
		wg.Wait()

		seen := make(map[string]bool)
		for i := 0; i < workers; i++ {
			require.NoError(t, errs[i])
			assert.False(t, seen[quotes[i].QuoteNumber], "duplicate number %s", quotes[i].QuoteNumber)
			seen[quotes[i].QuoteNumber] = true
		}
	})
}

func TestQuoteRepository_DeleteCascadesItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	quote := &domain.Quote{
		QuoteNumber: "Q-2026-7001",
		ClientName:  "Cascade client",
		Status:      domain.QuoteStatusDraft,
		TaxRate:     10,
		Items: []domain.QuoteItem{
			{ItemType: domain.QuoteItemTypeMaterial, Description: "Cable", Quantity: 1, UnitPrice: 100, TotalPrice: 100, SortOrder: 1},
			{ItemType: domain.QuoteItemTypeTask, Description: "Install", Quantity: 1, UnitPrice: 200, TotalPrice: 200, SortOrder: 2},
		},
	}
	require.NoError(t, repo.Create(ctx, quote))

	require.NoError(t, repo.Delete(ctx, quote.ID))

	var itemCount int64
	require.NoError(t, db.Model(&domain.QuoteItem{}).Where("quote_id = ?", quote.ID).Count(&itemCount).Error)
	assert.Zero(t, itemCount)
}

func TestQuoteRepository_List_Filters(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	project := testutil.CreateTestProject(t, db, "Filtered project")

	for i, status := range []domain.QuoteStatus{domain.QuoteStatusDraft, domain.QuoteStatusSent, domain.QuoteStatusSent} {
		quote := &domain.Quote{
			QuoteNumber: fmt.Sprintf("Q-2026-80%02d", i+1),
			ClientName:  "Westfield Constructions",
			Status:      status,
			TaxRate:     10,
		}
		if i == 0 {
			quote.ProjectID = &project.ID
		}
		require.NoError(t, repo.Create(ctx, quote))
	}

	t.Run("by status", func(t *testing.T) {
		quotes, total, err := repo.List(ctx, &repository.QuoteFilter{Status: "sent"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 2, total)
		assert.Len(t, quotes, 2)
	})

	t.Run("by project", func(t *testing.T) {
		_, total, err := repo.List(ctx, &repository.QuoteFilter{ProjectID: &project.ID}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 1, total)
	})

	t.Run("by client name search", func(t *testing.T) {
		_, total, err := repo.List(ctx, &repository.QuoteFilter{Search: "westfield"}, 1, 20)
		require.NoError(t, err)
		assert.EqualValues(t, 3, total)
	})
}

func TestQuoteRepository_ListExpirable(t *testing.T) {
	db := testutil.SetupCleanTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	past := time.Now().UTC().Add(-24 * time.Hour)
	future := time.Now().UTC().Add(24 * time.Hour)

	overdue := &domain.Quote{QuoteNumber: "Q-2026-7201", ClientName: "Overdue", Status: domain.QuoteStatusSent, TaxRate: 10, ValidUntil: &past}
	stillValid := &domain.Quote{QuoteNumber: "Q-2026-7202", ClientName: "Valid", Status: domain.QuoteStatusSent, TaxRate: 10, ValidUntil: &future}
	draftPast := &domain.Quote{QuoteNumber: "Q-2026-7203", ClientName: "Draft", Status: domain.QuoteStatusDraft, TaxRate: 10, ValidUntil: &past}
	openEnded := &domain.Quote{QuoteNumber: "Q-2026-7204", ClientName: "Open", Status: domain.QuoteStatusSent, TaxRate: 10}
	for _, quote := range []*domain.Quote{overdue, stillValid, draftPast, openEnded} {
		require.NoError(t, repo.Create(ctx, quote))
	}

	quotes, err := repo.ListExpirable(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, overdue.ID, quotes[0].ID)
}

func TestQuoteRepository_GetByID_OrdersItems(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestData(t, db)
	repo := repository.NewQuoteRepository(db)
	ctx := context.Background()

	quote := &domain.Quote{
		QuoteNumber: "Q-2026-7101",
		ClientName:  "Ordered client",
		Status:      domain.QuoteStatusDraft,
		TaxRate:     10,
		Items: []domain.QuoteItem{
			{ItemType: domain.QuoteItemTypeTask, Description: "Second", Quantity: 1, UnitPrice: 1, TotalPrice: 1, SortOrder: 2},
			{ItemType: domain.QuoteItemTypeTask, Description: "First", Quantity: 1, UnitPrice: 1, TotalPrice: 1, SortOrder: 1},
		},
	}
	require.NoError(t, repo.Create(ctx, quote))

	loaded, err := repo.GetByID(ctx, quote.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Items, 2)
	assert.Equal(t, "First", loaded.Items[0].Description)
	assert.Equal(t, "Second", loaded.Items[1].Description)
}
