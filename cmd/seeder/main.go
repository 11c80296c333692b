// cmd/seeder/main.go
//
// Seeds the count journal with plausible demo data so the listing API and
// dashboards have something to show in a fresh environment.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/pkg/config"
	"github.com/LucasDeWerk/vstcount/internal/pkg/logger"
)

type seedProduct struct {
	productID   string
	warehouseID string
	expected    int
}

var seedProducts = []seedProduct{
	{"RT-2020-6M", "WH-1", 120},
	{"RT-2525-6M", "WH-1", 86},
	{"ST-4040-6M", "WH-1", 64},
	{"ST-5050-3M", "WH-2", 40},
	{"BAR-12-3M", "WH-2", 310},
	{"BAR-16-6M", "WH-2", 255},
	{"SH-1500-3000", "WH-3", 48},
	{"SH-2000-1000", "WH-3", 75},
	{"COIL-08-250", "WH-3", 12},
	{"COIL-12-500", "WH-3", 9},
}

var seedBranches = []string{"01", "02", "05"}

func main() {
	var (
		entryCount = flag.Int("count", 200, "number of journal entries to generate")
		companyID  = flag.String("company", "ACME", "company id for generated entries")
		days       = flag.Int("days", 30, "spread entries over the past N days")
		truncate   = flag.Bool("truncate", false, "truncate count_journal before seeding")
		seed       = flag.Int64("seed", 0, "random seed (0 uses current time)")
	)
	flag.Parse()

	slogger := logger.SetupLogger("info", "text")

	cfg, err := config.Load(slogger.Logger)
	if err != nil {
		slogger.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.GetDatabaseURL())
	if err != nil {
		slogger.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slogger.Error("database unreachable", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *truncate {
		if _, err := pool.Exec(ctx, "TRUNCATE TABLE count_journal"); err != nil {
			slogger.Error("failed to truncate count_journal", slog.String("error", err.Error()))
			os.Exit(1)
		}
		slogger.Info("truncated count_journal")
	}

	entries := generateEntries(rng, *entryCount, *companyID, *days)

	inserted, err := insertEntries(ctx, pool, entries)
	if err != nil {
		slogger.Error("failed to insert entries", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slogger.Info("seeding complete",
		slog.Int64("inserted", inserted),
		slog.String("company_id", *companyID),
		slog.Int64("seed", *seed),
	)
}

func generateEntries(rng *rand.Rand, n int, companyID string, days int) []*domain.JournalEntry {
	entries := make([]*domain.JournalEntry, 0, n)
	now := time.Now()

	for i := 0; i < n; i++ {
		product := seedProducts[rng.Intn(len(seedProducts))]
		branch := seedBranches[rng.Intn(len(seedBranches))]

		// Counts scatter around the expected stock so variances look real.
		counted := product.expected + rng.Intn(11) - 5
		if counted < 0 {
			counted = 0
		}

		expected := decimal.NewFromInt(int64(product.expected))
		variance := decimal.NewFromInt(int64(counted)).Sub(expected)

		source := domain.SourceDetection
		if rng.Intn(4) == 0 {
			source = domain.SourceManual
		}

		outcome := domain.OutcomeConfirmed
		failureKind := ""
		if rng.Intn(12) == 0 {
			outcome = domain.OutcomeFailed
			failureKind = string(randomFailureKind(rng))
		}

		inventoryID := fmt.Sprintf("INV-%d", 100+rng.Intn(20))

		entry := &domain.JournalEntry{
			ID:              uuid.New(),
			CompanyID:       companyID,
			BranchID:        branch,
			InventoryID:     inventoryID,
			ProductID:       product.productID,
			WarehouseID:     product.warehouseID,
			CountedQuantity: counted,
			ExpectedStock:   expected,
			Variance:        variance,
			Source:          source,
			Outcome:         outcome,
			FailureKind:     failureKind,
			SubmittedAt:     now.Add(-time.Duration(rng.Intn(days*24)) * time.Hour),
		}
		entries = append(entries, entry)
	}

	return entries
}

func randomFailureKind(rng *rand.Rand) domain.Kind {
	kinds := []domain.Kind{
		domain.KindNetwork,
		domain.KindTimeout,
		domain.KindServiceUnavailable,
		domain.KindServerError,
	}
	return kinds[rng.Intn(len(kinds))]
}

func insertEntries(ctx context.Context, pool *pgxpool.Pool, entries []*domain.JournalEntry) (int64, error) {
	rows := make([][]interface{}, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []interface{}{
			e.ID,
			e.CompanyID,
			e.BranchID,
			e.InventoryID,
			e.ProductID,
			e.WarehouseID,
			e.CountedQuantity,
			e.ExpectedStock,
			e.Variance,
			string(e.Source),
			string(e.Outcome),
			e.FailureKind,
			e.NewInventoryID,
			e.EvidenceKey,
			e.SubmittedAt,
		})
	}

	return pool.CopyFrom(ctx,
		pgx.Identifier{"count_journal"},
		[]string{
			"id", "company_id", "branch_id", "inventory_id", "product_id",
			"warehouse_id", "counted_quantity", "expected_stock", "variance",
			"source", "outcome", "failure_kind", "new_inventory_id",
			"evidence_key", "submitted_at",
		},
		pgx.CopyFromRows(rows),
	)
}
