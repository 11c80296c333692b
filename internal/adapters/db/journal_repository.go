// internal/adapters/db/journal_repository.go
package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
)

// journalRepository implements ports.CountJournal
type journalRepository struct {
	db     ports.Database
	logger *slog.Logger
}

// NewJournalRepository creates a new count journal repository
func NewJournalRepository(db ports.Database, logger *slog.Logger) ports.CountJournal {
	return &journalRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "journal")),
	}
}

// Record appends one submission record to the journal
func (r *journalRepository) Record(ctx context.Context, entry *domain.JournalEntry) error {
	entry.PrepareForStorage()

	query := `
		INSERT INTO count_journal (
			id, company_id, branch_id, inventory_id,
			product_id, warehouse_id, counted_quantity, expected_stock,
			variance, source, outcome, failure_kind,
			new_inventory_id, evidence_key, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8,
			$9, $10, $11, $12, $13, $14, $15
		)`

	_, err := r.db.Exec(ctx, query,
		entry.ID, entry.CompanyID, entry.BranchID, entry.InventoryID,
		entry.ProductID, entry.WarehouseID, entry.CountedQuantity, entry.ExpectedStock,
		entry.Variance, entry.Source, entry.Outcome, entry.FailureKind,
		entry.NewInventoryID, entry.EvidenceKey, entry.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}

	r.logger.DebugContext(ctx, "journal entry recorded",
		slog.String("id", entry.ID.String()),
		slog.String("product_id", entry.ProductID),
		slog.String("outcome", string(entry.Outcome)))

	return nil
}

// FindByID returns one journal entry, or nil when it does not exist
func (r *journalRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.JournalEntry, error) {
	query := `
		SELECT id, company_id, branch_id, inventory_id,
		       product_id, warehouse_id, counted_quantity, expected_stock,
		       variance, source, outcome, failure_kind,
		       new_inventory_id, evidence_key, submitted_at
		FROM count_journal
		WHERE id = $1`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find journal entry: %w", err)
	}
	return entry, nil
}

// SetEvidenceKey attaches the archived evidence object key to an entry
func (r *journalRepository) SetEvidenceKey(ctx context.Context, id uuid.UUID, key string) error {
	tag, err := r.db.Exec(ctx, `UPDATE count_journal SET evidence_key = $2 WHERE id = $1`, id, key)
	if err != nil {
		return fmt.Errorf("failed to set evidence key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("journal entry %s not found", id)
	}
	return nil
}

// List returns a filtered, paginated page of journal entries, newest first
func (r *journalRepository) List(ctx context.Context, params ports.JournalParams) (*ports.JournalResult, error) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 || params.PageSize > 500 {
		params.PageSize = 50
	}

	qb := squirrel.Select(
		"id", "company_id", "branch_id", "inventory_id",
		"product_id", "warehouse_id", "counted_quantity", "expected_stock",
		"variance", "source", "outcome", "failure_kind",
		"new_inventory_id", "evidence_key", "submitted_at",
	).
		From("count_journal").
		PlaceholderFormat(squirrel.Dollar)

	countQb := squirrel.Select("COUNT(*)").
		From("count_journal").
		PlaceholderFormat(squirrel.Dollar)

	filters := []squirrel.Sqlizer{}
	if params.CompanyID != "" {
		filters = append(filters, squirrel.Eq{"company_id": params.CompanyID})
	}
	if params.BranchID != "" {
		filters = append(filters, squirrel.Eq{"branch_id": params.BranchID})
	}
	if params.InventoryID != "" {
		filters = append(filters, squirrel.Eq{"inventory_id": params.InventoryID})
	}
	if params.ProductID != "" {
		filters = append(filters, squirrel.Eq{"product_id": params.ProductID})
	}
	if params.Outcome != "" {
		filters = append(filters, squirrel.Eq{"outcome": params.Outcome})
	}
	for _, f := range filters {
		qb = qb.Where(f)
		countQb = countQb.Where(f)
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count journal entries: %w", err)
	}

	qb = qb.OrderBy("submitted_at DESC").
		Limit(uint64(params.PageSize)).
		Offset(uint64((params.Page - 1) * params.PageSize))

	querySQL, queryArgs, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.JournalEntry, 0, params.PageSize)
	for rows.Next() {
		entry, serr := scanEntry(rows)
		if serr != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", serr)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read journal rows: %w", err)
	}

	totalPages := int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	return &ports.JournalResult{
		Entries:    entries,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalCount: total,
		TotalPages: totalPages,
	}, nil
}

// DeleteOlderThan purges entries submitted before the cutoff and returns
// how many were removed
func (r *journalRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM count_journal WHERE submitted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge journal: %w", err)
	}

	removed := tag.RowsAffected()
	if removed > 0 {
		r.logger.InfoContext(ctx, "journal purged",
			slog.Int64("removed", removed),
			slog.Time("cutoff", cutoff))
	}
	return removed, nil
}

// scanEntry reads one journal row in select column order
func scanEntry(row pgx.Row) (*domain.JournalEntry, error) {
	var e domain.JournalEntry
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.BranchID, &e.InventoryID,
		&e.ProductID, &e.WarehouseID, &e.CountedQuantity, &e.ExpectedStock,
		&e.Variance, &e.Source, &e.Outcome, &e.FailureKind,
		&e.NewInventoryID, &e.EvidenceKey, &e.SubmittedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
