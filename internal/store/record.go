package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/finlog-app/finlog/internal/dto"
	"github.com/finlog-app/finlog/internal/errs"
	"github.com/finlog-app/finlog/internal/models"
)

type recordStore struct {
	store *Store
}

// NewRecordStore returns owner-scoped CRUD over record rows. All writes are
// insert-or-replace by id: replaying an identical mutation reproduces the
// same stored state. Conflict updates keep the original rowid so insertion
// order survives for tie-breaking, and only fire when the existing row
// belongs to the same owner; writing a foreign id is a no-op.
func NewRecordStore(store *Store) *recordStore {
	return &recordStore{store: store}
}

const recordColumns = `id, owner_id, kind, amount, date, category, account,
	payment_method, notes, tags, recurrence, from_account, to_account,
	loan_payment, loan_id, created_at, updated_at`

// List returns the owner's records, newest date first, creation-order ties
// broken most recent first. The ordering is stable so the client's
// "most recent first" view needs no pagination cursor.
func (s *recordStore) List(ctx context.Context, ownerID string, filters dto.ListFilters) ([]models.Record, error) {
	query := "SELECT " + recordColumns + " FROM records WHERE owner_id = ?"
	args := []any{ownerID}

	if filters.DateFrom != "" {
		query += " AND date >= ?"
		args = append(args, filters.DateFrom)
	}
	if filters.DateTo != "" {
		query += " AND date <= ?"
		args = append(args, filters.DateTo)
	}
	query += " ORDER BY date DESC, rowid DESC"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errs.NewDatabaseError("query records", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, errs.NewDatabaseError("scan record", err)
		}
		// Account participation is transfer-aware, so it is applied here
		// rather than in SQL.
		if filters.Account != "" && !rec.MatchesAccount(filters.Account) {
			continue
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errs.NewDatabaseError("iterate records", err)
	}

	return records, nil
}

// Upsert inserts or replaces one record by id.
func (s *recordStore) Upsert(ctx context.Context, rec models.Record) error {
	if err := s.execUpsert(ctx, s.store.db, rec); err != nil {
		return errs.NewDatabaseError("upsert record", err)
	}
	return nil
}

// Delete removes the record if it belongs to the owner. Deleting an absent
// or foreign id is a no-op, not an error.
func (s *recordStore) Delete(ctx context.Context, ownerID, id string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE id = ? AND owner_id = ?", id, ownerID)
	if err != nil {
		return errs.NewDatabaseError("delete record", err)
	}
	return nil
}

// DeleteAll removes every record the owner holds.
func (s *recordStore) DeleteAll(ctx context.Context, ownerID string) error {
	_, err := s.store.db.ExecContext(ctx,
		"DELETE FROM records WHERE owner_id = ?", ownerID)
	if err != nil {
		return errs.NewDatabaseError("delete all records", err)
	}
	return nil
}

// InsertBatch inserts every record unconditionally inside one transaction.
// Duplicate detection is the importer's concern, not this layer's.
func (s *recordStore) InsertBatch(ctx context.Context, records []models.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("begin batch insert", err)
	}
	defer tx.Rollback()

	for _, rec := range records {
		if err := s.execUpsert(ctx, tx, rec); err != nil {
			return errs.NewDatabaseError("batch insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("commit batch insert", err)
	}
	return nil
}

// ReplaceAll atomically clears the owner's record set and re-inserts the
// given list.
func (s *recordStore) ReplaceAll(ctx context.Context, ownerID string, records []models.Record) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return errs.NewDatabaseError("begin replace all", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM records WHERE owner_id = ?", ownerID); err != nil {
		return errs.NewDatabaseError("replace all clear", err)
	}

	for _, rec := range records {
		if err := s.execUpsert(ctx, tx, rec); err != nil {
			return errs.NewDatabaseError("replace all insert", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errs.NewDatabaseError("commit replace all", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *recordStore) execUpsert(ctx context.Context, db execer, rec models.Record) error {
	now := time.Now().UTC()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now

	tags, err := json.Marshal(tagsOrEmpty(rec.Tags))
	if err != nil {
		return fmt.Errorf("marshal tags: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			amount = excluded.amount,
			date = excluded.date,
			category = excluded.category,
			account = excluded.account,
			payment_method = excluded.payment_method,
			notes = excluded.notes,
			tags = excluded.tags,
			recurrence = excluded.recurrence,
			from_account = excluded.from_account,
			to_account = excluded.to_account,
			loan_payment = excluded.loan_payment,
			loan_id = excluded.loan_id,
			updated_at = excluded.updated_at
		WHERE records.owner_id = excluded.owner_id
	`,
		rec.ID,
		rec.OwnerID,
		string(rec.Kind),
		rec.Amount,
		rec.Date,
		rec.Category,
		rec.Account,
		string(rec.PaymentMethod),
		rec.Notes,
		string(tags),
		rec.Recurrence,
		rec.FromAccount,
		rec.ToAccount,
		boolToInt(rec.LoanPayment),
		rec.LoanID,
		rec.CreatedAt.Format(time.RFC3339Nano),
		rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	return err
}

func scanRecord(rows *sql.Rows) (models.Record, error) {
	var (
		rec         models.Record
		kind        string
		payment     string
		tagsJSON    string
		loanPayment int
		createdAt   string
		updatedAt   string
	)

	err := rows.Scan(
		&rec.ID,
		&rec.OwnerID,
		&kind,
		&rec.Amount,
		&rec.Date,
		&rec.Category,
		&rec.Account,
		&payment,
		&rec.Notes,
		&tagsJSON,
		&rec.Recurrence,
		&rec.FromAccount,
		&rec.ToAccount,
		&loanPayment,
		&rec.LoanID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("scan record: %w", err)
	}

	rec.Kind = models.RecordKind(kind)
	rec.PaymentMethod = models.PaymentMethod(payment)
	rec.LoanPayment = loanPayment != 0

	if err := json.Unmarshal([]byte(tagsJSON), &rec.Tags); err != nil {
		return models.Record{}, fmt.Errorf("unmarshal tags: %w", err)
	}
	if len(rec.Tags) == 0 {
		rec.Tags = nil
	}

	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return models.Record{}, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return models.Record{}, fmt.Errorf("parse updated_at: %w", err)
	}

	return rec, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
