package dictionary

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

//go:generate mockgen -source=repository.go -destination=../mocks/dictionary/mock_repository.go -package=mock_dictionary

// SearchFields selects which entry fields a search matches against.
type SearchFields uint8

const (
	FieldHeadword SearchFields = 1 << iota
	FieldSenses

	FieldsAll = FieldHeadword | FieldSenses
)

// Has reports whether f includes field.
func (f SearchFields) Has(field SearchFields) bool {
	return f&field != 0
}

// SearchFilter describes a substring lookup against the store.
type SearchFilter struct {
	// Pattern is a LIKE pattern over folded text, built by ContainsPattern.
	Pattern string
	Fields  SearchFields
	Limit   int
}

// EntryRepository defines operations for reading and seeding dictionary entries.
type EntryRepository interface {
	Search(ctx context.Context, filter SearchFilter) ([]Entry, error)
	FindAll(ctx context.Context) ([]Entry, error)
	FindByHeadword(ctx context.Context, headword string) (*Entry, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, entry *Entry) error
	Update(ctx context.Context, entry *Entry) error
}

// DBEntryRepository implements EntryRepository on top of sqlx.
// Queries use `?` bind variables, which both supported drivers accept.
type DBEntryRepository struct {
	db  *sqlx.DB
	now func() time.Time
}

// NewDBEntryRepository creates a new DBEntryRepository.
func NewDBEntryRepository(db *sqlx.DB) *DBEntryRepository {
	return &DBEntryRepository{
		db: db,
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

const entryColumns = "e.id, e.headword, e.created_at, e.updated_at"

// Search returns at most filter.Limit entries whose headword or senses match the pattern,
// in store order.
func (r *DBEntryRepository) Search(ctx context.Context, filter SearchFilter) ([]Entry, error) {
	if filter.Limit <= 0 {
		return nil, fmt.Errorf("search limit must be positive, got %d", filter.Limit)
	}

	var conditions []string
	var args []interface{}
	if filter.Fields.Has(FieldHeadword) {
		conditions = append(conditions, "e.headword_folded LIKE ? ESCAPE '!'")
		args = append(args, filter.Pattern)
	}
	if filter.Fields.Has(FieldSenses) {
		conditions = append(conditions, "EXISTS (SELECT 1 FROM entry_senses s WHERE s.entry_id = e.id AND s.sense_folded LIKE ? ESCAPE '!')")
		args = append(args, filter.Pattern)
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("search requires at least one field")
	}
	args = append(args, filter.Limit)

	query := "SELECT " + entryColumns + " FROM entries e WHERE " +
		strings.Join(conditions, " OR ") +
		" ORDER BY e.id LIMIT ?"

	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(search entries) > %w", err)
	}
	if err := r.loadRelations(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindAll returns every entry in store order.
func (r *DBEntryRepository) FindAll(ctx context.Context) ([]Entry, error) {
	var entries []Entry
	if err := r.db.SelectContext(ctx, &entries, "SELECT "+entryColumns+" FROM entries e ORDER BY e.id"); err != nil {
		return nil, fmt.Errorf("db.SelectContext(entries) > %w", err)
	}
	if err := r.loadRelations(ctx, entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// FindByHeadword returns the entry with the exact headword, or nil if not found.
func (r *DBEntryRepository) FindByHeadword(ctx context.Context, headword string) (*Entry, error) {
	var entry Entry
	err := r.db.GetContext(ctx, &entry, "SELECT "+entryColumns+" FROM entries e WHERE e.headword = ?", headword)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(entry) > %w", err)
	}
	entries := []Entry{entry}
	if err := r.loadRelations(ctx, entries); err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// Count returns the number of stored entries.
func (r *DBEntryRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM entries"); err != nil {
		return 0, fmt.Errorf("db.GetContext(count entries) > %w", err)
	}
	return count, nil
}

// Create inserts an entry with its parts of speech and senses in a transaction.
func (r *DBEntryRepository) Create(ctx context.Context, entry *Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	result, err := tx.ExecContext(ctx,
		"INSERT INTO entries (headword, headword_folded, created_at, updated_at) VALUES (?, ?, ?, ?)",
		entry.Headword, Fold(entry.Headword), now, now)
	if err != nil {
		return fmt.Errorf("tx.ExecContext(insert entry) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}

	if err := insertChildren(ctx, tx, id, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}

	entry.ID = id
	entry.CreatedAt = now
	entry.UpdatedAt = now
	return nil
}

// Update replaces the parts of speech and senses of an existing entry.
func (r *DBEntryRepository) Update(ctx context.Context, entry *Entry) error {
	if entry.ID == 0 {
		return fmt.Errorf("entry %q has no id", entry.Headword)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx() > %w", err)
	}
	defer tx.Rollback()

	now := r.now()
	if _, err := tx.ExecContext(ctx,
		"UPDATE entries SET headword = ?, headword_folded = ?, updated_at = ? WHERE id = ?",
		entry.Headword, Fold(entry.Headword), now, entry.ID); err != nil {
		return fmt.Errorf("tx.ExecContext(update entry) > %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entry_parts_of_speech WHERE entry_id = ?", entry.ID); err != nil {
		return fmt.Errorf("tx.ExecContext(delete entry_parts_of_speech) > %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM entry_senses WHERE entry_id = ?", entry.ID); err != nil {
		return fmt.Errorf("tx.ExecContext(delete entry_senses) > %w", err)
	}
	if err := insertChildren(ctx, tx, entry.ID, entry); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit() > %w", err)
	}

	entry.UpdatedAt = now
	return nil
}

func insertChildren(ctx context.Context, tx *sqlx.Tx, entryID int64, entry *Entry) error {
	for i, pos := range entry.PartsOfSpeech {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_parts_of_speech (entry_id, sort_order, pos) VALUES (?, ?, ?)",
			entryID, i, pos); err != nil {
			return fmt.Errorf("tx.ExecContext(insert entry_part_of_speech) > %w", err)
		}
	}
	for i, sense := range entry.Senses {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entry_senses (entry_id, sort_order, sense, sense_folded) VALUES (?, ?, ?, ?)",
			entryID, i, sense, Fold(sense)); err != nil {
			return fmt.Errorf("tx.ExecContext(insert entry_sense) > %w", err)
		}
	}
	return nil
}

type partOfSpeechRow struct {
	EntryID int64  `db:"entry_id"`
	Pos     string `db:"pos"`
}

type senseRow struct {
	EntryID int64  `db:"entry_id"`
	Sense   string `db:"sense"`
}

// loadRelations fills parts of speech and senses for the given entries in place.
func (r *DBEntryRepository) loadRelations(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	ids := make([]int64, len(entries))
	byID := make(map[int64]*Entry, len(entries))
	for i := range entries {
		ids[i] = entries[i].ID
		byID[entries[i].ID] = &entries[i]
		entries[i].PartsOfSpeech = PartsOfSpeech{}
		entries[i].Senses = []string{}
	}

	query, args, err := sqlx.In("SELECT entry_id, pos FROM entry_parts_of_speech WHERE entry_id IN (?) ORDER BY entry_id, sort_order", ids)
	if err != nil {
		return fmt.Errorf("sqlx.In(entry_parts_of_speech) > %w", err)
	}
	var posRows []partOfSpeechRow
	if err := r.db.SelectContext(ctx, &posRows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.SelectContext(entry_parts_of_speech) > %w", err)
	}
	for _, row := range posRows {
		if e, ok := byID[row.EntryID]; ok {
			e.PartsOfSpeech = append(e.PartsOfSpeech, row.Pos)
		}
	}

	query, args, err = sqlx.In("SELECT entry_id, sense FROM entry_senses WHERE entry_id IN (?) ORDER BY entry_id, sort_order", ids)
	if err != nil {
		return fmt.Errorf("sqlx.In(entry_senses) > %w", err)
	}
	var senseRows []senseRow
	if err := r.db.SelectContext(ctx, &senseRows, r.db.Rebind(query), args...); err != nil {
		return fmt.Errorf("db.SelectContext(entry_senses) > %w", err)
	}
	for _, row := range senseRows {
		if e, ok := byID[row.EntryID]; ok {
			e.Senses = append(e.Senses, row.Sense)
		}
	}
	return nil
}
