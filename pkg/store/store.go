package store

import (
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var (
	ErrNotFound  = errors.New("label not found")
	ErrCollision = errors.New("label already issued for a different source")
)

type Store struct {
	db *sql.DB
}

// Label is an issued label and the value it encodes.
type Label struct {
	ID        string
	Format    string
	Label     string
	Value     *big.Int
	Source    string // caller-supplied reference to the hashed input, may be empty
	CreatedAt time.Time
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func (s *Store) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS labels (
			id TEXT PRIMARY KEY,
			format TEXT NOT NULL,
			label TEXT NOT NULL,
			value TEXT NOT NULL,
			source TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE (format, label)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_labels_format ON labels(format)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}

	if err := s.migrateAudit(); err != nil {
		return err
	}

	return nil
}

func generateID() string {
	return uuid.New().String()
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Label operations

// RecordLabel stores label as issued by format. Recording the same label again
// returns the existing row; recording it for a different non-empty source
// returns the existing row and ErrCollision.
func (s *Store) RecordLabel(format, label string, value *big.Int, source string) (*Label, error) {
	_, err := s.db.Exec(
		`INSERT INTO labels (id, format, label, value, source) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (format, label) DO NOTHING`,
		generateID(), format, label, value.String(), source,
	)
	if err != nil {
		return nil, err
	}

	l, err := s.LookupLabel(format, label)
	if err != nil {
		return nil, err
	}
	if source != "" && l.Source != "" && l.Source != source {
		return l, fmt.Errorf("%w: %q (%s)", ErrCollision, label, l.Source)
	}
	return l, nil
}

func (s *Store) LookupLabel(format, label string) (*Label, error) {
	row := s.db.QueryRow(
		`SELECT id, format, label, value, source, created_at FROM labels WHERE format = ? AND label = ?`,
		format, label,
	)
	l, err := scanLabel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, label)
	}
	return l, err
}

// ListLabels returns the most recent labels first. An empty format lists all
// formats; a non-positive limit lists everything.
func (s *Store) ListLabels(format string, limit int) ([]*Label, error) {
	query := `SELECT id, format, label, value, source, created_at FROM labels WHERE 1=1`
	args := []interface{}{}

	if format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var labels []*Label
	for rows.Next() {
		l, err := scanLabel(rows)
		if err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

func (s *Store) DeleteLabel(format, label string) error {
	_, err := s.db.Exec(`DELETE FROM labels WHERE format = ? AND label = ?`, format, label)
	return err
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanLabel(row scanner) (*Label, error) {
	var l Label
	var value string
	var source *string
	if err := row.Scan(&l.ID, &l.Format, &l.Label, &value, &source, &l.CreatedAt); err != nil {
		return nil, err
	}
	v, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("label %q has corrupt value %q", l.Label, value)
	}
	l.Value = v
	if source != nil {
		l.Source = *source
	}
	return &l, nil
}
