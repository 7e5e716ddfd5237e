package store

import (
	"time"
)

type AuditEvent struct {
	ID        string
	Timestamp time.Time
	Action    string // encode, decode, validate, lookup
	Format    string
	Label     string
	Details   string // JSON blob with extra context
	IPAddress string
}

func (s *Store) migrateAudit() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS audit_log (
			id TEXT PRIMARY KEY,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			action TEXT NOT NULL,
			format TEXT,
			label TEXT,
			details TEXT,
			ip_address TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_log(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_format ON audit_log(format)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_log(action)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) LogAuditEvent(action, format, label, details, ipAddress string) error {
	id := generateID()
	_, err := s.db.Exec(
		`INSERT INTO audit_log (id, action, format, label, details, ip_address) 
		 VALUES (?, ?, ?, ?, ?, ?)`,
		id, action, format, label, details, ipAddress,
	)
	return err
}

func (s *Store) GetAuditLog(limit int, format string, action string) ([]*AuditEvent, error) {
	query := `SELECT id, timestamp, action, format, label, details, ip_address 
	          FROM audit_log WHERE 1=1`
	args := []interface{}{}

	if format != "" {
		query += " AND format = ?"
		args = append(args, format)
	}
	if action != "" {
		query += " AND action = ?"
		args = append(args, action)
	}

	query += " ORDER BY timestamp DESC, rowid DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryAudit(query, args...)
}

// GetAuditLogByTimeRange returns audit events within a time range
func (s *Store) GetAuditLogByTimeRange(start, end time.Time, limit int) ([]*AuditEvent, error) {
	query := `SELECT id, timestamp, action, format, label, details, ip_address 
	          FROM audit_log 
	          WHERE timestamp >= ? AND timestamp <= ?
	          ORDER BY timestamp DESC, rowid DESC`
	args := []interface{}{start, end}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return s.queryAudit(query, args...)
}

func (s *Store) queryAudit(query string, args ...interface{}) ([]*AuditEvent, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*AuditEvent
	for rows.Next() {
		var e AuditEvent
		var format, label, details, ipAddress *string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &format, &label, &details, &ipAddress); err != nil {
			return nil, err
		}
		if format != nil {
			e.Format = *format
		}
		if label != nil {
			e.Label = *label
		}
		if details != nil {
			e.Details = *details
		}
		if ipAddress != nil {
			e.IPAddress = *ipAddress
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
