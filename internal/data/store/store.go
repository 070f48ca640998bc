package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Pass is one persisted resolution pass with its counters.
type Pass struct {
	ID            int64
	RunID         string
	SchemaVersion int
	Timestamp     time.Time
	Files         int
	Mixins        int
	Elements      int
	Skipped       int
	Lookups       int
	Accepted      int
	Conflicts     int
	Missing       int
	Invalid       int
	WarningCount  int
	ErrorCount    int
}

// Mapping is one resolved coordinate row belonging to a pass.
type Mapping struct {
	Environment       string
	Owner             string
	Name              string
	Descriptor        string
	Kind              string
	RenamedOwner      string
	RenamedName       string
	RenamedDescriptor string
}

type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("store path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("store path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory %q: %w", dir, err)
		}
	}

	// busy_timeout + WAL reduce lock conflicts during watch-mode churn.
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite store %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SavePass records one pass with its mapping rows in a single transaction.
func (s *Store) SavePass(pass Pass, mappings []Mapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(pass.RunID) == "" {
		return fmt.Errorf("pass run id must not be empty")
	}
	if pass.Timestamp.IsZero() {
		pass.Timestamp = time.Now().UTC()
	}
	if pass.SchemaVersion == 0 {
		pass.SchemaVersion = SchemaVersion
	}
	if pass.SchemaVersion != SchemaVersion {
		return fmt.Errorf("unsupported pass schema version %d", pass.SchemaVersion)
	}

	return s.withRetry("save pass", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		res, err := tx.Exec(`
INSERT INTO passes (
  run_id, schema_version, ts_utc, files, mixins, elements, skipped, lookups,
  accepted, conflicts, missing, invalid, warning_count, error_count
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			pass.RunID,
			pass.SchemaVersion,
			pass.Timestamp.UTC().Format(time.RFC3339Nano),
			pass.Files,
			pass.Mixins,
			pass.Elements,
			pass.Skipped,
			pass.Lookups,
			pass.Accepted,
			pass.Conflicts,
			pass.Missing,
			pass.Invalid,
			pass.WarningCount,
			pass.ErrorCount,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		passID, err := res.LastInsertId()
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		for _, m := range mappings {
			if _, err := tx.Exec(`
INSERT OR IGNORE INTO mappings (
  pass_id, environment, owner, name, descriptor, kind,
  renamed_owner, renamed_name, renamed_descriptor
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`, passID, m.Environment, m.Owner, m.Name, m.Descriptor, m.Kind,
				m.RenamedOwner, m.RenamedName, m.RenamedDescriptor); err != nil {
				_ = tx.Rollback()
				return err
			}
		}

		return tx.Commit()
	})
}

// LoadLatestPass returns the most recent pass, or nil when none exist.
func (s *Store) LoadLatestPass() (*Pass, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		pass  Pass
		tsRaw string
	)
	err := s.withRetry("load latest pass", func() error {
		return s.db.QueryRow(`
SELECT id, run_id, schema_version, ts_utc, files, mixins, elements, skipped,
  lookups, accepted, conflicts, missing, invalid, warning_count, error_count
FROM passes ORDER BY ts_utc DESC, id DESC LIMIT 1
`).Scan(
			&pass.ID, &pass.RunID, &pass.SchemaVersion, &tsRaw, &pass.Files,
			&pass.Mixins, &pass.Elements, &pass.Skipped, &pass.Lookups,
			&pass.Accepted, &pass.Conflicts, &pass.Missing, &pass.Invalid,
			&pass.WarningCount, &pass.ErrorCount,
		)
	})
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	ts, err := time.Parse(time.RFC3339Nano, tsRaw)
	if err != nil {
		return nil, fmt.Errorf("parse pass timestamp %q: %w", tsRaw, err)
	}
	pass.Timestamp = ts.UTC()
	return &pass, nil
}

// LoadMappings returns the mapping rows of one pass ordered for stable diffs.
func (s *Store) LoadMappings(passID int64) ([]Mapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load mappings", func() error {
		var qErr error
		rows, qErr = s.db.Query(`
SELECT environment, owner, name, descriptor, kind,
  renamed_owner, renamed_name, renamed_descriptor
FROM mappings WHERE pass_id = ?
ORDER BY environment ASC, owner ASC, name ASC, descriptor ASC
`, passID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mappings := make([]Mapping, 0)
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.Environment, &m.Owner, &m.Name, &m.Descriptor, &m.Kind,
			&m.RenamedOwner, &m.RenamedName, &m.RenamedDescriptor); err != nil {
			return nil, fmt.Errorf("scan mapping row: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mapping rows: %w", err)
	}
	return mappings, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
