package profile

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	sign_name     TEXT PRIMARY KEY,
	description   TEXT,
	profile_json  TEXT NOT NULL,
	created_at    TEXT NOT NULL
);
`

// #endregion schema

// #region catalog-struct

// Catalog is the sqlite-backed sign catalog. It is authoring-time
// infrastructure: profiles are loaded from it once at startup into a
// Registry, and the tick path never touches the database.
type Catalog struct {
	db *sql.DB
}

// #endregion catalog-struct

// #region constructor

// OpenCatalog opens a sqlite catalog database and runs migrations.
func OpenCatalog(dbPath string) (*Catalog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Catalog{db: db}, nil
}

// Close closes the underlying database connection.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// #endregion constructor

// #region put

// Put inserts or replaces one profile.
func (c *Catalog) Put(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	docJSON, err := json.Marshal(FromProfile(p))
	if err != nil {
		return fmt.Errorf("marshal profile %s: %w", p.SignName, err)
	}
	_, err = c.db.Exec(
		`INSERT INTO profiles (sign_name, description, profile_json, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(sign_name) DO UPDATE SET
		   description = excluded.description,
		   profile_json = excluded.profile_json`,
		p.SignName, p.Description, string(docJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert profile %s: %w", p.SignName, err)
	}
	return nil
}

// #endregion put

// #region get

// Get retrieves one profile by sign name.
func (c *Catalog) Get(signName string) (*Profile, error) {
	var docJSON string
	err := c.db.QueryRow(
		`SELECT profile_json FROM profiles WHERE sign_name = ?`, signName,
	).Scan(&docJSON)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", signName, err)
	}
	var doc Document
	if err := json.Unmarshal([]byte(docJSON), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal profile %s: %w", signName, err)
	}
	return doc.ToProfile()
}

// #endregion get

// #region list

// ListNames returns every stored sign name in alphabetical order.
func (c *Catalog) ListNames() ([]string, error) {
	rows, err := c.db.Query(`SELECT sign_name FROM profiles ORDER BY sign_name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// #endregion list

// #region load-registry

// LoadRegistry reads the whole catalog into a fresh Registry for runtime
// lookups.
func (c *Catalog) LoadRegistry() (*Registry, error) {
	names, err := c.ListNames()
	if err != nil {
		return nil, err
	}
	reg := NewRegistry()
	for _, name := range names {
		p, err := c.Get(name)
		if err != nil {
			return nil, err
		}
		reg.Register(p)
	}
	return reg, nil
}

// #endregion load-registry
