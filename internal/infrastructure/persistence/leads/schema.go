// Package leads provides the SQL-backed lead and action persistence.
package leads

import (
	"database/sql"
	"fmt"
)

var tables = []string{
	`CREATE TABLE IF NOT EXISTS leads (
		id TEXT PRIMARY KEY,
		capture_timestamp TEXT NOT NULL,
		session_id TEXT NOT NULL,
		full_name TEXT NOT NULL,
		work_email TEXT NOT NULL,
		company TEXT NOT NULL,
		job_title TEXT,
		company_size TEXT,
		phone TEXT,
		use_case TEXT,
		qualification_score INTEGER NOT NULL,
		lead_quality TEXT NOT NULL,
		pages_visited TEXT NOT NULL,
		questions_asked INTEGER NOT NULL,
		time_to_capture INTEGER NOT NULL,
		scroll_percentage INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		label TEXT NOT NULL,
		weight INTEGER NOT NULL,
		page TEXT,
		created_at TEXT NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_leads_capture_timestamp ON leads(capture_timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_leads_quality ON leads(lead_quality)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_session ON actions(session_id)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at)`,
}

// TableCreator handles the creation of the lead database schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}
