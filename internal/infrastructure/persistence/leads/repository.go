package leads

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/flipkraft/flipkraft-go/internal/domain/entities/leads"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/observability/logging"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/persistence/database"
	"github.com/flipkraft/flipkraft-go/internal/infrastructure/security"
)

const timestampLayout = "2006-01-02 15:04:05"

// Repository implements repositories.LeadRepository and
// repositories.ActionRepository on top of SQL.
type Repository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

// NewRepository creates a lead repository over an open connection.
func NewRepository(db *database.DB, logger *logging.ChanneledLogger) *Repository {
	return &Repository{db: db, logger: logger}
}

// Append inserts a captured lead record.
func (r *Repository) Append(record *leads.Record) error {
	if record.ID == "" {
		record.ID = security.GenerateULID()
	}

	query := `INSERT INTO leads (
		id, capture_timestamp, session_id, full_name, work_email, company,
		job_title, company_size, phone, use_case,
		qualification_score, lead_quality, pages_visited, questions_asked,
		time_to_capture, scroll_percentage
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	start := time.Now()
	_, err := r.db.Exec(query,
		record.ID,
		record.CaptureTimestamp.UTC().Format(timestampLayout),
		record.SessionID,
		record.FullName,
		record.WorkEmail,
		record.Company,
		record.JobTitle,
		record.CompanySize,
		record.Phone,
		record.UseCase,
		record.QualificationScore,
		record.LeadQuality,
		record.PagesVisited,
		record.QuestionsAsked,
		record.TimeToCaptureSeconds,
		record.ScrollPercentage,
	)
	if err != nil {
		r.logger.Database().Error("Failed to insert lead", "error", err.Error(), "sessionId", record.SessionID)
		return fmt.Errorf("failed to insert lead: %w", err)
	}

	r.logger.Database().Debug("Lead inserted", "leadId", record.ID, "sessionId", record.SessionID, "duration", time.Since(start))
	return nil
}

// FindRecent returns the most recently captured leads, newest first.
func (r *Repository) FindRecent(limit int) ([]*leads.Record, error) {
	query := `SELECT id, capture_timestamp, session_id, full_name, work_email, company,
		COALESCE(job_title, ''), COALESCE(company_size, ''), COALESCE(phone, ''), COALESCE(use_case, ''),
		qualification_score, lead_quality, pages_visited, questions_asked,
		time_to_capture, scroll_percentage
	FROM leads ORDER BY capture_timestamp DESC LIMIT ?`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent leads: %w", err)
	}
	defer rows.Close()

	var records []*leads.Record
	for rows.Next() {
		var rec leads.Record
		var ts string
		if err := rows.Scan(
			&rec.ID, &ts, &rec.SessionID, &rec.FullName, &rec.WorkEmail, &rec.Company,
			&rec.JobTitle, &rec.CompanySize, &rec.Phone, &rec.UseCase,
			&rec.QualificationScore, &rec.LeadQuality, &rec.PagesVisited, &rec.QuestionsAsked,
			&rec.TimeToCaptureSeconds, &rec.ScrollPercentage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead row: %w", err)
		}
		if parsed, err := time.Parse(timestampLayout, ts); err == nil {
			rec.CaptureTimestamp = parsed.UTC()
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// CountAll returns the total number of captured leads.
func (r *Repository) CountAll() (int, error) {
	return r.scalarInt(`SELECT COUNT(*) FROM leads`)
}

// CountSince returns the number of leads captured at or after the given time.
func (r *Repository) CountSince(since time.Time) (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM leads WHERE capture_timestamp >= ?`,
		since.UTC().Format(timestampLayout)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count new leads: %w", err)
	}
	return count, nil
}

// CountHot returns the number of hot and very_hot leads.
func (r *Repository) CountHot() (int, error) {
	return r.scalarInt(`SELECT COUNT(*) FROM leads WHERE lead_quality IN ('hot', 'very_hot')`)
}

// AverageScore returns the mean qualification score across all leads.
func (r *Repository) AverageScore() (float64, error) {
	return r.scalarFloat(`SELECT COALESCE(AVG(qualification_score), 0) FROM leads`)
}

// AverageTimeToCapture returns the mean seconds from session start to capture.
func (r *Repository) AverageTimeToCapture() (float64, error) {
	return r.scalarFloat(`SELECT COALESCE(AVG(time_to_capture), 0) FROM leads`)
}

// LogAction records an intent signal or trigger decision for analytics.
func (r *Repository) LogAction(sessionID, label string, weight int, page string, at time.Time) error {
	query := `INSERT INTO actions (id, session_id, label, weight, page, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.Exec(query, security.GenerateULID(), sessionID, label, weight, page, at.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to insert action: %w", err)
	}
	return nil
}

// CountSessions returns the number of distinct sessions seen in the action log.
func (r *Repository) CountSessions() (int, error) {
	return r.scalarInt(`SELECT COUNT(DISTINCT session_id) FROM actions`)
}

func (r *Repository) scalarInt(query string) (int, error) {
	var v int
	if err := r.db.QueryRow(query).Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("query [%s] failed: %w", query, err)
	}
	return v, nil
}

func (r *Repository) scalarFloat(query string) (float64, error) {
	var v float64
	if err := r.db.QueryRow(query).Scan(&v); err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		return 0, fmt.Errorf("query [%s] failed: %w", query, err)
	}
	return v, nil
}
