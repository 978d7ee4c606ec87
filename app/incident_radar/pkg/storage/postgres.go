package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/config"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/model"
)

// ErrNotFound 报告不存在
var ErrNotFound = errors.New("report not found")

// Storage 事件读取与报告存储（PostgreSQL）
type Storage struct {
	db *sql.DB
}

func NewStorage(cfg config.DBConfig) (*Storage, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s, err := Open(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Open 使用已有连接并建表，连接由调用方关闭
func Open(ctx context.Context, db *sql.DB) (*Storage, error) {
	s := &Storage{db: db}
	if err := s.initSchema(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

// incidents 表由业务系统维护，这里只建报告表
func (s *Storage) initSchema(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS ai_reports (
			id TEXT PRIMARY KEY,
			scope TEXT NOT NULL,
			subject_id TEXT,
			summary TEXT,
			alerts TEXT,
			patterns TEXT,
			strengths TEXT,
			risk_factors TEXT,
			recommendations TEXT,
			follow_up TEXT,
			composite TEXT,
			truncated BOOLEAN NOT NULL DEFAULT FALSE,
			targets TEXT[],
			error TEXT,
			generated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS ai_reports_subject_idx ON ai_reports (scope, subject_id, generated_at DESC)`,
	}

	for _, query := range queries {
		if _, err := s.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query %s: %w", query, err)
		}
	}
	return nil
}

// ListIncidents 读取事件记录，studentID 为空时读取全校
func (s *Storage) ListIncidents(ctx context.Context, studentID string) ([]model.Incident, error) {
	query := `SELECT id, type, severity, student_id, COALESCE(student_name, ''),
			COALESCE(reporter_id, ''), COALESCE(description, ''), occurred_at
		FROM incidents`
	var args []any
	if studentID != "" {
		query += ` WHERE student_id = $1`
		args = append(args, studentID)
	}
	query += ` ORDER BY occurred_at DESC NULLS LAST, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var out []model.Incident
	for rows.Next() {
		var (
			inc        model.Incident
			occurredAt pq.NullTime
		)
		if err := rows.Scan(&inc.ID, &inc.Type, &inc.Severity, &inc.StudentID, &inc.StudentName,
			&inc.ReporterID, &inc.Description, &occurredAt); err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		if occurredAt.Valid {
			t := occurredAt.Time
			inc.Date = &t
		}
		out = append(out, inc)
	}
	return out, rows.Err()
}

// SaveReport 保存报告，相同 ID 覆盖
func (s *Storage) SaveReport(ctx context.Context, r *model.Report) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO ai_reports (id, scope, subject_id, summary, alerts, patterns, strengths,
			risk_factors, recommendations, follow_up, composite, truncated, targets, error, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (id) DO UPDATE SET
			summary = EXCLUDED.summary,
			alerts = EXCLUDED.alerts,
			patterns = EXCLUDED.patterns,
			strengths = EXCLUDED.strengths,
			risk_factors = EXCLUDED.risk_factors,
			recommendations = EXCLUDED.recommendations,
			follow_up = EXCLUDED.follow_up,
			composite = EXCLUDED.composite,
			truncated = EXCLUDED.truncated,
			targets = EXCLUDED.targets,
			error = EXCLUDED.error,
			generated_at = EXCLUDED.generated_at`,
		r.ID, string(r.Scope), r.SubjectID, r.Summary, r.Alerts, r.Patterns, r.Strengths,
		r.RiskFactors, r.Recommendations, r.FollowUp, r.Composite, r.Truncated,
		pq.Array(r.Targets), r.Error, r.GeneratedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// GetReport 按 ID 读取报告
func (s *Storage) GetReport(ctx context.Context, id string) (*model.Report, error) {
	var (
		r     model.Report
		scope string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, scope, COALESCE(subject_id, ''), COALESCE(summary, ''), COALESCE(alerts, ''),
			COALESCE(patterns, ''), COALESCE(strengths, ''), COALESCE(risk_factors, ''),
			COALESCE(recommendations, ''), COALESCE(follow_up, ''), COALESCE(composite, ''),
			truncated, targets, COALESCE(error, ''), generated_at
		FROM ai_reports WHERE id = $1`, id).Scan(
		&r.ID, &scope, &r.SubjectID, &r.Summary, &r.Alerts, &r.Patterns, &r.Strengths,
		&r.RiskFactors, &r.Recommendations, &r.FollowUp, &r.Composite, &r.Truncated,
		pq.Array(&r.Targets), &r.Error, &r.GeneratedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	r.Scope = model.Scope(scope)
	return &r, nil
}
