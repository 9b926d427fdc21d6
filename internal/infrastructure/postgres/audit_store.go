package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"facegate/internal/domain/entity"
	"facegate/internal/domain/port"
)

// AuditStore keeps one row per verification decision. Images and embeddings are never stored.
type AuditStore struct {
	pool *pgxpool.Pool
}

var _ port.AuditSink = (*AuditStore)(nil)

// NewAuditStore connects to the database and creates the audit table if needed.
func NewAuditStore(ctx context.Context, connString string) (*AuditStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	s := &AuditStore{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *AuditStore) Close() {
	s.pool.Close()
}

func (s *AuditStore) initSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS verification_audit (
			id               UUID PRIMARY KEY,
			created_at       TIMESTAMPTZ NOT NULL,
			verified         BOOLEAN NOT NULL,
			reason           TEXT NOT NULL DEFAULT '',
			role             TEXT NOT NULL DEFAULT '',
			detection_method TEXT NOT NULL DEFAULT '',
			agree_count      INT NOT NULL DEFAULT 0,
			total_models     INT NOT NULL DEFAULT 0,
			average_distance DOUBLE PRECISION NOT NULL DEFAULT 0,
			liveness_score   DOUBLE PRECISION NOT NULL DEFAULT 0,
			verdicts         JSONB NOT NULL DEFAULT '[]',
			elapsed_ms       BIGINT NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("init audit schema: %w", err)
	}
	return nil
}

// Record inserts a decision.
func (s *AuditStore) Record(ctx context.Context, rec entity.AuditRecord) error {
	verdicts, err := json.Marshal(nonNil(rec.Verdicts))
	if err != nil {
		return fmt.Errorf("encode verdicts: %w", err)
	}

	// Gate rejections carry no report, so the detection method is unknown.
	method := ""
	if rec.TotalModels > 0 {
		method = rec.DetectionMethod.String()
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO verification_audit (
			id, created_at, verified, reason, role, detection_method,
			agree_count, total_models, average_distance, liveness_score, verdicts, elapsed_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11::jsonb, $12)
	`, rec.ID.String(), rec.CreatedAt, rec.Verified, string(rec.Reason), string(rec.Role), method,
		rec.AgreeCount, rec.TotalModels, rec.AverageDistance, rec.LivenessScore, string(verdicts), rec.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// Recent returns the latest decisions, newest first.
func (s *AuditStore) Recent(ctx context.Context, limit int) ([]entity.AuditRecord, error) {
	if limit < 1 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, created_at, verified, reason, role, agree_count, total_models,
		       average_distance, liveness_score, verdicts::text, elapsed_ms
		FROM verification_audit
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit records: %w", err)
	}
	defer rows.Close()

	var records []entity.AuditRecord
	for rows.Next() {
		var (
			rec              entity.AuditRecord
			id, reason, role string
			verdicts         string
			elapsedMS        int64
		)
		if err := rows.Scan(&id, &rec.CreatedAt, &rec.Verified, &reason, &role, &rec.AgreeCount,
			&rec.TotalModels, &rec.AverageDistance, &rec.LivenessScore, &verdicts, &elapsedMS); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if rec.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("audit record id: %w", err)
		}
		if err := json.Unmarshal([]byte(verdicts), &rec.Verdicts); err != nil {
			return nil, fmt.Errorf("decode verdicts: %w", err)
		}
		rec.Reason = entity.RejectReason(reason)
		rec.Role = entity.Role(role)
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}

func nonNil(v []entity.ModelVerdict) []entity.ModelVerdict {
	if v == nil {
		return []entity.ModelVerdict{}
	}
	return v
}
