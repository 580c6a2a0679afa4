package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/procurex/procurement-backend/internal/domain/evaluation"
)

// EvaluationRepository stores the append-only oracle snapshots. Category
// scores and recommendations ride along as JSONB.
type EvaluationRepository struct {
	db *pgxpool.Pool
}

func NewEvaluationRepository(db *pgxpool.Pool) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

func (r *EvaluationRepository) Create(ctx context.Context, e *evaluation.Evaluation) error {
	categories, err := json.Marshal(e.CategoryScores)
	if err != nil {
		return fmt.Errorf("marshal category scores: %w", err)
	}
	recommendations, err := json.Marshal(e.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}

	query := `
		INSERT INTO evaluations (
			id, kind, subject_id, overall_score, category_scores,
			risk_level, recommendations, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		e.ID, string(e.Kind), e.SubjectID, e.OverallScore, categories,
		e.RiskLevel, recommendations, e.CreatedAt,
	)
	return wrapError(err, "create evaluation")
}

func (r *EvaluationRepository) ListBySubject(ctx context.Context, subjectID uuid.UUID) ([]*evaluation.Evaluation, error) {
	query := evaluationSelect + ` WHERE subject_id = $1 ORDER BY created_at DESC`
	return r.list(ctx, query, subjectID)
}

func (r *EvaluationRepository) ListInWindow(ctx context.Context, kind evaluation.Kind, from, to time.Time) ([]*evaluation.Evaluation, error) {
	query := evaluationSelect + ` WHERE kind = $1 AND created_at >= $2 AND created_at <= $3 ORDER BY created_at DESC`
	return r.list(ctx, query, string(kind), from, to)
}

const evaluationSelect = `
	SELECT id, kind, subject_id, overall_score, category_scores,
	       risk_level, recommendations, created_at
	FROM evaluations`

func (r *EvaluationRepository) list(ctx context.Context, query string, args ...any) ([]*evaluation.Evaluation, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, wrapError(err, "list evaluations")
	}
	defer rows.Close()

	var records []*evaluation.Evaluation
	for rows.Next() {
		var (
			e               evaluation.Evaluation
			kind            string
			categories      []byte
			recommendations []byte
		)
		if err := rows.Scan(&e.ID, &kind, &e.SubjectID, &e.OverallScore, &categories, &e.RiskLevel, &recommendations, &e.CreatedAt); err != nil {
			return nil, wrapError(err, "scan evaluation")
		}

		e.Kind = evaluation.Kind(kind)
		if len(categories) > 0 {
			if err := json.Unmarshal(categories, &e.CategoryScores); err != nil {
				return nil, fmt.Errorf("stored category scores: %w", err)
			}
		}
		if len(recommendations) > 0 {
			if err := json.Unmarshal(recommendations, &e.Recommendations); err != nil {
				return nil, fmt.Errorf("stored recommendations: %w", err)
			}
		}
		records = append(records, &e)
	}
	return records, wrapError(rows.Err(), "list evaluations")
}
