package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
)

// Review is one contract's recorded outcome: extraction, risk scoring, and
// (when the gate ran) the human decision.
type Review struct {
	ContractID string
	Bucket     string
	Key        string
	Extracted  map[string]any
	ChunkCount int
	Failures   []string
	Risk       *risk.Record
	RiskFlag   constants.RiskFlag
	Status     constants.ContractStatus
	Decision   string
	Approver   string
	Comments   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ReviewRepository stores contract review outcomes.
type ReviewRepository interface {
	EnsureSchema(ctx context.Context) error
	Upsert(ctx context.Context, rev Review) error
	Get(ctx context.Context, contractID string) (Review, error)
	RecordDecision(ctx context.Context, contractID, decision, approver, comments string, at time.Time) error
	List(ctx context.Context, fromDate, toDate *time.Time) ([]Review, error)
}

type reviewRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewReviewRepository(pool *pgxpool.Pool, logger *slog.Logger) ReviewRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &reviewRepository{pool: pool, logger: logger}
}

const reviewsSchema = `
CREATE TABLE IF NOT EXISTS contract_reviews (
	contract_id TEXT PRIMARY KEY,
	bucket      TEXT NOT NULL DEFAULT '',
	key         TEXT NOT NULL DEFAULT '',
	extracted   JSONB,
	chunk_count INT NOT NULL DEFAULT 0,
	failures    JSONB NOT NULL DEFAULT '[]',
	risk        JSONB,
	risk_flag   TEXT NOT NULL DEFAULT '',
	status      TEXT NOT NULL,
	decision    TEXT NOT NULL DEFAULT '',
	approver    TEXT NOT NULL DEFAULT '',
	comments    TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// EnsureSchema creates the reviews table when missing.
func (r *reviewRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, reviewsSchema); err != nil {
		return fmt.Errorf("ensure contract_reviews schema: %w", err)
	}
	return nil
}

func (r *reviewRepository) Upsert(ctx context.Context, rev Review) error {
	extracted, err := marshalOrNil(rev.Extracted)
	if err != nil {
		return fmt.Errorf("encode extracted record: %w", err)
	}
	riskJSON, err := marshalOrNil(rev.Risk)
	if err != nil {
		return fmt.Errorf("encode risk record: %w", err)
	}
	failures := rev.Failures
	if failures == nil {
		failures = []string{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("encode failures: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO contract_reviews
			(contract_id, bucket, key, extracted, chunk_count, failures,
			 risk, risk_flag, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (contract_id) DO UPDATE SET
			bucket = EXCLUDED.bucket,
			key = EXCLUDED.key,
			extracted = COALESCE(EXCLUDED.extracted, contract_reviews.extracted),
			chunk_count = EXCLUDED.chunk_count,
			failures = EXCLUDED.failures,
			risk = COALESCE(EXCLUDED.risk, contract_reviews.risk),
			risk_flag = EXCLUDED.risk_flag,
			status = EXCLUDED.status,
			updated_at = now()`,
		rev.ContractID, rev.Bucket, rev.Key, extracted, rev.ChunkCount, failuresJSON,
		riskJSON, string(rev.RiskFlag), string(rev.Status),
	)
	if err != nil {
		r.logger.Error("failed to upsert review", "contract_id", rev.ContractID, "error", err)
		return err
	}
	return nil
}

func (r *reviewRepository) Get(ctx context.Context, contractID string) (Review, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT contract_id, bucket, key, extracted, chunk_count, failures,
		       risk, risk_flag, status, decision, approver, comments,
		       created_at, updated_at
		FROM contract_reviews
		WHERE contract_id = $1`,
		contractID,
	)
	rev, err := scanReview(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Review{}, common.NewAppError("NOT_FOUND",
			fmt.Sprintf("no review for contract %s", contractID), common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to load review", "contract_id", contractID, "error", err)
		return Review{}, err
	}
	return rev, nil
}

func (r *reviewRepository) RecordDecision(ctx context.Context, contractID, decision, approver, comments string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contract_reviews
		SET decision = $2, approver = $3, comments = $4, updated_at = $5
		WHERE contract_id = $1`,
		contractID, decision, approver, comments, at,
	)
	if err != nil {
		r.logger.Error("failed to record decision", "contract_id", contractID, "error", err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return common.NewAppError("NOT_FOUND",
			fmt.Sprintf("no review for contract %s", contractID), common.ErrNotFound)
	}
	return nil
}

func (r *reviewRepository) List(ctx context.Context, fromDate, toDate *time.Time) ([]Review, error) {
	q := `
		SELECT contract_id, bucket, key, extracted, chunk_count, failures,
		       risk, risk_flag, status, decision, approver, comments,
		       created_at, updated_at
		FROM contract_reviews`
	var (
		args  []any
		conds []string
	)
	if fromDate != nil {
		args = append(args, *fromDate)
		conds = append(conds, fmt.Sprintf("updated_at >= $%d", len(args)))
	}
	if toDate != nil {
		args = append(args, *toDate)
		conds = append(conds, fmt.Sprintf("updated_at <= $%d", len(args)))
	}
	for i, c := range conds {
		if i == 0 {
			q += " WHERE " + c
		} else {
			q += " AND " + c
		}
	}
	q += " ORDER BY updated_at"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		r.logger.Error("failed to list reviews", "error", err)
		return nil, err
	}
	defer rows.Close()

	var out []Review
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rev)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReview(row rowScanner) (Review, error) {
	var (
		rev                Review
		extracted          []byte
		failures           []byte
		riskJSON           []byte
		riskFlag, status   string
		decision, approver string
		comments           string
	)
	err := row.Scan(&rev.ContractID, &rev.Bucket, &rev.Key, &extracted, &rev.ChunkCount,
		&failures, &riskJSON, &riskFlag, &status, &decision, &approver, &comments,
		&rev.CreatedAt, &rev.UpdatedAt)
	if err != nil {
		return Review{}, err
	}
	if len(extracted) > 0 {
		if err := json.Unmarshal(extracted, &rev.Extracted); err != nil {
			return Review{}, fmt.Errorf("decode extracted record: %w", err)
		}
	}
	if len(failures) > 0 {
		if err := json.Unmarshal(failures, &rev.Failures); err != nil {
			return Review{}, fmt.Errorf("decode failures: %w", err)
		}
	}
	if len(riskJSON) > 0 {
		var rec risk.Record
		if err := json.Unmarshal(riskJSON, &rec); err != nil {
			return Review{}, fmt.Errorf("decode risk record: %w", err)
		}
		rev.Risk = &rec
	}
	rev.RiskFlag = constants.RiskFlag(riskFlag)
	rev.Status = constants.ContractStatus(status)
	rev.Decision = decision
	rev.Approver = approver
	rev.Comments = comments
	return rev, nil
}

func marshalOrNil(v any) ([]byte, error) {
	switch x := v.(type) {
	case map[string]any:
		if x == nil {
			return nil, nil
		}
	case *risk.Record:
		if x == nil {
			return nil, nil
		}
	}
	return json.Marshal(v)
}
