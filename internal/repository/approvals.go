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
	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
)

// ApprovalRepository is the Postgres implementation of approval.Store.
type ApprovalRepository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewApprovalRepository(pool *pgxpool.Pool, logger *slog.Logger) *ApprovalRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalRepository{pool: pool, logger: logger}
}

const approvalsSchema = `
CREATE TABLE IF NOT EXISTS contract_approvals (
	approval_id  TEXT PRIMARY KEY,
	contract_id  TEXT NOT NULL,
	data         JSONB NOT NULL,
	status       TEXT NOT NULL,
	approver     TEXT,
	comments     TEXT,
	created_at   TIMESTAMPTZ NOT NULL,
	expires_at   TIMESTAMPTZ NOT NULL,
	processed_at TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS contract_approvals_contract_idx ON contract_approvals (contract_id);
`

// EnsureSchema creates the approvals table when missing.
func (r *ApprovalRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, approvalsSchema)
	if err != nil {
		return fmt.Errorf("ensure contract_approvals schema: %w", err)
	}
	return nil
}

func (r *ApprovalRepository) CreateApproval(ctx context.Context, a approval.Approval) error {
	data, err := json.Marshal(a.Data)
	if err != nil {
		return fmt.Errorf("encode approval data: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO contract_approvals
			(approval_id, contract_id, data, status, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ApprovalID, a.ContractID, data, string(a.Status), a.CreatedAt, a.ExpiresAt,
	)
	if err != nil {
		r.logger.Error("failed to insert approval", "approval_id", a.ApprovalID, "error", err)
		return err
	}
	return nil
}

func (r *ApprovalRepository) GetApproval(ctx context.Context, approvalID string) (approval.Approval, error) {
	var (
		a           approval.Approval
		data        []byte
		status      string
		approver    *string
		comments    *string
		processedAt *time.Time
	)
	err := r.pool.QueryRow(ctx, `
		SELECT approval_id, contract_id, data, status, approver, comments,
		       created_at, expires_at, processed_at
		FROM contract_approvals
		WHERE approval_id = $1`,
		approvalID,
	).Scan(&a.ApprovalID, &a.ContractID, &data, &status, &approver, &comments,
		&a.CreatedAt, &a.ExpiresAt, &processedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return approval.Approval{}, common.NewAppError("NOT_FOUND",
			"approval request not found or expired", common.ErrNotFound)
	}
	if err != nil {
		r.logger.Error("failed to load approval", "approval_id", approvalID, "error", err)
		return approval.Approval{}, err
	}

	if err := json.Unmarshal(data, &a.Data); err != nil {
		return approval.Approval{}, fmt.Errorf("decode approval data: %w", err)
	}
	a.Status = constants.ApprovalStatus(status)
	if approver != nil {
		a.Approver = *approver
	}
	if comments != nil {
		a.Comments = *comments
	}
	a.ProcessedAt = processedAt
	return a, nil
}

func (r *ApprovalRepository) ResolveApproval(ctx context.Context, approvalID string, status constants.ApprovalStatus, approver, comments string, processedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contract_approvals
		SET status = $2, approver = $3, comments = $4, processed_at = $5
		WHERE approval_id = $1 AND status = $6`,
		approvalID, string(status), approver, comments, processedAt,
		string(constants.ApprovalPending),
	)
	if err != nil {
		r.logger.Error("failed to resolve approval", "approval_id", approvalID, "error", err)
		return err
	}
	// The gate checks status before updating; a zero row count here means a
	// concurrent decision won the race.
	if tag.RowsAffected() == 0 {
		return common.NewAppError("CONFLICT",
			"approval request already processed", common.ErrConflict)
	}
	return nil
}
