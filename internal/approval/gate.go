// Package approval implements the human review gate for high-risk contracts:
// a pending approval record with an expiry, a reviewer notification, and the
// later decision callback that resolves it.
package approval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/risk"
)

// RequestData is the payload frozen into an approval record when the gate
// opens. It is everything a reviewer needs to decide.
type RequestData struct {
	ContractID       string             `json:"contract_id"`
	SourceLocation   string             `json:"s3_location"`
	RiskFlag         constants.RiskFlag `json:"risk_flag"`
	RiskScores       risk.Record        `json:"risk_scores"`
	Summary          string             `json:"summary,omitempty"`
	ExtractedClauses map[string]any     `json:"extracted_clauses"`
}

// Approval is one stored gate record.
type Approval struct {
	ApprovalID  string                   `json:"approval_id"`
	ContractID  string                   `json:"contract_id"`
	Data        RequestData              `json:"approval_data"`
	Status      constants.ApprovalStatus `json:"status"`
	CreatedAt   time.Time                `json:"created_at"`
	ExpiresAt   time.Time                `json:"expires_at"`
	Approver    string                   `json:"approver,omitempty"`
	Comments    string                   `json:"comments,omitempty"`
	ProcessedAt *time.Time               `json:"processed_at,omitempty"`
}

// Decision is the resolved outcome sent back to the caller of Resolve.
type Decision struct {
	ApprovalID string    `json:"approval_id"`
	ContractID string    `json:"contract_id"`
	Decision   string    `json:"decision"`
	Approver   string    `json:"approver"`
	Comments   string    `json:"comments,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// Store persists approval records. The repository package provides the
// Postgres implementation.
type Store interface {
	CreateApproval(ctx context.Context, a Approval) error
	GetApproval(ctx context.Context, approvalID string) (Approval, error)
	ResolveApproval(ctx context.Context, approvalID string, status constants.ApprovalStatus, approver, comments string, processedAt time.Time) error
}

// Expiry is how long a pending approval stays actionable.
const Expiry = 7 * 24 * time.Hour

// Gate opens approval requests and resolves decisions against them.
type Gate struct {
	store    Store
	notifier Notifier
	logger   *slog.Logger
	now      func() time.Time
}

func NewGate(store Store, notifier Notifier, logger *slog.Logger) *Gate {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gate{store: store, notifier: notifier, logger: logger, now: time.Now}
}

// Open stores a PENDING approval for the contract and notifies reviewers.
// A notification failure is logged but does not fail the gate: the record is
// already stored and can still be resolved.
func (g *Gate) Open(ctx context.Context, data RequestData) (Approval, error) {
	if data.ContractID == "" {
		return Approval{}, common.NewAppError("INVALID_INPUT",
			"missing contract_id in approval request", common.ErrInvalidInput)
	}

	now := g.now().UTC()
	a := Approval{
		ApprovalID: fmt.Sprintf("%s_%s", data.ContractID, now.Format("20060102150405")),
		ContractID: data.ContractID,
		Data:       data,
		Status:     constants.ApprovalPending,
		CreatedAt:  now,
		ExpiresAt:  now.Add(Expiry),
	}

	if err := g.store.CreateApproval(ctx, a); err != nil {
		g.logger.Error("approval.open.store_failed", "approval_id", a.ApprovalID, "error", err)
		return Approval{}, fmt.Errorf("store approval request: %w", err)
	}
	g.logger.Info("approval.open.stored", "approval_id", a.ApprovalID, "contract_id", a.ContractID)

	if err := g.notifier.Notify(ctx, a); err != nil {
		g.logger.Error("approval.open.notify_failed", "approval_id", a.ApprovalID, "error", err)
	} else {
		g.logger.Info("approval.open.notified", "approval_id", a.ApprovalID, "contract_id", a.ContractID)
	}
	return a, nil
}

// Resolve applies a reviewer decision to a pending approval. Errors map to
// the HTTP taxonomy: bad decision → ErrInvalidInput, unknown or expired id →
// ErrNotFound, already processed → ErrConflict.
func (g *Gate) Resolve(ctx context.Context, approvalID, decision, approver, comments string) (Decision, error) {
	if approvalID == "" {
		return Decision{}, common.NewAppError("INVALID_INPUT",
			"missing approval_id parameter", common.ErrInvalidInput)
	}
	decision = strings.ToUpper(decision)
	if decision != constants.DecisionApproved && decision != constants.DecisionRejected {
		return Decision{}, common.NewAppError("INVALID_INPUT",
			"decision must be APPROVED or REJECTED", common.ErrInvalidInput)
	}
	if approver == "" {
		approver = "Unknown"
	}

	a, err := g.store.GetApproval(ctx, approvalID)
	if err != nil {
		return Decision{}, err
	}

	now := g.now().UTC()
	if now.After(a.ExpiresAt) {
		return Decision{}, common.NewAppError("NOT_FOUND",
			"approval request not found or expired", common.ErrNotFound)
	}
	if a.Status != constants.ApprovalPending {
		return Decision{}, common.NewAppError("CONFLICT",
			fmt.Sprintf("approval request already processed, status: %s", a.Status),
			common.ErrConflict)
	}

	status := constants.ApprovalApproved
	if decision == constants.DecisionRejected {
		status = constants.ApprovalRejected
	}
	if err := g.store.ResolveApproval(ctx, approvalID, status, approver, comments, now); err != nil {
		return Decision{}, fmt.Errorf("update approval decision: %w", err)
	}

	g.logger.Info("approval.resolve.ok",
		"approval_id", approvalID,
		"contract_id", a.ContractID,
		"decision", decision,
		"approver", approver,
	)
	return Decision{
		ApprovalID: approvalID,
		ContractID: a.ContractID,
		Decision:   decision,
		Approver:   approver,
		Comments:   comments,
		Timestamp:  now,
	}, nil
}
