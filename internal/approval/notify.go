package approval

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
)

// Notifier delivers an approval request to reviewers. Implementations decide
// the transport; the gate only promises best-effort delivery.
type Notifier interface {
	Notify(ctx context.Context, a Approval) error
}

// NopNotifier drops notifications. Used when no reviewer channel is wired.
type NopNotifier struct{}

func (NopNotifier) Notify(context.Context, Approval) error { return nil }

// LogNotifier writes the full reviewer message to the structured log. It is
// the default channel for local and single-node deployments.
type LogNotifier struct {
	Endpoint string // base URL the decision links point at
	Logger   *slog.Logger
}

func (n LogNotifier) Notify(_ context.Context, a Approval) error {
	logger := n.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("approval.notify",
		"approval_id", a.ApprovalID,
		"contract_id", a.ContractID,
		"subject", Subject(a),
		"message", Message(a, n.Endpoint),
	)
	return nil
}

// Subject is the one-line notification title.
func Subject(a Approval) string {
	return fmt.Sprintf("Contract Approval Required: %s [%s]", a.ContractID, a.Data.RiskFlag)
}

// Message renders the reviewer notification body with the decision links.
func Message(a Approval, endpoint string) string {
	endpoint = strings.TrimRight(endpoint, "/")
	approveURL := fmt.Sprintf("%s/approve?approval_id=%s", endpoint, a.ApprovalID)
	rejectURL := fmt.Sprintf("%s/reject?approval_id=%s", endpoint, a.ApprovalID)

	clauses, err := json.MarshalIndent(a.Data.ExtractedClauses, "", "  ")
	if err != nil {
		clauses = []byte("{}")
	}

	summary := a.Data.Summary
	if summary == "" {
		summary = "N/A"
	}
	rationale := a.Data.RiskScores.Rationale
	if rationale == "" {
		rationale = "N/A"
	}

	var b strings.Builder
	b.WriteString("CONTRACT APPROVAL REQUIRED\n\n")
	fmt.Fprintf(&b, "Contract ID: %s\n", a.ContractID)
	fmt.Fprintf(&b, "S3 Location: %s\n", a.Data.SourceLocation)
	fmt.Fprintf(&b, "Risk Level: %s\n\n", a.Data.RiskFlag)
	b.WriteString("RISK SCORES:\n")
	fmt.Fprintf(&b, "- Overall Risk: %.1f/10\n", a.Data.RiskScores.OverallRisk)
	fmt.Fprintf(&b, "- Liability Risk: %.1f/10\n", a.Data.RiskScores.LiabilityRisk)
	fmt.Fprintf(&b, "- Termination Risk: %.1f/10\n", a.Data.RiskScores.TerminationRisk)
	fmt.Fprintf(&b, "- Financial Risk: %.1f/10\n\n", a.Data.RiskScores.FinancialRisk)
	fmt.Fprintf(&b, "EXECUTIVE SUMMARY:\n%s\n\n", summary)
	fmt.Fprintf(&b, "RISK RATIONALE:\n%s\n\n", rationale)
	fmt.Fprintf(&b, "KEY CLAUSES:\n%s\n\n", clauses)
	b.WriteString("---\n\n")
	b.WriteString("ACTION REQUIRED:\n")
	fmt.Fprintf(&b, "To approve this contract, click: %s\n", approveURL)
	fmt.Fprintf(&b, "To reject this contract, click: %s\n\n", rejectURL)
	b.WriteString("This approval request will expire in 7 days.\n\n")
	fmt.Fprintf(&b, "Approval ID: %s\n", a.ApprovalID)
	return b.String()
}
