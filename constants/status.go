package constants

// ContractStatus is the canonical status carried on pipeline results.
type ContractStatus string

// Stable values (these exact strings appear in results and DB rows).
const (
	ContractStatusIngested     ContractStatus = "INGESTED"      // extraction completed, record merged
	ContractStatusRiskAnalyzed ContractStatus = "RISK_ANALYZED" // risk scoring completed
	ContractStatusError        ContractStatus = "ERROR"         // terminal failure for this contract
)

// OCRJobStatus is the lifecycle state reported by the text-detection service.
type OCRJobStatus string

const (
	OCRJobInProgress     OCRJobStatus = "IN_PROGRESS"
	OCRJobSucceeded      OCRJobStatus = "SUCCEEDED"
	OCRJobPartialSuccess OCRJobStatus = "PARTIAL_SUCCESS" // retrievable, logged as warning
	OCRJobFailed         OCRJobStatus = "FAILED"
)

// Terminal reports whether no further polling should occur for this status.
func (s OCRJobStatus) Terminal() bool {
	switch s {
	case OCRJobSucceeded, OCRJobPartialSuccess, OCRJobFailed:
		return true
	}
	return false
}

// Retrievable reports whether result pages can be fetched for this status.
func (s OCRJobStatus) Retrievable() bool {
	return s == OCRJobSucceeded || s == OCRJobPartialSuccess
}

// RiskFlag is the outcome of the high-risk threshold decision.
type RiskFlag string

const (
	RiskFlagHigh RiskFlag = "HIGH_RISK"
	RiskFlagOK   RiskFlag = "OK"
)

// ApprovalStatus tracks a human-approval request through its lifecycle.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Decision values accepted on the approval callback.
const (
	DecisionApproved = "APPROVED"
	DecisionRejected = "REJECTED"
)
