package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/romitbhandari17/agentic-risk-automation/constants"
	"github.com/romitbhandari17/agentic-risk-automation/internal/approval"
	"github.com/romitbhandari17/agentic-risk-automation/internal/async"
	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ingest"
)

type handlers struct {
	deps Deps
}

func (h *handlers) triggerReview(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, common.NewAppError("INVALID_INPUT", "cannot read request body", common.ErrInvalidInput))
		return
	}

	req, err := ingest.ParseEvent(body)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.deps.Queue.Enqueue(r.Context(), async.Job{
		Request:     req,
		SubmittedAt: time.Now().UTC(),
		TraceID:     common.RequestIDFromContext(r.Context()),
	}); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]any{
		"contract_id": req.ContractID,
		"status":      "QUEUED",
	})
}

func (h *handlers) getReview(w http.ResponseWriter, r *http.Request) {
	if h.deps.Reviews == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "review store not configured"})
		return
	}
	rev, err := h.deps.Reviews.Get(r.Context(), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"contract_id":      rev.ContractID,
		"source":           map[string]string{"bucket": rev.Bucket, "key": rev.Key},
		"extracted":        rev.Extracted,
		"chunk_count":      rev.ChunkCount,
		"bedrock_failures": rev.Failures,
		"risk":             rev.Risk,
		"risk_flag":        rev.RiskFlag,
		"status":           rev.Status,
		"decision":         rev.Decision,
		"approver":         rev.Approver,
		"comments":         rev.Comments,
		"updated_at":       rev.UpdatedAt,
	})
}

// decide handles the one-click links from the reviewer notification.
func (h *handlers) decide(decision string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.resolve(w, r, decision)
	}
}

// callback handles the generic decision form with the decision as a query
// parameter.
func (h *handlers) callback(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, r.URL.Query().Get("decision"))
}

func (h *handlers) resolve(w http.ResponseWriter, r *http.Request, decision string) {
	q := r.URL.Query()
	d, err := h.deps.Gate.Resolve(r.Context(),
		q.Get("approval_id"), decision, q.Get("approver"), q.Get("comments"))
	if err != nil {
		writeError(w, err)
		return
	}

	if h.deps.Reviews != nil {
		if err := h.deps.Reviews.RecordDecision(r.Context(),
			d.ContractID, d.Decision, d.Approver, d.Comments, d.Timestamp); err != nil {
			h.deps.Logger.Error("approval.decision.record_failed",
				"contract_id", d.ContractID, "error", err)
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, confirmationPage(d))
}

func (h *handlers) exportReviews(w http.ResponseWriter, r *http.Request) {
	if h.deps.Export == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"error": "export not configured"})
		return
	}

	var fromPtr, toPtr *time.Time
	if fd := strings.TrimSpace(r.URL.Query().Get("from_date")); fd != "" {
		t, err := time.Parse("2006-01-02", fd)
		if err != nil {
			writeError(w, common.NewAppError("INVALID_INPUT", "from_date must be YYYY-MM-DD", common.ErrInvalidInput))
			return
		}
		fromPtr = &t
	}
	if td := strings.TrimSpace(r.URL.Query().Get("to_date")); td != "" {
		t, err := time.Parse("2006-01-02", td)
		if err != nil {
			writeError(w, common.NewAppError("INVALID_INPUT", "to_date must be YYYY-MM-DD", common.ErrInvalidInput))
			return
		}
		toPtr = &t
	}

	xlsx, err := h.deps.Export.ExportReviewsXLSX(r.Context(), fromPtr, toPtr)
	if err != nil {
		h.deps.Logger.Error("export.xlsx.failed", "error", err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="contract_reviews.xlsx"`)
	_, _ = w.Write(xlsx)
}

// confirmationPage renders the HTML the reviewer sees after deciding.
func confirmationPage(d approval.Decision) string {
	color := "red"
	if d.Decision == constants.DecisionApproved {
		color = "green"
	}
	comments := ""
	if d.Comments != "" {
		comments = fmt.Sprintf("<p><strong>Comments:</strong> %s</p>", html.EscapeString(d.Comments))
	}
	return fmt.Sprintf(`<html>
<head><title>Contract %[1]s</title></head>
<body style="font-family: Arial, sans-serif; padding: 40px; text-align: center;">
    <h1 style="color: %[2]s;">Contract %[1]s</h1>
    <p><strong>Contract ID:</strong> %[3]s</p>
    <p><strong>Decision:</strong> %[1]s</p>
    <p><strong>By:</strong> %[4]s</p>
    <p><strong>Timestamp:</strong> %[5]s</p>
    %[6]s
    <hr>
    <p>The workflow has been notified and will proceed accordingly.</p>
</body>
</html>`,
		d.Decision, color, html.EscapeString(d.ContractID),
		html.EscapeString(d.Approver), d.Timestamp.Format(time.RFC3339), comments)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	writeJSON(w, common.HTTPStatus(err), map[string]any{"error": msg})
}
