package export

import (
	"context"
	"fmt"
	"time"

	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/romitbhandari17/agentic-risk-automation/internal/repository"
)

// Service is a tiny façade over the review repository that produces XLSX
// bytes for decision exports.
type Service struct {
	reviews repository.ReviewRepository
	logger  *slog.Logger
}

func NewService(reviews repository.ReviewRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{reviews: reviews, logger: logger}
}

// ExportReviewsXLSX returns an XLSX workbook (as bytes) for the date window.
// If only from is provided -> from..today (inclusive).
// If only to is provided   -> beginning..to (inclusive).
// If neither is provided   -> all reviews.
func (s *Service) ExportReviewsXLSX(ctx context.Context, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	// Normalize dates (date-only, UTC)
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}

	recs, err := s.reviews.List(ctx, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Reviews"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Contract ID",
		"Document",
		"Status",
		"Risk Flag",
		"Overall Risk",
		"Liability Risk",
		"Termination Risk",
		"Financial Risk",
		"Decision",
		"Approver",
		"Comments",
		"Updated",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		doc := ""
		if r.Bucket != "" || r.Key != "" {
			doc = fmt.Sprintf("%s/%s", r.Bucket, r.Key)
		}

		write(1, r.ContractID)
		write(2, doc)
		write(3, string(r.Status))
		write(4, string(r.RiskFlag))
		if r.Risk != nil {
			write(5, r.Risk.OverallRisk)
			write(6, r.Risk.LiabilityRisk)
			write(7, r.Risk.TerminationRisk)
			write(8, r.Risk.FinancialRisk)
		}
		write(9, r.Decision)
		write(10, r.Approver)
		write(11, truncate(r.Comments, 140))
		if !r.UpdatedAt.IsZero() {
			write(12, r.UpdatedAt.UTC().Format("2006-01-02 15:04"))
		}

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // contract id
	_ = f.SetColWidth(sheet, "B", "B", 48) // document
	_ = f.SetColWidth(sheet, "C", "D", 14) // status, flag
	_ = f.SetColWidth(sheet, "E", "H", 14) // scores
	_ = f.SetColWidth(sheet, "I", "J", 22) // decision, approver
	_ = f.SetColWidth(sheet, "K", "K", 48) // comments
	_ = f.SetColWidth(sheet, "L", "L", 18) // updated

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}
