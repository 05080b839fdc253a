package ingest

import (
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"github.com/romitbhandari17/agentic-risk-automation/internal/common"
	"github.com/romitbhandari17/agentic-risk-automation/internal/ocr"
)

// Request is a parsed trigger for one contract review.
type Request struct {
	ContractID     string
	Source         ocr.DocumentLocation
	VendorMetadata map[string]any
}

// ParseEvent accepts the two trigger shapes the system supports — a direct
// locator and a bucket-notification record — and normalizes them into a
// Request. A missing contract_id gets a generated UUID. Anything else is
// ErrInputFormat: fatal, no retry.
//
// Direct shape:
//
//	{"contract_id": "...", "s3": {"bucket": "...", "key": "..."}, "vendor_metadata": {...}}
//
// Notification shape:
//
//	{"Records": [{"s3": {"bucket": {"name": "..."}, "object": {"key": "..."}}}]}
//
// Notification object keys arrive URL-encoded and are decoded here.
func ParseEvent(raw []byte) (Request, error) {
	var event struct {
		ContractID     string         `json:"contract_id"`
		VendorMetadata map[string]any `json:"vendor_metadata"`
		S3             *struct {
			Bucket string `json:"bucket"`
			Key    string `json:"key"`
		} `json:"s3"`
		Records []struct {
			S3 struct {
				Bucket struct {
					Name string `json:"name"`
				} `json:"bucket"`
				Object struct {
					Key string `json:"key"`
				} `json:"object"`
			} `json:"s3"`
		} `json:"Records"`
	}
	if err := json.Unmarshal(raw, &event); err != nil {
		return Request{}, common.NewAppError("INPUT_FORMAT", "event is not a JSON object", fmt.Errorf("%w: %w", common.ErrInputFormat, err))
	}

	req := Request{
		ContractID:     event.ContractID,
		VendorMetadata: event.VendorMetadata,
	}
	if req.ContractID == "" {
		req.ContractID = uuid.New().String()
	}

	switch {
	case event.S3 != nil && event.S3.Bucket != "" && event.S3.Key != "":
		req.Source = ocr.DocumentLocation{Bucket: event.S3.Bucket, Key: event.S3.Key}
	case len(event.Records) > 0 && event.Records[0].S3.Bucket.Name != "" && event.Records[0].S3.Object.Key != "":
		rec := event.Records[0]
		key, err := url.QueryUnescape(rec.S3.Object.Key)
		if err != nil {
			return Request{}, common.NewAppError("INPUT_FORMAT", "notification object key is not URL-decodable", fmt.Errorf("%w: %w", common.ErrInputFormat, err))
		}
		req.Source = ocr.DocumentLocation{Bucket: rec.S3.Bucket.Name, Key: key}
	default:
		return Request{}, common.NewAppError("INPUT_FORMAT",
			"expected 's3' locator or 'Records' notification", common.ErrInputFormat)
	}

	return req, nil
}
