package webhooks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Client calls the external n8n workflows that host the AI-assisted features.
// The workflows themselves (compliance rules, OCR models) are opaque; this
// client only delivers payloads and relays responses.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// NewClient builds an n8n webhook client rooted at the given base URL.
func NewClient(baseURL string, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)

	return &Client{httpClient: restyClient, logger: logger}
}

// ComplianceRequest carries the medicines to check against schedule rules.
type ComplianceRequest struct {
	ShopID    string   `json:"shop_id"`
	Medicines []string `json:"medicines"`
}

// ComplianceResult relays the workflow's verdict per medicine.
type ComplianceResult struct {
	Results []struct {
		MedicineName string `json:"medicine_name"`
		Schedule     string `json:"schedule"`
		RxRequired   bool   `json:"rx_required"`
		Warning      string `json:"warning,omitempty"`
	} `json:"results"`
}

// OCRRequest carries a base64-encoded prescription image.
type OCRRequest struct {
	ShopID    string `json:"shop_id"`
	ImageData string `json:"image_data"`
	MimeType  string `json:"mime_type"`
}

// OCRResult relays the extracted prescription lines.
type OCRResult struct {
	Medicines []struct {
		Name     string `json:"name"`
		Dosage   string `json:"dosage,omitempty"`
		Quantity int    `json:"quantity,omitempty"`
	} `json:"medicines"`
	RawText string `json:"raw_text,omitempty"`
}

// CheckCompliance posts the medicine list to the compliance workflow.
func (c *Client) CheckCompliance(ctx context.Context, req ComplianceRequest) (*ComplianceResult, error) {
	result := new(ComplianceResult)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		Post("/webhook/compliance-check")
	if err != nil {
		return nil, fmt.Errorf("compliance webhook: %w", err)
	}
	if resp.IsError() {
		return nil, workflowError("compliance", resp)
	}

	c.logger.Info("compliance check completed",
		zap.String("shop_id", req.ShopID), zap.Int("medicines", len(req.Medicines)))
	return result, nil
}

// ExtractPrescription posts a prescription image to the OCR workflow.
func (c *Client) ExtractPrescription(ctx context.Context, req OCRRequest) (*OCRResult, error) {
	result := new(OCRResult)
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(result).
		Post("/webhook/prescription-ocr")
	if err != nil {
		return nil, fmt.Errorf("ocr webhook: %w", err)
	}
	if resp.IsError() {
		return nil, workflowError("ocr", resp)
	}

	c.logger.Info("prescription ocr completed",
		zap.String("shop_id", req.ShopID), zap.Int("medicines", len(result.Medicines)))
	return result, nil
}

func workflowError(name string, resp *resty.Response) error {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body(), &payload); err == nil && payload.Message != "" {
		return fmt.Errorf("%s workflow returned %d: %s", name, resp.StatusCode(), payload.Message)
	}
	return fmt.Errorf("%s workflow returned %d", name, resp.StatusCode())
}
