package scan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"
)

// ScanTimeout is the timeout for Gemini API calls.
const ScanTimeout = 30 * time.Second

// ErrScanTimeout indicates the Gemini API call timed out.
var ErrScanTimeout = errors.New("receipt scan timed out")

// ErrNoData indicates no usable data could be extracted from the image.
var ErrNoData = errors.New("no usable data extracted from receipt image")

// Suggestion contains the extracted data from a receipt image, used
// to pre-fill a receipt entry.
type Suggestion struct {
	Name       string
	Amount     decimal.Decimal
	IssuedAt   time.Time
	Confidence float64
}

// HasAmount returns true if the amount was extracted.
func (s *Suggestion) HasAmount() bool {
	return !s.Amount.IsZero()
}

// HasName returns true if a merchant name was extracted.
func (s *Suggestion) HasName() bool {
	return s.Name != ""
}

// IsEmpty returns true if no usable data was extracted.
func (s *Suggestion) IsEmpty() bool {
	return !s.HasAmount() && !s.HasName()
}

// scanResponse is the JSON structure returned by Gemini.
type scanResponse struct {
	Amount     string  `json:"amount"`
	Merchant   string  `json:"merchant"`
	Date       string  `json:"date"`
	Confidence float64 `json:"confidence"`
}

// ScanReceipt extracts receipt data from an image using Gemini.
// It applies a 30-second timeout to the API call.
func (c *Client) ScanReceipt(ctx context.Context, imageBytes []byte, mimeType string) (*Suggestion, error) {
	if len(imageBytes) == 0 {
		return nil, fmt.Errorf("image data is required")
	}

	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, ScanTimeout)
	defer cancel()

	resp, err := c.generator.GenerateContent(timeoutCtx, ModelName, []*genai.Content{
		{
			Parts: []*genai.Part{
				{InlineData: &genai.Blob{MIMEType: mimeType, Data: imageBytes}},
				{Text: scanPrompt},
			},
		},
	}, nil)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrScanTimeout
		}
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no response from Gemini")
	}

	var textContent string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			textContent += part.Text
		}
	}

	if textContent == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	suggestion, err := parseScanResponse(textContent)
	if err != nil {
		return nil, err
	}

	if suggestion.IsEmpty() {
		return nil, ErrNoData
	}

	return suggestion, nil
}

const scanPrompt = `Analyze this receipt image and extract the following information.
Return ONLY a JSON object with no additional text or markdown formatting.

Required fields:
- amount: The total amount paid (numeric string, e.g., "54.60")
- merchant: The merchant/store name
- date: The date of purchase in YYYY-MM-DD format
- confidence: Your confidence in the extraction accuracy (0.0 to 1.0)

If a field cannot be determined, use an empty string for text fields, "0" for amount, or 0.0 for confidence.

Example response:
{"amount": "54.60", "merchant": "Restaurant Name", "date": "2024-01-15", "confidence": 0.95}`

func parseScanResponse(response string) (*Suggestion, error) {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")
	response = strings.TrimSpace(response)

	var sr scanResponse
	if err := json.Unmarshal([]byte(response), &sr); err != nil {
		return nil, fmt.Errorf("failed to parse scan response: %w", err)
	}

	suggestion := &Suggestion{
		Name:       strings.TrimSpace(sr.Merchant),
		Confidence: sr.Confidence,
	}

	if sr.Amount != "" && sr.Amount != "0" {
		amount, err := decimal.NewFromString(sr.Amount)
		if err == nil && amount.IsPositive() {
			suggestion.Amount = amount
		}
	}

	if sr.Date != "" {
		if issued, err := time.Parse("2006-01-02", sr.Date); err == nil {
			suggestion.IssuedAt = issued
		}
	}

	return suggestion, nil
}
