package scan

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error

	gotModel    string
	gotContents []*genai.Content
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context,
	model string,
	contents []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.gotModel = model
	f.gotContents = contents
	return f.resp, f.err
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: text}}}},
		},
	}
}

func TestClient_ScanReceipt(t *testing.T) {
	ctx := context.Background()
	imageBytes := []byte{0xff, 0xd8, 0xff}

	t.Run("extracts a full suggestion", func(t *testing.T) {
		fake := &fakeGenerator{resp: textResponse(
			`{"amount": "54.60", "merchant": "Corner Cafe", "date": "2024-01-15", "confidence": 0.95}`,
		)}
		client := NewClientWithGenerator(fake)

		got, err := client.ScanReceipt(ctx, imageBytes, "image/jpeg")
		require.NoError(t, err)
		require.Equal(t, "Corner Cafe", got.Name)
		require.True(t, got.Amount.Equal(decimal.NewFromFloat(54.60)))
		require.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), got.IssuedAt)
		require.InDelta(t, 0.95, got.Confidence, 0.001)
		require.True(t, got.HasAmount())
		require.True(t, got.HasName())
	})

	t.Run("sends the image and prompt to the model", func(t *testing.T) {
		fake := &fakeGenerator{resp: textResponse(
			`{"amount": "10.00", "merchant": "Shop", "date": "", "confidence": 0.5}`,
		)}
		client := NewClientWithGenerator(fake)

		_, err := client.ScanReceipt(ctx, imageBytes, "image/png")
		require.NoError(t, err)
		require.Equal(t, ModelName, fake.gotModel)
		require.Len(t, fake.gotContents, 1)

		parts := fake.gotContents[0].Parts
		require.Len(t, parts, 2)
		require.Equal(t, "image/png", parts[0].InlineData.MIMEType)
		require.Equal(t, imageBytes, parts[0].InlineData.Data)
		require.NotEmpty(t, parts[1].Text)
	})

	t.Run("defaults the mime type to jpeg", func(t *testing.T) {
		fake := &fakeGenerator{resp: textResponse(
			`{"amount": "10.00", "merchant": "Shop", "date": "", "confidence": 0.5}`,
		)}
		client := NewClientWithGenerator(fake)

		_, err := client.ScanReceipt(ctx, imageBytes, "")
		require.NoError(t, err)
		require.Equal(t, "image/jpeg", fake.gotContents[0].Parts[0].InlineData.MIMEType)
	})

	t.Run("rejects empty image data", func(t *testing.T) {
		client := NewClientWithGenerator(&fakeGenerator{})
		_, err := client.ScanReceipt(ctx, nil, "image/jpeg")
		require.ErrorContains(t, err, "image data is required")
	})

	t.Run("fails when the response has no candidates", func(t *testing.T) {
		client := NewClientWithGenerator(&fakeGenerator{resp: &genai.GenerateContentResponse{}})
		_, err := client.ScanReceipt(ctx, imageBytes, "image/jpeg")
		require.ErrorContains(t, err, "no response")
	})

	t.Run("fails when the response text is empty", func(t *testing.T) {
		client := NewClientWithGenerator(&fakeGenerator{resp: textResponse("")})
		_, err := client.ScanReceipt(ctx, imageBytes, "image/jpeg")
		require.ErrorContains(t, err, "empty response")
	})

	t.Run("fails when nothing usable was extracted", func(t *testing.T) {
		client := NewClientWithGenerator(&fakeGenerator{resp: textResponse(
			`{"amount": "0", "merchant": "", "date": "", "confidence": 0.1}`,
		)})
		_, err := client.ScanReceipt(ctx, imageBytes, "image/jpeg")
		require.ErrorIs(t, err, ErrNoData)
	})

	t.Run("maps a deadline error to ErrScanTimeout", func(t *testing.T) {
		client := NewClientWithGenerator(&fakeGenerator{err: context.DeadlineExceeded})
		_, err := client.ScanReceipt(ctx, imageBytes, "image/jpeg")
		require.ErrorIs(t, err, ErrScanTimeout)
	})
}

func TestParseScanResponse(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantName   string
		wantAmount string
		wantDate   string
	}{
		{
			name:       "plain JSON",
			response:   `{"amount": "54.60", "merchant": "Cafe", "date": "2024-01-15", "confidence": 0.9}`,
			wantName:   "Cafe",
			wantAmount: "54.60",
			wantDate:   "2024-01-15",
		},
		{
			name:       "markdown fenced JSON",
			response:   "```json\n{\"amount\": \"12.00\", \"merchant\": \"Shop\", \"date\": \"2024-02-01\", \"confidence\": 0.8}\n```",
			wantName:   "Shop",
			wantAmount: "12.00",
			wantDate:   "2024-02-01",
		},
		{
			name:       "zero amount is dropped",
			response:   `{"amount": "0", "merchant": "Shop", "date": "", "confidence": 0.3}`,
			wantName:   "Shop",
			wantAmount: "",
			wantDate:   "",
		},
		{
			name:       "negative amount is dropped",
			response:   `{"amount": "-5.00", "merchant": "Shop", "date": "", "confidence": 0.3}`,
			wantName:   "Shop",
			wantAmount: "",
			wantDate:   "",
		},
		{
			name:       "unparseable date is dropped",
			response:   `{"amount": "5.00", "merchant": "Shop", "date": "15/01/2024", "confidence": 0.3}`,
			wantName:   "Shop",
			wantAmount: "5.00",
			wantDate:   "",
		},
		{
			name:       "merchant whitespace is trimmed",
			response:   `{"amount": "5.00", "merchant": "  Shop  ", "date": "", "confidence": 0.3}`,
			wantName:   "Shop",
			wantAmount: "5.00",
			wantDate:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseScanResponse(tt.response)
			require.NoError(t, err)
			require.Equal(t, tt.wantName, got.Name)
			if tt.wantAmount == "" {
				require.False(t, got.HasAmount())
			} else {
				want, parseErr := decimal.NewFromString(tt.wantAmount)
				require.NoError(t, parseErr)
				require.True(t, got.Amount.Equal(want))
			}
			if tt.wantDate == "" {
				require.True(t, got.IssuedAt.IsZero())
			} else {
				require.Equal(t, tt.wantDate, got.IssuedAt.Format("2006-01-02"))
			}
		})
	}

	t.Run("rejects non-JSON", func(t *testing.T) {
		_, err := parseScanResponse("sorry, I cannot read this receipt")
		require.ErrorContains(t, err, "failed to parse scan response")
	})
}
