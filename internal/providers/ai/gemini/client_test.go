package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/smallbiznis/subshare/internal/providers/ai"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func candidateResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": text}},
			},
		}},
	}
	raw, _ := json.Marshal(payload)
	return string(raw)
}

func TestVerifyReceiptCall(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(candidateResponse(`{"valid": true, "detectedAmount": 37200, "detectedSender": "Budi", "transactionId": "TX1", "reason": "cocok"}`)))
	}))
	defer srv.Close()

	client := New("key-123", "", zap.NewNop(), WithBaseURL(srv.URL))
	judgment, err := client.VerifyReceipt(context.Background(), ai.VerifyReceiptRequest{
		Image:          []byte("receipt"),
		MimeType:       "image/png",
		ExpectedAmount: 37200,
		ExpectedSender: "Budi",
	})
	require.NoError(t, err)
	require.True(t, judgment.Valid)
	require.Equal(t, "TX1", judgment.TransactionID)

	require.Equal(t, "/models/gemini-3-flash-preview:generateContent", gotPath)
	require.Equal(t, "key-123", gotKey)
	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	require.NotNil(t, gotBody.Contents[0].Parts[0].InlineData)
	require.Equal(t, "image/png", gotBody.Contents[0].Parts[0].InlineData.MimeType)
	require.Contains(t, gotBody.Contents[0].Parts[1].Text, "Rp 37200")
	require.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMimeType)
}

func TestVerifyReceiptMalformedModelOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateResponse("maaf, saya tidak bisa membaca struk ini")))
	}))
	defer srv.Close()

	client := New("key-123", "", zap.NewNop(), WithBaseURL(srv.URL))
	_, err := client.VerifyReceipt(context.Background(), ai.VerifyReceiptRequest{Image: []byte("x"), MimeType: "image/png"})
	require.ErrorIs(t, err, ai.ErrMalformedResponse)
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	client := New("key-123", "", zap.NewNop(), WithBaseURL(srv.URL))
	_, err := client.GenerateText(context.Background(), "halo")
	require.Error(t, err)
	require.Contains(t, err.Error(), "quota exceeded")
}

func TestGenerateTextTrimsOutput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(candidateResponse("\n Halo semua, mohon transfer iuran ya. \n")))
	}))
	defer srv.Close()

	client := New("key-123", "", zap.NewNop(), WithBaseURL(srv.URL))
	text, err := client.GenerateText(context.Background(), "buatkan pesan")
	require.NoError(t, err)
	require.Equal(t, "Halo semua, mohon transfer iuran ya.", text)
}

func TestMissingAPIKey(t *testing.T) {
	client := New("", "", zap.NewNop())
	_, err := client.GenerateText(context.Background(), "halo")
	require.ErrorIs(t, err, ai.ErrMissingAPIKey)
}
