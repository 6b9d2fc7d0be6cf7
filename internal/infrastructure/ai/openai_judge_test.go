package ai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func completionBody(arguments string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "gpt-4o-mini",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "tool_calls",
			"message": map[string]any{
				"role":    "assistant",
				"content": nil,
				"tool_calls": []map[string]any{{
					"id":   "call_1",
					"type": "function",
					"function": map[string]any{
						"name":      judgementFunction,
						"arguments": arguments,
					},
				}},
			},
		}},
	})
	return string(body)
}

func newTestJudge(t *testing.T, handler http.HandlerFunc) *OpenAIReceiptJudge {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenAIReceiptJudge(config.AIConfig{
		APIKey:      "test-key",
		BaseURL:     srv.URL + "/v1/",
		Model:       "gpt-4o-mini",
		Timeout:     5 * time.Second,
		ImageDetail: "low",
	}, zap.NewNop())
}

func testCheck() billing.ReceiptCheck {
	return billing.ReceiptCheck{
		InvoiceID:      uuid.New(),
		ExpectedAmount: valueobject.NewMoneyFromInt(1280),
		TenantName:     "Dana Tenant",
		PropertyName:   "Maple Court 4B",
		Image:          &billing.ReceiptImage{ContentType: "image/png", Data: []byte("png")},
	}
}

func TestOpenAIReceiptJudge_Judge(t *testing.T) {
	var captured map[string]any
	judge := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(raw, &captured))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody(`{"is_accurate":true,"extracted_amount":1280.00,"notes":"Transfer of $1,280.00 confirmed"}`))
	})

	judgement, err := judge.Judge(context.Background(), testCheck())
	require.NoError(t, err)
	assert.True(t, judgement.IsAccurate)
	require.NotNil(t, judgement.ExtractedAmount)
	assert.True(t, judgement.ExtractedAmount.Equals(valueobject.NewMoneyFromInt(1280)))
	assert.Contains(t, judgement.Notes, "confirmed")

	assert.Equal(t, "gpt-4o-mini", captured["model"])
	rawReq, _ := json.Marshal(captured)
	assert.Contains(t, string(rawReq), "data:image/png;base64,")
	assert.Contains(t, string(rawReq), "Expected amount: 1280.00 USD")
	assert.Contains(t, string(rawReq), judgementFunction)
}

func TestOpenAIReceiptJudge_NullAmount(t *testing.T) {
	judge := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody(`{"is_accurate":false,"extracted_amount":null,"notes":"Image is blurred"}`))
	})

	judgement, err := judge.Judge(context.Background(), testCheck())
	require.NoError(t, err)
	assert.False(t, judgement.IsAccurate)
	assert.Nil(t, judgement.ExtractedAmount)
}

func TestOpenAIReceiptJudge_ServerError(t *testing.T) {
	calls := 0
	judge := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"message":"boom","type":"server_error"}}`)
	})

	_, err := judge.Judge(context.Background(), testCheck())
	require.Error(t, err)
	assert.Equal(t, 1, calls, "requests are not retried")
}

func TestOpenAIReceiptJudge_NoToolCall(t *testing.T) {
	judge := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"x","object":"chat.completion","created":1,"model":"m","choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"I cannot tell"}}]}`)
	})

	_, err := judge.Judge(context.Background(), testCheck())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no function call")
}

func TestOpenAIReceiptJudge_MalformedContent(t *testing.T) {
	judge := newTestJudge(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, completionBody("not json"))
	})

	_, err := judge.Judge(context.Background(), testCheck())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")
}

func TestReceiptImageURL(t *testing.T) {
	check := testCheck()
	check.Image = &billing.ReceiptImage{ContentType: "application/pdf", Data: []byte("%PDF")}
	_, err := receiptImageURL(check)
	assert.ErrorIs(t, err, ErrUnsupportedReceipt)

	check.Image = nil
	check.ReceiptURL = "https://bank.example.com/r/1.png"
	url, err := receiptImageURL(check)
	require.NoError(t, err)
	assert.Equal(t, check.ReceiptURL, url)

	check.ReceiptURL = ""
	_, err = receiptImageURL(check)
	assert.Error(t, err)
}

func TestDescribeCheck(t *testing.T) {
	text := describeCheck(testCheck())
	assert.True(t, strings.HasPrefix(text, "Expected amount: 1280.00 USD"))
	assert.Contains(t, text, "Payer: Dana Tenant")
	assert.Contains(t, text, "Property: Maple Court 4B")
}

func TestDisabledReceiptJudge(t *testing.T) {
	_, err := DisabledReceiptJudge{}.Judge(context.Background(), testCheck())
	assert.ErrorIs(t, err, ErrJudgeDisabled)
}
