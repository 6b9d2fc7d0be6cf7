// Package ai checks payment receipts with a vision-capable language model.
package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	oaishared "github.com/openai/openai-go/shared"
	"github.com/rentflow/backend/internal/domain/billing"
	"github.com/rentflow/backend/internal/domain/shared/valueobject"
	"github.com/rentflow/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrUnsupportedReceipt is returned for receipts the model cannot read
var ErrUnsupportedReceipt = errors.New("receipt content type is not an image")

const judgementFunction = "record_receipt_judgement"

const systemPrompt = `You verify rent payment receipts for a property manager.
Read the receipt image and compare the amount paid with the expected amount.
Answer by calling record_receipt_judgement. Set is_accurate to true only when the receipt clearly shows
a completed payment of the expected amount. Put the amount you read in extracted_amount, or null
when no amount is legible. Keep notes short and factual.`

var judgementSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"is_accurate":      map[string]any{"type": "boolean"},
		"extracted_amount": map[string]any{"type": []string{"number", "null"}},
		"notes":            map[string]any{"type": "string"},
	},
	"required":             []string{"is_accurate", "extracted_amount", "notes"},
	"additionalProperties": false,
}

// OpenAIReceiptJudge implements billing.ReceiptJudge with the chat completions API
type OpenAIReceiptJudge struct {
	client  openai.Client
	model   string
	detail  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewOpenAIReceiptJudge creates a judge. Requests are not retried.
func NewOpenAIReceiptJudge(cfg config.AIConfig, logger *zap.Logger, opts ...option.RequestOption) *OpenAIReceiptJudge {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &OpenAIReceiptJudge{
		client:  openai.NewClient(reqOpts...),
		model:   cfg.Model,
		detail:  cfg.ImageDetail,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

type judgementPayload struct {
	IsAccurate      bool         `json:"is_accurate"`
	ExtractedAmount *json.Number `json:"extracted_amount"`
	Notes           string       `json:"notes"`
}

// Judge asks the model whether the receipt matches the expected amount
func (j *OpenAIReceiptJudge) Judge(ctx context.Context, check billing.ReceiptCheck) (*billing.ReceiptJudgement, error) {
	imageURL, err := receiptImageURL(check)
	if err != nil {
		return nil, err
	}

	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(describeCheck(check)),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL:    imageURL,
					Detail: j.detail,
				}),
			}),
		},
		Tools: []openai.ChatCompletionToolParam{{
			Function: oaishared.FunctionDefinitionParam{
				Name:        judgementFunction,
				Description: openai.String("Record whether the receipt shows the expected payment."),
				Strict:      openai.Bool(true),
				Parameters:  judgementSchema,
			},
		}},
		ToolChoice: openai.ChatCompletionToolChoiceOptionUnionParam{
			OfChatCompletionNamedToolChoice: &openai.ChatCompletionNamedToolChoiceParam{
				Function: openai.ChatCompletionNamedToolChoiceFunctionParam{
					Name: judgementFunction,
				},
			},
		},
	}

	started := time.Now()
	resp, err := j.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("receipt judge request failed: %w", err)
	}
	if len(resp.Choices) == 0 || len(resp.Choices[0].Message.ToolCalls) == 0 {
		return nil, errors.New("receipt judge returned no function call")
	}

	judgement, err := parseJudgement(resp.Choices[0].Message.ToolCalls[0].Function.Arguments)
	if err != nil {
		return nil, err
	}

	j.logger.Info("Receipt judged",
		zap.String("invoice_id", check.InvoiceID.String()),
		zap.String("model", j.model),
		zap.Bool("is_accurate", judgement.IsAccurate),
		zap.Duration("duration", time.Since(started)),
	)
	return judgement, nil
}

func describeCheck(check billing.ReceiptCheck) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Expected amount: %s USD\n", check.ExpectedAmount.Amount().StringFixed(2))
	if check.TenantName != "" {
		fmt.Fprintf(&b, "Payer: %s\n", check.TenantName)
	}
	if check.PropertyName != "" {
		fmt.Fprintf(&b, "Property: %s\n", check.PropertyName)
	}
	return b.String()
}

// receiptImageURL inlines fetched bytes as a data URL and passes external URLs through
func receiptImageURL(check billing.ReceiptCheck) (string, error) {
	if check.Image != nil {
		if !strings.HasPrefix(check.Image.ContentType, "image/") {
			return "", ErrUnsupportedReceipt
		}
		return "data:" + check.Image.ContentType + ";base64," + base64.StdEncoding.EncodeToString(check.Image.Data), nil
	}
	if check.ReceiptURL == "" {
		return "", errors.New("receipt has neither image nor URL")
	}
	return check.ReceiptURL, nil
}

func parseJudgement(content string) (*billing.ReceiptJudgement, error) {
	var payload judgementPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("receipt judge returned malformed JSON: %w", err)
	}

	judgement := &billing.ReceiptJudgement{
		IsAccurate: payload.IsAccurate,
		Notes:      payload.Notes,
	}
	if payload.ExtractedAmount != nil {
		amount, err := decimal.NewFromString(payload.ExtractedAmount.String())
		if err != nil {
			return nil, fmt.Errorf("receipt judge returned invalid amount: %w", err)
		}
		m := valueobject.NewMoney(amount)
		judgement.ExtractedAmount = &m
	}
	return judgement, nil
}

var _ billing.ReceiptJudge = (*OpenAIReceiptJudge)(nil)
