package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/smallbiznis/subshare/internal/providers/ai"
)

// extractJSON pulls the JSON object out of a model reply that may be wrapped
// in markdown fences or surrounded by prose. Takes the span from the first
// '{' to the last '}'.
func extractJSON(raw string) (string, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return "", fmt.Errorf("%w: no JSON object in reply", ai.ErrMalformedResponse)
	}
	return cleaned[start : end+1], nil
}

func decodeBillScan(raw string) (ai.BillScan, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return ai.BillScan{}, err
	}

	var parsed struct {
		ServiceName *string  `json:"serviceName"`
		TotalPrice  *float64 `json:"totalPrice"`
		RenewalDate *string  `json:"renewalDate"`
		MaxSlots    *int     `json:"maxSlots"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ai.BillScan{}, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	if parsed.ServiceName == nil || strings.TrimSpace(*parsed.ServiceName) == "" ||
		parsed.TotalPrice == nil || parsed.RenewalDate == nil || parsed.MaxSlots == nil {
		return ai.BillScan{}, fmt.Errorf("%w: bill scan missing required field", ai.ErrMalformedResponse)
	}

	return ai.BillScan{
		ServiceName: strings.TrimSpace(*parsed.ServiceName),
		TotalPrice:  *parsed.TotalPrice,
		RenewalDate: strings.TrimSpace(*parsed.RenewalDate),
		MaxSlots:    *parsed.MaxSlots,
	}, nil
}

func decodeJudgment(raw string) (ai.ReceiptJudgment, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return ai.ReceiptJudgment{}, err
	}

	var parsed struct {
		Valid          *bool    `json:"valid"`
		DetectedAmount *float64 `json:"detectedAmount"`
		DetectedSender *string  `json:"detectedSender"`
		TransactionID  string   `json:"transactionId"`
		Reason         *string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return ai.ReceiptJudgment{}, fmt.Errorf("%w: %v", ai.ErrMalformedResponse, err)
	}
	if parsed.Valid == nil || parsed.Reason == nil {
		return ai.ReceiptJudgment{}, fmt.Errorf("%w: judgment missing required field", ai.ErrMalformedResponse)
	}

	judgment := ai.ReceiptJudgment{
		Valid:         *parsed.Valid,
		TransactionID: strings.TrimSpace(parsed.TransactionID),
		Reason:        strings.TrimSpace(*parsed.Reason),
	}
	if parsed.DetectedAmount != nil {
		judgment.DetectedAmount = *parsed.DetectedAmount
	}
	if parsed.DetectedSender != nil {
		judgment.DetectedSender = strings.TrimSpace(*parsed.DetectedSender)
	}
	// A positive judgment without the extracted fields is unusable; fail it
	// the same way as a schema violation.
	if judgment.Valid && (parsed.DetectedAmount == nil || parsed.DetectedSender == nil) {
		return ai.ReceiptJudgment{}, fmt.Errorf("%w: valid judgment missing detection fields", ai.ErrMalformedResponse)
	}

	return judgment, nil
}
