// Package classifier scores journal text against a fixed emotion label set
// using a hosted inference endpoint.
package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/JiwonJeong414/TechTive-Backend/internal/emotion"
)

// maxInputChars caps the text sent upstream. Hosted classifiers reject or
// silently truncate long inputs; we truncate deterministically instead.
const maxInputChars = 500

// Classifier scores text into an emotion vector.
type Classifier interface {
	Classify(ctx context.Context, text string) (emotion.Vector, error)
}

// UpstreamError describes a failed inference call. Transient errors (model
// cold start, rate limiting, 5xx) are worth retrying; the rest are not.
type UpstreamError struct {
	Status    int
	Message   string
	Transient bool
}

func (e *UpstreamError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("classifier upstream error (%s, status %d): %s", kind, e.Status, e.Message)
}

// IsTransient reports whether err is a retryable upstream failure.
func IsTransient(err error) bool {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue.Transient
	}
	return false
}

// HuggingFace calls a HuggingFace Inference API text-classification model.
type HuggingFace struct {
	client *resty.Client
}

// NewHuggingFace builds a client for the given model URL. The token may be
// empty for public models.
func NewHuggingFace(modelURL, token string) *HuggingFace {
	c := resty.New().
		SetBaseURL(modelURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(30 * time.Second)
	if token != "" {
		c.SetAuthToken(token)
	}
	return &HuggingFace{client: c}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type inferenceError struct {
	Error         string  `json:"error"`
	EstimatedTime float64 `json:"estimated_time"`
}

// Classify sends text upstream and normalizes the result into a Vector.
// Unknown labels are discarded; scores are clamped and rounded. The caller
// decides what to do on error (retry, fall back to neutral).
func (h *HuggingFace) Classify(ctx context.Context, text string) (emotion.Vector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return emotion.Vector{}, &UpstreamError{Message: "empty input", Transient: false}
	}
	if r := []rune(text); len(r) > maxInputChars {
		text = string(r[:maxInputChars])
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetBody(&inferenceRequest{Inputs: text}).
		Post("")
	if err != nil {
		// Network failures are transient: the endpoint may simply be slow.
		return emotion.Vector{}, &UpstreamError{Message: err.Error(), Transient: true}
	}

	if resp.StatusCode() != http.StatusOK {
		return emotion.Vector{}, classifyFailure(resp.StatusCode(), resp.Body())
	}

	// Response shape: [[{"label":"joy","score":0.98}, ...]]
	var nested [][]labelScore
	if err := json.Unmarshal(resp.Body(), &nested); err != nil || len(nested) == 0 || len(nested[0]) == 0 {
		// Cold models sometimes deliver the loading notice in a 200 body.
		var ie inferenceError
		if json.Unmarshal(resp.Body(), &ie) == nil && ie.Error != "" {
			return emotion.Vector{}, classifyFailure(resp.StatusCode(), resp.Body())
		}
		return emotion.Vector{}, &UpstreamError{
			Status:    resp.StatusCode(),
			Message:   "malformed inference response",
			Transient: false,
		}
	}

	scores := make(map[string]float64, len(nested[0]))
	for _, ls := range nested[0] {
		scores[strings.ToLower(ls.Label)] = ls.Score
	}
	return emotion.FromScores(scores), nil
}

func classifyFailure(status int, body []byte) *UpstreamError {
	var ie inferenceError
	_ = json.Unmarshal(body, &ie)
	msg := ie.Error
	if msg == "" {
		msg = strings.TrimSpace(string(body))
	}

	transient := status == http.StatusTooManyRequests || status >= 500
	// Cold models answer 503 with "Model ... is currently loading"; some
	// proxies surface the same message with other codes.
	if strings.Contains(strings.ToLower(msg), "loading") {
		transient = true
	}
	return &UpstreamError{Status: status, Message: msg, Transient: transient}
}
