package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/shiftwyse/shiftwyse/i18n"
)

const inferenceTimeout = 30 * time.Second

// Fixed fallback strings. The chat must never surface a raw error, so any
// transport or API failure degrades to one of these.
const (
	FallbackEmpty   = "I'm sorry, I couldn't generate a response at this time."
	FallbackFailure = "I'm sorry, I am currently experiencing technical difficulties. Please try again later."
)

const promptTemplate = `You are ShiftWyse, an AI-powered nurse leadership chatbot. Respond to the user's message in %s. The user's input is: "%s". Provide a supportive, encouraging response focused on nursing leadership and professional development. Use a friendly tone.`

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type InferenceGateway struct {
	client   *http.Client
	endpoint string
	apiKey   string
	model    string
}

func NewInferenceGateway(endpoint, apiKey, model string) *InferenceGateway {
	return &InferenceGateway{
		client:   &http.Client{Timeout: inferenceTimeout},
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
	}
}

// Reply asks the model for an assistant turn. Single attempt, no retry:
// the call sits on an interactive path. It always returns usable text,
// never an error.
func (g *InferenceGateway) Reply(ctx context.Context, userText, locale string) string {

	prompt := fmt.Sprintf(promptTemplate, i18n.LanguageName(locale), userText)

	payload := generateRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{ResponseMimeType: "text/plain"},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error(
			"Failed to encode inference request",
			slog.String("error", err.Error()),
			slog.String("module", "inference"),
		)
		return FallbackFailure
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", g.endpoint, g.model, g.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return FallbackFailure
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		slog.Warn(
			"Inference request failed",
			slog.String("error", err.Error()),
			slog.String("module", "inference"),
		)
		return FallbackFailure
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Warn(
			"Inference endpoint returned non-200",
			slog.Int("status", resp.StatusCode),
			slog.String("module", "inference"),
		)
		return FallbackFailure
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		slog.Warn(
			"Failed to decode inference response",
			slog.String("error", err.Error()),
			slog.String("module", "inference"),
		)
		return FallbackFailure
	}

	// An absent candidates path is an empty result, not an error.
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return FallbackEmpty
	}
	text := result.Candidates[0].Content.Parts[0].Text
	if text == "" {
		return FallbackEmpty
	}
	return text
}
