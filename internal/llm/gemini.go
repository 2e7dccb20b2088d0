package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const DefaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta/models"

type GeminiProvider struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
}

func NewGeminiProvider(apiKey, model, endpoint string) *GeminiProvider {
	if endpoint == "" {
		endpoint = DefaultGeminiEndpoint
	}
	return &GeminiProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{},
	}
}

func (p *GeminiProvider) Name() string { return "gemini" }

func (p *GeminiProvider) Models() []string {
	return []string{"gemini-2.0-flash", "gemini-2.5-flash", "gemini-2.5-pro"}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	TopK            int      `json:"topK,omitempty"`
	TopP            float64  `json:"topP,omitempty"`
	MaxOutputTokens int      `json:"maxOutputTokens,omitempty"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent         `json:"system_instruction,omitempty"`
	Contents          []geminiContent        `json:"contents"`
	GenerationConfig  geminiGenerationConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (p *GeminiProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
	}
	start := time.Now()

	model := req.Model
	if model == "" {
		model = p.model
	}

	system, msgs := splitSystem(req.Messages)
	gReq := geminiRequest{
		Contents: make([]geminiContent, 0, len(msgs)),
		GenerationConfig: geminiGenerationConfig{
			TopK:            req.TopK,
			TopP:            req.TopP,
			MaxOutputTokens: req.MaxTokens,
		},
	}
	if req.Temperature > 0 {
		t := req.Temperature
		gReq.GenerationConfig.Temperature = &t
	}
	if system != "" {
		gReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: system}}}
	}
	for _, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		c := geminiContent{Role: role}
		for _, img := range m.Images {
			c.Parts = append(c.Parts, geminiPart{InlineData: &geminiInlineData{MIMEType: img.MIMEType, Data: img.Data}})
		}
		if m.Content != "" {
			c.Parts = append(c.Parts, geminiPart{Text: m.Content})
		}
		gReq.Contents = append(gReq.Contents, c)
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	// The key travels in a header so it never shows up in URL-bearing errors.
	reqURL := fmt.Sprintf("%s/%s:generateContent", p.endpoint, url.PathEscape(model))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", p.apiKey)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportErr(ctx, "gemini", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportErr(ctx, "gemini", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var gErr geminiError
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &gErr) == nil && gErr.Error.Message != "" {
			msg = gErr.Error.Message
		}
		return nil, statusErr("gemini", resp.StatusCode, msg)
	}

	var gResp geminiResponse
	if err := json.Unmarshal(respBody, &gResp); err != nil {
		return nil, fmt.Errorf("gemini: %w: decode response: %v", ErrUpstream, err)
	}

	var content strings.Builder
	if len(gResp.Candidates) > 0 {
		for _, part := range gResp.Candidates[0].Content.Parts {
			content.WriteString(part.Text)
		}
	}
	text := strings.TrimSpace(content.String())
	if text == "" {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	if gResp.ModelVersion != "" {
		model = gResp.ModelVersion
	}
	usage := gResp.UsageMetadata

	return &ChatResponse{
		Provider:     "gemini",
		Model:        model,
		Content:      text,
		InputTokens:  usage.PromptTokenCount,
		OutputTokens: usage.CandidatesTokenCount,
		TotalTokens:  usage.TotalTokenCount,
		CostUSD:      CalculateCost(model, usage.PromptTokenCount, usage.CandidatesTokenCount),
		LatencyMs:    time.Since(start).Milliseconds(),
	}, nil
}
