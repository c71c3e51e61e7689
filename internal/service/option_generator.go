package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go_5_skill_sync/internal/config"
	"go_5_skill_sync/internal/middleware"
)

// 生成される選択肢の数
const optionCount = 4

var ErrGeneratorDisabled = errors.New("option generator is disabled")

// OptionGenerator は4択問題の選択肢を外部サービスで生成します。失敗時は呼び出し側でフォールバックします。
type OptionGenerator interface {
	GenerateOptions(ctx context.Context, question, answer, topic string) ([]string, error)
}

// NewOptionGenerator は設定に応じて OpenAI 版か無効版を返します。
func NewOptionGenerator(cfg config.GeneratorConfig, client *http.Client) OptionGenerator {
	if !cfg.Enabled || strings.TrimSpace(cfg.APIKey) == "" {
		return disabledOptionGenerator{}
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &openAIOptionGenerator{
		cfg:    cfg,
		client: client,
		sleep:  sleepContext,
	}
}

type disabledOptionGenerator struct{}

func (disabledOptionGenerator) GenerateOptions(context.Context, string, string, string) ([]string, error) {
	return nil, ErrGeneratorDisabled
}

type openAIOptionGenerator struct {
	cfg    config.GeneratorConfig
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *openAIOptionGenerator) GenerateOptions(ctx context.Context, question, answer, topic string) ([]string, error) {
	logger := middleware.GetLogger(ctx)
	attempts := max(1, g.cfg.MaxRetries)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		options, err := g.generateOnce(ctx, question, answer, topic)
		if err == nil {
			return options, nil
		}
		lastErr = err
		logger.Warn("Option generation attempt failed", "attempt", attempt, "max_attempts", attempts, "error", err)

		if attempt < attempts {
			// 待ち時間は試行回数に比例
			if err := g.sleep(ctx, g.cfg.RetryBackoff*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}
	return nil, fmt.Errorf("openAIOptionGenerator.GenerateOptions: %w", lastErr)
}

func (g *openAIOptionGenerator) generateOnce(ctx context.Context, question, answer, topic string) ([]string, error) {
	payload, err := json.Marshal(chatCompletionRequest{
		Model:       g.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: buildOptionsPrompt(question, answer, topic)}},
		MaxTokens:   500,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai responded with status %d", resp.StatusCode)
	}

	var decoded chatCompletionResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return nil, errors.New("openai response has no choices")
	}

	options, err := parseOptions(decoded.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	for i, o := range options {
		options[i] = sanitizeText(o)
	}
	return options, nil
}

func buildOptionsPrompt(question, answer, topic string) string {
	return fmt.Sprintf(`Generate %d multiple choice options for this question about "%s":

Question: %s
Correct Answer: %s

Requirements:
- Create exactly %d options
- Include the EXACT correct answer as one of the options (word-for-word match)
- Create %d plausible but incorrect options that test understanding
- Options should be similar in length and style

Format your response as a JSON array of strings, for example:
["Option 1", "Option 2", "Option 3", "Option 4"]`,
		optionCount, topic, question, answer, optionCount, optionCount-1)
}

// parseOptions はコードブロックで囲まれた応答からもJSON配列を取り出します。
func parseOptions(content string) ([]string, error) {
	cleaned := strings.ReplaceAll(content, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start == -1 || end <= start {
		return nil, errors.New("no JSON array in response")
	}

	var options []string
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &options); err != nil {
		return nil, fmt.Errorf("decode options: %w", err)
	}
	if len(options) != optionCount {
		return nil, fmt.Errorf("expected %d options, got %d", optionCount, len(options))
	}
	return options, nil
}

// FallbackOptions は生成に失敗したときの決定的な4択です。正解は常に先頭。
func FallbackOptions(answer string) []string {
	return []string{answer, "Incorrect option 1", "Incorrect option 2", "Incorrect option 3"}
}

// EnsureCorrectOption は正解の文字列が選択肢に含まれるようにし、その位置を返します。
// 大文字小文字と空白を無視して一致を探し、見つからなければ先頭を正解で置き換えます。
func EnsureCorrectOption(options []string, answer string) ([]string, int) {
	if len(options) == 0 {
		return FallbackOptions(answer), 0
	}
	target := normalizeAnswer(answer)
	for i, o := range options {
		if normalizeAnswer(o) == target {
			return options, i
		}
	}
	fixed := make([]string, len(options))
	copy(fixed, options)
	fixed[0] = answer
	return fixed, 0
}

// normalizeAnswer は比較用に小文字化し、連続する空白を1つにまとめます。
func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
