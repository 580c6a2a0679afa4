package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/procurex/procurement-backend/internal/domain/errors"
)

// Config holds the settings for the OpenAI-backed oracle.
type Config struct {
	APIKey  string        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Model   string        `koanf:"model"`
	Timeout time.Duration `koanf:"timeout"`

	// RequestsPerMinute throttles outbound calls. Zero disables throttling.
	RequestsPerMinute int `koanf:"requests_per_minute"`
}

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = openai.GPT4oMini
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// OpenAIOracle scores entities through the OpenAI chat completions API,
// forcing a JSON object response and validating it before returning.
type OpenAIOracle struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewOpenAIOracle builds the oracle client. The logger may be nil.
func NewOpenAIOracle(cfg Config, logger *zap.Logger) (*OpenAIOracle, error) {
	cfg = cfg.withDefaults()
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("oracle API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), cfg.RequestsPerMinute)
	}

	return &OpenAIOracle{
		client:  openai.NewClientWithConfig(clientCfg),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		limiter: limiter,
		logger:  logger,
	}, nil
}

var systemPrompts = map[Kind]string{
	KindVendorAnalysis: "You are a procurement risk analyst. Assess the vendor profile you are given: " +
		"financial standing, technical capability, compliance posture and track record.",
	KindBidAnalysis: "You are a procurement bid evaluator. Assess the bid you are given: " +
		"price competitiveness, feasibility of the proposed terms and vendor fit for the product.",
	KindComplianceCheck: "You are a procurement compliance officer. Assess the vendor and bid records " +
		"you are given against standard procurement compliance requirements.",
}

const responseContract = `Return ONLY a raw JSON object, no markdown fences, with exactly this structure:
{
  "overall_score": number between 0 and 100,
  "category_scores": object mapping category name to a number between 0 and 100,
  "risk_level": "low" | "medium" | "high",
  "recommendations": array of short strings,
  "summary": string, at most 3 sentences
}`

// Score sends the payload to the model and parses the structured verdict.
// All transport, parsing and validation failures map to an oracle
// unavailability error so callers can treat the oracle as a single flaky
// dependency.
func (o *OpenAIOracle) Score(ctx context.Context, kind Kind, payload interface{}) (*Assessment, error) {
	system, ok := systemPrompts[kind]
	if !ok {
		return nil, fmt.Errorf("unknown assessment kind: %q", kind)
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, errors.NewOracleUnavailableError("rate limit wait aborted", err)
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal oracle payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system + "\n\n" + responseContract},
			{Role: openai.ChatMessageRoleUser, Content: string(body)},
		},
	})
	if err != nil {
		o.logger.Warn("oracle request failed",
			zap.String("kind", string(kind)),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return nil, errors.NewOracleUnavailableError("chat completion request failed", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.NewOracleUnavailableError("empty completion response", nil)
	}

	assessment, err := parseAssessment(resp.Choices[0].Message.Content)
	if err != nil {
		o.logger.Warn("oracle returned malformed verdict",
			zap.String("kind", string(kind)),
			zap.Error(err))
		return nil, errors.NewOracleUnavailableError("malformed oracle verdict", err)
	}

	o.logger.Debug("oracle assessment completed",
		zap.String("kind", string(kind)),
		zap.Float64("overall_score", assessment.OverallScore),
		zap.Duration("elapsed", time.Since(start)))
	return assessment, nil
}

// parseAssessment decodes and validates the model output. Models occasionally
// wrap JSON in markdown fences despite instructions, so fences are stripped
// before decoding.
func parseAssessment(content string) (*Assessment, error) {
	var a Assessment
	if err := json.Unmarshal([]byte(stripFences(content)), &a); err != nil {
		return nil, fmt.Errorf("decode verdict: %w", err)
	}

	if a.OverallScore < 0 || a.OverallScore > 100 {
		return nil, fmt.Errorf("overall score %v out of range [0,100]", a.OverallScore)
	}
	for name, score := range a.CategoryScores {
		if score < 0 || score > 100 {
			return nil, fmt.Errorf("category %q score %v out of range [0,100]", name, score)
		}
	}
	switch a.RiskLevel {
	case "low", "medium", "high":
	default:
		return nil, fmt.Errorf("unknown risk level: %q", a.RiskLevel)
	}
	return &a, nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
