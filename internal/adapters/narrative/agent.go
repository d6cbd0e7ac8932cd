package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"property-insight-service/internal/domain"
	"property-insight-service/internal/platform/obs"
	"property-insight-service/internal/ports"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	DefaultModel   = "gemini-2.0-flash"

	// Metadata value for analyses produced without a persona.
	baseAgentName = "base"
)

var (
	ErrUnknownPersona = ports.ErrUnknownPersona
	ErrInvalidListing = errors.New("invalid property data")
	ErrEmptyResponse  = errors.New("model returned no content")
)

// chatClient is the slice of the OpenAI client the agent uses.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Agent implements Narrator on top of an OpenAI-compatible chat completion
// endpoint.
type Agent struct {
	client  chatClient
	model   string
	prompts *prompts
	now     func() time.Time
	timeout time.Duration
}

type Option func(*Agent)

func WithModel(model string) Option {
	return func(a *Agent) {
		if model != "" {
			a.model = model
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(a *Agent) { a.now = now }
}

// WithTimeout bounds a single completion request.
func WithTimeout(d time.Duration) Option {
	return func(a *Agent) { a.timeout = d }
}

// NewAgent builds an agent talking to baseURL (DefaultBaseURL when empty).
func NewAgent(apiKey, baseURL string, opts ...Option) (*Agent, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("narrative agent: api key is empty")
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL

	return newAgent(openai.NewClientWithConfig(cfg), opts...)
}

func newAgent(client chatClient, opts ...Option) (*Agent, error) {
	p, err := loadPrompts()
	if err != nil {
		return nil, fmt.Errorf("narrative agent: %w", err)
	}

	a := &Agent{
		client:  client,
		model:   DefaultModel,
		prompts: p,
		now:     time.Now,
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Personas lists the embedded persona names.
func (a *Agent) Personas() []string { return a.prompts.personaNames() }

// persona returns the persona preamble and the agent name recorded in
// metadata. An empty name selects no persona.
func (a *Agent) persona(name string) (string, string, error) {
	if name == "" {
		return "", baseAgentName, nil
	}
	text, ok := a.prompts.personas[name]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrUnknownPersona, name)
	}
	return text, name, nil
}

// ValidateListing checks the fields every prompt depends on.
func ValidateListing(l *domain.Listing) error {
	if l == nil {
		return fmt.Errorf("%w: listing is nil", ErrInvalidListing)
	}
	if strings.TrimSpace(l.URL) == "" {
		return fmt.Errorf("%w: missing url", ErrInvalidListing)
	}
	if strings.TrimSpace(l.FullAddress) == "" {
		return fmt.Errorf("%w: missing full_address", ErrInvalidListing)
	}
	return nil
}

// Analyze asks the model for a structured assessment of the listing and its
// travel times. The parsed JSON object is returned with timestamp,
// property_url and agent metadata added.
func (a *Agent) Analyze(
	ctx context.Context,
	listing *domain.Listing,
	report domain.DistanceReport,
	persona string,
) (_ domain.Analysis, err error) {
	defer obs.Time(ctx, "narrative.Analyze")(&err)

	if err := ValidateListing(listing); err != nil {
		return nil, err
	}
	preamble, agentName, err := a.persona(persona)
	if err != nil {
		return nil, err
	}

	propertyJSON, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("analyze: encode listing: %w", err)
	}
	if report == nil {
		report = domain.DistanceReport{}
	}
	distanceJSON, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("analyze: encode distances: %w", err)
	}

	prompt, err := render(a.prompts.analysis, promptData{
		PropertyData: string(propertyJSON),
		DistanceInfo: string(distanceJSON),
		Checklist:    a.prompts.checklist,
		Template:     a.prompts.template,
	})
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	text, err := a.complete(ctx, preamble, prompt)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	analysis, err := ParseAnalysis(text)
	if err != nil {
		log.Printf("agent=%s unparseable response len=%d", agentName, len(text))
		return nil, fmt.Errorf("analyze: %w", err)
	}

	analysis["timestamp"] = a.now().Format(time.RFC3339)
	analysis["property_url"] = listing.URL
	analysis["agent"] = agentName

	return analysis, nil
}

// Summarize asks the model for a short plain-text summary of the listing.
func (a *Agent) Summarize(ctx context.Context, listing *domain.Listing, persona string) (_ string, err error) {
	defer obs.Time(ctx, "narrative.Summarize")(&err)

	if err := ValidateListing(listing); err != nil {
		return "", err
	}
	preamble, _, err := a.persona(persona)
	if err != nil {
		return "", err
	}

	propertyJSON, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return "", fmt.Errorf("summarize: encode listing: %w", err)
	}

	prompt, err := render(a.prompts.quickSummary, promptData{PropertyData: string(propertyJSON)})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}

	text, err := a.complete(ctx, preamble, prompt)
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return stripFences(text), nil
}

func (a *Agent) complete(ctx context.Context, system, prompt string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ParseAnalysis decodes a model response into an analysis object. Markdown
// code fences are removed; when the remainder is not valid JSON the outermost
// {...} span is tried instead.
func ParseAnalysis(text string) (domain.Analysis, error) {
	cleaned := stripFences(text)

	var out domain.Analysis
	if err := json.Unmarshal([]byte(cleaned), &out); err == nil && out != nil {
		return out, nil
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil, errors.New("no valid JSON found in response")
	}

	out = nil
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("parse analysis: %w", err)
	}
	return out, nil
}
