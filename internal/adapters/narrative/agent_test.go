package narrative

import (
	"context"
	"errors"
	"property-insight-service/internal/domain"
	"strings"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type fakeChat struct {
	reply string
	err   error
	reqs  []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
		},
	}, nil
}

func testListing() *domain.Listing {
	return &domain.Listing{
		URL:         "https://www.domain.com.au/1-smith-st",
		FullAddress: "1 Smith St, Bondi NSW 2026",
	}
}

func newTestAgent(t *testing.T, chat *fakeChat) *Agent {
	t.Helper()
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	a, err := newAgent(chat, WithClock(func() time.Time { return fixed }))
	if err != nil {
		t.Fatalf("new agent: %v", err)
	}
	return a
}

func TestParseAnalysis(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"plain", `{"summary":"ok"}`, false},
		{"fenced", "```json\n{\"summary\":\"ok\"}\n```", false},
		{"prose around object", "Here you go:\n{\"summary\":\"ok\"}\nThanks!", false},
		{"no object", "I cannot help with that.", true},
		{"broken object", "{\"summary\": }", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAnalysis(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got["summary"] != "ok" {
				t.Fatalf("summary = %v", got["summary"])
			}
		})
	}
}

func TestAnalyzeAddsMetadataAndPersona(t *testing.T) {
	chat := &fakeChat{reply: "```json\n{\"summary\":\"too far from everything\"}\n```"}
	a := newTestAgent(t, chat)

	report := domain.DistanceReport{
		domain.CategoryWork: {{Destination: "Wynard Station Sydney, NSW", Distance: domain.NewDistance(8200)}},
	}
	got, err := a.Analyze(context.Background(), testListing(), report, "negative_nancy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["agent"] != "negative_nancy" {
		t.Fatalf("agent = %v", got["agent"])
	}
	if got["property_url"] != "https://www.domain.com.au/1-smith-st" {
		t.Fatalf("property_url = %v", got["property_url"])
	}
	if got["timestamp"] != "2026-03-02T10:00:00Z" {
		t.Fatalf("timestamp = %v", got["timestamp"])
	}

	if len(chat.reqs) != 1 {
		t.Fatalf("requests = %d", len(chat.reqs))
	}
	req := chat.reqs[0]
	if req.Model != DefaultModel {
		t.Fatalf("model = %q", req.Model)
	}
	if len(req.Messages) != 2 || req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system persona message, got %+v", req.Messages)
	}
	if !strings.Contains(req.Messages[0].Content, "Negative Nancy") {
		t.Fatalf("persona not in system message")
	}
	user := req.Messages[1].Content
	for _, want := range []string{"1 Smith St, Bondi NSW 2026", "Wynard Station Sydney, NSW", "overall_rating", "damp or mould"} {
		if !strings.Contains(user, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}

func TestAnalyzeWithoutPersona(t *testing.T) {
	chat := &fakeChat{reply: `{"summary":"fine"}`}
	a := newTestAgent(t, chat)

	got, err := a.Analyze(context.Background(), testListing(), nil, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["agent"] != baseAgentName {
		t.Fatalf("agent = %v", got["agent"])
	}
	if len(chat.reqs[0].Messages) != 1 {
		t.Fatalf("expected only the user message, got %d", len(chat.reqs[0].Messages))
	}
}

func TestAnalyzeRejectsUnknownPersona(t *testing.T) {
	chat := &fakeChat{reply: `{}`}
	a := newTestAgent(t, chat)

	_, err := a.Analyze(context.Background(), testListing(), nil, "positive_polly")
	if !errors.Is(err, ErrUnknownPersona) {
		t.Fatalf("err = %v, want ErrUnknownPersona", err)
	}
	if len(chat.reqs) != 0 {
		t.Fatalf("model should not be called")
	}
}

func TestAnalyzeRejectsInvalidListing(t *testing.T) {
	a := newTestAgent(t, &fakeChat{})

	_, err := a.Analyze(context.Background(), &domain.Listing{URL: "u"}, nil, "")
	if !errors.Is(err, ErrInvalidListing) {
		t.Fatalf("err = %v, want ErrInvalidListing", err)
	}
}

func TestAnalyzePropagatesClientError(t *testing.T) {
	a := newTestAgent(t, &fakeChat{err: errors.New("quota exceeded")})

	if _, err := a.Analyze(context.Background(), testListing(), nil, ""); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSummarize(t *testing.T) {
	chat := &fakeChat{reply: "  A small house near the beach.  "}
	a := newTestAgent(t, chat)

	got, err := a.Summarize(context.Background(), testListing(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A small house near the beach." {
		t.Fatalf("summary = %q", got)
	}
}

func TestPersonas(t *testing.T) {
	a := newTestAgent(t, &fakeChat{})
	got := a.Personas()
	if len(got) != 1 || got[0] != "negative_nancy" {
		t.Fatalf("personas = %v", got)
	}
}
