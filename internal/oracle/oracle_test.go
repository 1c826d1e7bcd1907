package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"redactbench/internal/metrics"
)

type countingJudge struct {
	calls int
	score float64
}

func (j *countingJudge) Similarity(context.Context, string, string) (float64, error) {
	j.calls++
	return j.score, nil
}

// TestExactMatchNormalization verifies spaces, trailing periods and case are ignored.
func TestExactMatchNormalization(t *testing.T) {
	cases := []struct {
		value, gold string
		want        bool
	}{
		{"Minnesota", "minnesota.", true},
		{"New York", "newyork", true},
		{"St. Paul...", "st.paul", true},
		{"Minnesota", "Ohio", false},
		{".Minnesota", "minnesota", false},
	}
	for _, tc := range cases {
		if got := ExactMatch(tc.value, tc.gold); got != tc.want {
			t.Fatalf("ExactMatch(%q, %q) = %v, want %v", tc.value, tc.gold, got, tc.want)
		}
	}
}

// TestExactMatchSkipsJudge verifies the fast path never calls the model.
func TestExactMatchSkipsJudge(t *testing.T) {
	inner := &countingJudge{score: 0.1}
	judge := WithExactMatch(inner, metrics.New())
	got, err := judge.Similarity(context.Background(), "Minnesota", "minnesota.")
	if err != nil || got != 1 {
		t.Fatalf("expected 1 without error, got %v (%v)", got, err)
	}
	if inner.calls != 0 {
		t.Fatalf("expected judge not to be called, got %d calls", inner.calls)
	}
	got, _ = judge.Similarity(context.Background(), "Minnesota", "Ohio")
	if got != 0.1 || inner.calls != 1 {
		t.Fatalf("expected delegated score, got %v after %d calls", got, inner.calls)
	}
}

// fakeCompletions serves canned chat completion replies and records requests.
type fakeCompletions struct {
	mu       sync.Mutex
	replies  []string
	requests []map[string]any
	status   int
}

func (f *fakeCompletions) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, _ := io.ReadAll(r.Body)
	var req map[string]any
	_ = json.Unmarshal(body, &req)
	f.requests = append(f.requests, req)
	if f.status != 0 {
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(`{"error":{"message":"unavailable","type":"server_error"}}`))
		return
	}
	content := ""
	if len(f.replies) > 0 {
		content = f.replies[0]
		f.replies = f.replies[1:]
	}
	resp := map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "test-model",
		"choices": []map[string]any{{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func newTestClient(t *testing.T, fake *fakeCompletions) *Client {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	client, err := NewClient(Config{Model: "test-model", APIKey: "sk-test", BaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

// TestClientAnswerSendsSourceAsInstruction verifies message roles and the decoded answer.
func TestClientAnswerSendsSourceAsInstruction(t *testing.T) {
	fake := &fakeCompletions{replies: []string{`{"reasoning":"stated","answer":"Minnesota"}`}}
	client := newTestClient(t, fake)
	got, err := client.Answer(context.Background(), "Alice lives in Minnesota.", "Where does Alice live?")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if got != "Minnesota" {
		t.Fatalf("expected Minnesota, got %q", got)
	}
	messages := fake.requests[0]["messages"].([]any)
	first := messages[0].(map[string]any)
	second := messages[1].(map[string]any)
	if first["role"] != "system" || first["content"] != "Alice lives in Minnesota." {
		t.Fatalf("unexpected instruction message: %v", first)
	}
	if second["role"] != "user" || second["content"] != "Where does Alice live?" {
		t.Fatalf("unexpected user message: %v", second)
	}
	format := fake.requests[0]["response_format"].(map[string]any)
	if format["type"] != "json_schema" {
		t.Fatalf("expected json_schema response format, got %v", format["type"])
	}
}

// TestClientSimilarityClampsAndRepairs verifies tolerant decoding and clamping.
func TestClientSimilarityClampsAndRepairs(t *testing.T) {
	fake := &fakeCompletions{replies: []string{
		`{"reasoning":"same","score":1.4}`,
		"{reasoning: 'partial', score: 0.25,}",
	}}
	client := newTestClient(t, fake)
	got, err := client.Similarity(context.Background(), "MN", "Minnesota")
	if err != nil || got != 1 {
		t.Fatalf("expected clamped 1, got %v (%v)", got, err)
	}
	got, err = client.Similarity(context.Background(), "MN", "Minnesota")
	if err != nil || got != 0.25 {
		t.Fatalf("expected repaired 0.25, got %v (%v)", got, err)
	}
	input := fake.requests[0]["messages"].([]any)[0].(map[string]any)["content"].(string)
	if !strings.HasPrefix(input, `Do "MN" and "Minnesota" have the same meaning?`) {
		t.Fatalf("unexpected equality prompt: %s", input)
	}
}

// TestClientEmptyResponse verifies blank content is an error.
func TestClientEmptyResponse(t *testing.T) {
	client := newTestClient(t, &fakeCompletions{replies: []string{"  "}})
	if _, err := client.Answer(context.Background(), "ctx", "q"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

// TestClientServerError verifies transport failures surface as errors.
func TestClientServerError(t *testing.T) {
	client := newTestClient(t, &fakeCompletions{status: http.StatusInternalServerError})
	if _, err := client.Similarity(context.Background(), "a", "b"); err == nil {
		t.Fatalf("expected error")
	}
}

// TestClientGenerators verifies the generation calls decode their payloads.
func TestClientGenerators(t *testing.T) {
	fake := &fakeCompletions{replies: []string{
		`{"reasoning":"r","news":"Breaking: Alice moved."}`,
		`{"reasoning":"r","qa":[{"q":"Who moved?","a":"Alice"}]}`,
		`{"reasoning":"r","redacted":"Breaking: [NAME] moved."}`,
	}}
	client := newTestClient(t, fake)
	ctx := context.Background()
	news, err := client.OriginalText(ctx)
	if err != nil || news != "Breaking: Alice moved." {
		t.Fatalf("unexpected original %q (%v)", news, err)
	}
	qa, err := client.QuestionAnswers(ctx, news)
	if err != nil || len(qa) != 1 || qa[0].A != "Alice" {
		t.Fatalf("unexpected qa %+v (%v)", qa, err)
	}
	redacted, err := client.Redact(ctx, news, "hide names")
	if err != nil || redacted != "Breaking: [NAME] moved." {
		t.Fatalf("unexpected redaction %q (%v)", redacted, err)
	}
}

// TestNewClientValidation verifies explicit credential and model checks.
func TestNewClientValidation(t *testing.T) {
	if _, err := NewClient(Config{Model: "m"}); !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := NewClient(Config{APIKey: "k"}); !errors.Is(err, ErrMissingModel) {
		t.Fatalf("expected ErrMissingModel, got %v", err)
	}
	if _, err := NewClient(Config{APIKey: "k", Model: "m", Provider: "bogus"}); err == nil {
		t.Fatalf("expected unsupported provider error")
	}
	if _, err := NewClient(Config{APIKey: "k", Model: "m", Provider: ProviderOpenRouter}); err != nil {
		t.Fatalf("expected openrouter client, got %v", err)
	}
}
