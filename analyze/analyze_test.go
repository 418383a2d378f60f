package analyze

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mseshachalam/vector/app"
)

func TestNewSelectsProvider(t *testing.T) {
	conf := &app.Config{Provider: "tldr"}
	gen, err := New(conf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gen.(*TLDR); !ok {
		t.Fatalf("got %T, want *TLDR", gen)
	}

	conf = &app.Config{Provider: "ollama", OllamaHost: "http://localhost:11434", OllamaModel: "llama3"}
	gen, err = New(conf)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gen.(*Ollama); !ok {
		t.Fatalf("got %T, want *Ollama", gen)
	}

	if _, err := New(&app.Config{Provider: "openai"}); err == nil {
		t.Fatal("openai without key must fail")
	}
	if _, err := New(&app.Config{Provider: "clippy"}); err == nil {
		t.Fatal("unknown provider must fail")
	}
}

func TestReportPrompt(t *testing.T) {
	story := &app.Story{Title: "A Story", URL: "https://example.com", Score: 42}
	comments := []*app.Comment{
		{By: "dang", Text: "be kind"},
		{By: "", Text: "orphaned"},
	}
	p := reportPrompt(story, "the article", comments)

	for _, want := range []string{"Title: A Story", "Score: 42", "- dang: be kind", "- anon: orphaned", "## Deep Dive Hooks"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestChatPromptIndentsByDepth(t *testing.T) {
	b := &app.ReportBundle{
		Title:   "A Story",
		Article: app.ArticleText{Text: "the article"},
		Comments: []*app.Comment{
			{By: "a", Text: "top", Depth: 0},
			{By: "b", Text: "reply", Depth: 1},
		},
	}
	p := chatPrompt(b, "what was the reply?")
	if !strings.Contains(p, "\n- a: top\n  - b: reply\n") {
		t.Fatalf("hierarchy not indented:\n%s", p)
	}
	if !strings.Contains(p, "The user wants to know more about: what was the reply?") {
		t.Fatal("question missing from prompt")
	}
}

func TestOllamaGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		fmt.Fprint(w, `{"message":{"role":"assistant","content":"the report"},"prompt_eval_count":5,"eval_count":7,"total_duration":1500000000}`)
	}))
	defer srv.Close()

	o := NewOllama(srv.URL, "llama3", srv.Client())
	text, usage, err := o.Generate(context.Background(), &app.Story{Title: "T"}, "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "the report" {
		t.Fatalf("got %q", text)
	}
	if usage.InputTokens != 5 || usage.OutputTokens != 7 || usage.Op != OpReport {
		t.Fatalf("unexpected usage %+v", usage)
	}
	if usage.Duration != 1500*time.Millisecond {
		t.Fatalf("duration %v, want 1.5s", usage.Duration)
	}
}

func TestOpenAIChatSendsHistory(t *testing.T) {
	var gotAuth string
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		buf, _ := io.ReadAll(r.Body)
		gotBody = string(buf)
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"the answer"}}],"usage":{"prompt_tokens":11,"completion_tokens":3}}`)
	}))
	defer srv.Close()

	o := NewOpenAI("sk-test", "gpt-4o-mini", srv.Client())
	o.BaseURL = srv.URL

	b := &app.ReportBundle{
		Title: "T",
		Chat:  []app.ChatTurn{{Role: "user", Message: "earlier question"}},
	}
	text, usage, err := o.Chat(context.Background(), b, "and now?")
	if err != nil {
		t.Fatal(err)
	}
	if text != "the answer" {
		t.Fatalf("got %q", text)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("auth header %q", gotAuth)
	}
	if !strings.Contains(gotBody, "earlier question") {
		t.Fatal("history not sent")
	}
	if usage.InputTokens != 11 || usage.OutputTokens != 3 || usage.Op != OpChat {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestTLDRGenerateOffline(t *testing.T) {
	story := &app.Story{Title: "A Story"}
	comments := []*app.Comment{{By: "a", Text: "insightful take"}}
	article := "Go compiles fast. The toolchain is simple. Deployment is a single binary. " +
		"Concurrency is built in. The standard library covers most needs."

	g := NewTLDR()
	text, usage, err := g.Generate(context.Background(), story, article, comments)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "# A Story") || !strings.Contains(text, "insightful take") {
		t.Fatalf("unexpected report:\n%s", text)
	}
	if usage.Model != "tldr" || usage.InputTokens != 0 || usage.Op != OpReport {
		t.Fatalf("unexpected usage %+v", usage)
	}
}

func TestTLDRChatFindsKeywords(t *testing.T) {
	b := &app.ReportBundle{
		Comments: []*app.Comment{
			{By: "a", Text: "the garbage collector pauses are tiny"},
			{By: "b", Text: "unrelated"},
		},
	}
	g := NewTLDR()

	answer, _, err := g.Chat(context.Background(), b, "what about the garbage collector?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "pauses are tiny") {
		t.Fatalf("match missed:\n%s", answer)
	}

	answer, _, err = g.Chat(context.Background(), b, "kubernetes?")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(answer, "Nothing in the cached") {
		t.Fatalf("expected a miss, got:\n%s", answer)
	}
}
