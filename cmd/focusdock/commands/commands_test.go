package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chzyer/readline"

	"github.com/benvon/focusdock/internal/chat"
	"github.com/benvon/focusdock/internal/models"
	"github.com/benvon/focusdock/internal/pagetext"
	"github.com/benvon/focusdock/internal/timer"
)

const articleHTML = `<!DOCTYPE html>
<html><head><title>Launch Notes</title></head>
<body><nav>Home About</nav><article>
<p>The team shipped the new onboarding flow this week after three months of work.</p>
<p>Early results show a significant increase in trial conversions across every region.</p>
<p>The next phase focuses on improving performance for customers on slower networks.</p>
</article></body></html>`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestReadPage(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		fileName  string
		wantTitle string
		wantText  string
	}{
		{
			name:      "html from stdin",
			input:     articleHTML,
			wantTitle: "Launch Notes",
			wantText:  "onboarding flow",
		},
		{
			name:      "html by extension",
			input:     "<p>Plain paragraph inside a fragment.</p>",
			fileName:  "fragment.html",
			wantTitle: pagetext.DefaultTitle,
			wantText:  "Plain paragraph",
		},
		{
			name:      "plain text titled by file",
			input:     "Some notes about the project.",
			fileName:  "/tmp/meeting-notes.txt",
			wantTitle: "meeting-notes",
			wantText:  "Some notes about the project.",
		},
		{
			name:      "plain text from stdin",
			input:     "Just text",
			wantTitle: pagetext.DefaultTitle,
			wantText:  "Just text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			page, err := ReadPage(strings.NewReader(tt.input), tt.fileName, "https://example.com/p")
			if err != nil {
				t.Fatalf("ReadPage() error = %v", err)
			}
			if page.Title != tt.wantTitle {
				t.Errorf("Title = %q, want %q", page.Title, tt.wantTitle)
			}
			if !strings.Contains(page.Text, tt.wantText) {
				t.Errorf("Text = %q, want it to contain %q", page.Text, tt.wantText)
			}
			if page.URL != "https://example.com/p" {
				t.Errorf("URL = %q", page.URL)
			}
		})
	}
}

func TestSummarizeCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "summarize", "--demo", "--copy")
	if err != nil {
		t.Fatalf("summarize error = %v", err)
	}
	if !strings.HasPrefix(out, "• ") {
		t.Errorf("copy output = %q, want bullet lines", out)
	}

	out, err = execute(t, articleHTML, "summarize")
	if err != nil {
		t.Fatalf("summarize stdin error = %v", err)
	}
	if !strings.Contains(out, "Launch Notes") || !strings.Contains(out, "• ") {
		t.Errorf("output = %q", out)
	}
}

func TestSummarizeCmd_InsufficientContent(t *testing.T) {
	t.Parallel()

	if _, err := execute(t, "too short", "summarize"); err == nil {
		t.Error("expected an error for short input")
	}
}

func TestKeywordsCmd(t *testing.T) {
	t.Parallel()

	out, err := execute(t, "", "keywords", "--demo", "--json")
	if err != nil {
		t.Fatalf("keywords error = %v", err)
	}
	var result models.KeywordResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if len(result.Skills) == 0 {
		t.Errorf("expected skills in %+v", result)
	}

	out, err = execute(t, "", "keywords", "--demo")
	if err != nil {
		t.Fatalf("keywords error = %v", err)
	}
	if !strings.Contains(out, "keywords found") || !strings.Contains(out, "Skills: ") {
		t.Errorf("output = %q", out)
	}
}

func TestKeywordsCmd_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "job.txt")
	if err := os.WriteFile(path, []byte(pagetext.DemoContent), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := execute(t, "", "keywords", "--copy", path)
	if err != nil {
		t.Fatalf("keywords error = %v", err)
	}
	if !strings.Contains(out, ", ") {
		t.Errorf("copy output = %q, want a comma-joined list", out)
	}

	if _, err := execute(t, "", "keywords", filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestTasksCmd(t *testing.T) {
	t.Parallel()

	dbFlag := "--database=sqlite://" + filepath.Join(t.TempDir(), "cli.db")

	out, err := execute(t, "", dbFlag, "tasks", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "No tasks saved") {
		t.Errorf("empty list output = %q", out)
	}

	if _, err := execute(t, "", dbFlag, "tasks", "add", "https://example.com/report",
		"--title", "Quarterly report", "--priority", "P0", "--due", "2026-11-01"); err != nil {
		t.Fatalf("add error = %v", err)
	}
	if _, err := execute(t, "", dbFlag, "tasks", "add", "https://example.com/blog", "--title", "Blog draft"); err != nil {
		t.Fatalf("add error = %v", err)
	}

	out, err = execute(t, "", dbFlag, "tasks", "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	for _, want := range []string{"1. [ ] Blog draft (P1 Medium)", "2. [ ] Quarterly report (P0 High) due 2026-11-01"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	out, err = execute(t, "", dbFlag, "tasks", "toggle", "quarterly")
	if err != nil {
		t.Fatalf("toggle error = %v", err)
	}
	if !strings.Contains(out, "is now done") {
		t.Errorf("toggle output = %q", out)
	}

	out, err = execute(t, "", dbFlag, "tasks", "list", "--status", "done")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if !strings.Contains(out, "[x] Quarterly report") || strings.Contains(out, "Blog draft") {
		t.Errorf("done list = %q", out)
	}

	if _, err := execute(t, "", dbFlag, "tasks", "delete", "blog", "draft"); err != nil {
		t.Fatalf("delete error = %v", err)
	}
	out, err = execute(t, "", dbFlag, "tasks", "list", "--json")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	var list []models.Task
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("json list: %v", err)
	}
	if len(list) != 1 || list[0].Title != "Quarterly report" {
		t.Errorf("remaining tasks = %+v", list)
	}
}

func TestTasksCmd_Errors(t *testing.T) {
	t.Parallel()

	dbFlag := "--database=sqlite://" + filepath.Join(t.TempDir(), "cli.db")

	tests := []struct {
		name string
		args []string
	}{
		{"invalid url", []string{"tasks", "add", "not a url"}},
		{"invalid priority", []string{"tasks", "add", "https://example.com", "--priority", "P9"}},
		{"invalid due date", []string{"tasks", "add", "https://example.com", "--due", "tomorrow"}},
		{"invalid status filter", []string{"tasks", "list", "--status", "archived"}},
		{"no match", []string{"tasks", "toggle", "zzz"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, "", append([]string{dbFlag}, tt.args...)...); err == nil {
				t.Errorf("expected an error for %v", tt.args)
			}
		})
	}
}

func TestSession_HandleLine(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s, err := newSession(t.Context(), memoryOpener, sessionOptions{
		out:            &out,
		defaultMinutes: 25,
		timerOpts:      []timer.Option{timer.WithManualTicks()},
	})
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	t.Cleanup(s.close)

	page := chat.StaticPage(pagetext.DemoPage())

	tests := []struct {
		line     string
		want     string
		wantQuit bool
	}{
		{line: "   ", want: ""},
		{line: "help", want: "🤖 "},
		{line: "start timer 10", want: "10 minutes"},
		{line: "summarize", want: "•"},
		{line: "/history", want: "🙂 start timer 10"},
		{line: "/clear", want: "🤖 "},
		{line: "/nope", want: "unknown command"},
		{line: "/quit", wantQuit: true},
	}

	for _, tt := range tests {
		out.Reset()
		quit := s.handleLine(t.Context(), tt.line, page)
		if quit != tt.wantQuit {
			t.Errorf("handleLine(%q) quit = %v, want %v", tt.line, quit, tt.wantQuit)
		}
		if tt.want != "" && !strings.Contains(out.String(), tt.want) {
			t.Errorf("handleLine(%q) output = %q, want it to contain %q", tt.line, out.String(), tt.want)
		}
	}

	if got := s.timer.State(); got.Status != models.TimerStatusRunning || got.TotalSeconds != 600 {
		t.Errorf("timer = %+v, want a running 10 minute session", got)
	}
}

func TestSession_AnnounceFinish(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	s, err := newSession(t.Context(), memoryOpener, sessionOptions{
		out:       &out,
		timerOpts: []timer.Option{timer.WithManualTicks()},
	})
	if err != nil {
		t.Fatalf("newSession() error = %v", err)
	}
	t.Cleanup(s.close)

	if _, err := s.timer.Start(t.Context(), 1, "", "Write tests"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	for range 60 {
		s.timer.Tick(t.Context())
	}
	if !strings.Contains(out.String(), "Focus session complete! Task: Write tests") {
		t.Errorf("output = %q", out.String())
	}
}

func TestIsReadTermination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "eof", err: io.EOF, want: true},
		{name: "interrupt", err: readline.ErrInterrupt, want: true},
		{name: "nil", err: nil, want: false},
		{name: "other", err: os.ErrClosed, want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isReadTermination(tc.err); got != tc.want {
				t.Errorf("isReadTermination(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
