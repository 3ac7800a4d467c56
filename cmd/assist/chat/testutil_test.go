package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"assistchat/internal/conversation"

	tea "github.com/charmbracelet/bubbletea"
)

// fakeSender records submissions and answers with a fixed reply or error.
type fakeSender struct {
	mu    sync.Mutex
	calls []string
	reply string
	err   error
}

func (f *fakeSender) Send(_ context.Context, text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	return f.reply, f.err
}

func (f *fakeSender) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// TestModelOption configures a model built by NewTestModel.
type TestModelOption func(*testModelConfig)

type testModelConfig struct {
	sender   conversation.Sender
	clock    func() time.Time
	markdown bool
	width    int
	height   int
}

// WithSender replaces the default always-succeeding sender.
func WithSender(s conversation.Sender) TestModelOption {
	return func(c *testModelConfig) { c.sender = s }
}

// WithMarkdown turns on glamour rendering of replies.
func WithMarkdown() TestModelOption {
	return func(c *testModelConfig) { c.markdown = true }
}

// WithSize sets the initial window size.
func WithSize(w, h int) TestModelOption {
	return func(c *testModelConfig) { c.width, c.height = w, h }
}

var errBackendDown = errors.New("backend down")

// NewTestModel builds a sized, ready model over a fresh conversation.
func NewTestModel(t *testing.T, opts ...TestModelOption) Model {
	t.Helper()

	cfg := &testModelConfig{
		sender: &fakeSender{reply: "Sure, where to?"},
		clock:  func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
		width:  100,
		height: 30,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	store := conversation.NewStore(conversation.WithClock(cfg.clock))
	m := InitChat(Config{
		Flow:           conversation.NewFlow(store, cfg.sender),
		Theme:          "light",
		MaxInputChars:  4096,
		RenderMarkdown: cfg.markdown,
	})
	t.Cleanup(m.cancel)

	newModel, _ := m.Update(tea.WindowSizeMsg{Width: cfg.width, Height: cfg.height})
	return newModel.(Model)
}

// typeText sets the input buffer directly.
func typeText(m Model, text string) Model {
	m.textarea.SetValue(text)
	return m
}

// collectReply executes cmd, descending into batches, and returns the first
// replyMsg produced. Only use it on commands returned by a submit.
func collectReply(t *testing.T, cmd tea.Cmd) (replyMsg, bool) {
	t.Helper()
	if cmd == nil {
		return replyMsg{}, false
	}
	switch msg := cmd().(type) {
	case replyMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if r, ok := collectReply(t, c); ok {
				return r, true
			}
		}
	}
	return replyMsg{}, false
}

// submit presses Enter with text in the buffer and feeds the reply back.
func submit(t *testing.T, m Model, text string) Model {
	t.Helper()
	m = typeText(m, text)
	newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = newModel.(Model)

	reply, ok := collectReply(t, cmd)
	if !ok {
		t.Fatalf("submit of %q produced no reply", text)
	}
	newModel, _ = m.Update(reply)
	return newModel.(Model)
}
