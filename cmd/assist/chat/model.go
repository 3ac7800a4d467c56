// Package chat implements the interactive chat TUI using Bubbletea.
package chat

import (
	"context"

	"assistchat/cmd/assist/ui"
	"assistchat/internal/conversation"
	"assistchat/internal/logging"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
)

const (
	title       = "AI Assistant Chat"
	subtitle    = "Enter your prompts and observe the AI responses"
	placeholder = "Type your message... (Enter to send, Alt+Enter for newline, Esc to exit)"

	defaultWidth  = 80
	defaultHeight = 24
	inputHeight   = 3

	// header (2) + divider (1) + indicator (1) + input box (inputHeight+2) + footer (1)
	chromeHeight = 5 + inputHeight + 2
)

// Config wires the chat model to its conversation and presentation settings.
type Config struct {
	Flow             *conversation.Flow
	Theme            string // "light", "dark" or "" to detect
	MaxInputChars    int
	RenderMarkdown   bool // glamour for replies; verbatim when false
	MarkdownWordWrap int  // 0 follows the viewport width
}

// Model is the Bubbletea model for the chat view.
type Model struct {
	// UI Components
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	styles   ui.Styles
	renderer *glamour.TermRenderer // nil unless markdown is enabled
	cache    *ui.RenderCache

	// State
	flow     *conversation.Flow
	markdown bool
	wordWrap int
	width    int
	height   int
	ready    bool
	quitting bool

	// Outbound calls run under ctx; cancelled on quit.
	ctx    context.Context
	cancel context.CancelFunc
}

// replyMsg carries a finished delivery back onto the event loop.
type replyMsg struct {
	outcome conversation.Outcome
}

// InitChat builds the initial model.
func InitChat(cfg Config) Model {
	styles := ui.NewStyles(ui.ThemeByName(cfg.Theme))

	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.ShowLineNumbers = false
	ta.Prompt = "┃ "
	ta.CharLimit = cfg.MaxInputChars
	ta.SetWidth(defaultWidth)
	ta.SetHeight(inputHeight)
	// Plain Enter submits; the textarea only sees Alt+Enter.
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))
	ta.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.Spinner

	vp := viewport.New(defaultWidth, defaultHeight-chromeHeight)
	// Printable keys belong to the input, so the viewport only pages.
	vp.KeyMap = viewport.KeyMap{
		PageDown: key.NewBinding(key.WithKeys("pgdown")),
		PageUp:   key.NewBinding(key.WithKeys("pgup")),
	}

	ctx, cancel := context.WithCancel(context.Background())

	m := Model{
		textarea: ta,
		viewport: vp,
		spinner:  sp,
		styles:   styles,
		cache:    ui.NewRenderCache(),
		flow:     cfg.Flow,
		markdown: cfg.RenderMarkdown,
		wordWrap: cfg.MarkdownWordWrap,
		width:    defaultWidth,
		height:   defaultHeight,
		ctx:      ctx,
		cancel:   cancel,
	}
	if m.markdown {
		m.renderer = newRenderer(styles.Theme, m.markdownWidth())
	}
	m.refreshViewport()
	return m
}

func newRenderer(theme ui.Theme, width int) *glamour.TermRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(theme.GlamourStyle()),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		logging.UIDebug("markdown renderer unavailable: %v", err)
		return nil
	}
	return r
}

// Init starts the cursor blinking.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, tea.SetWindowTitle(title))
}

// Pending reports whether a reply is outstanding.
func (m Model) Pending() bool {
	return m.flow.Store().Pending()
}

func (m Model) markdownWidth() int {
	if m.wordWrap > 0 {
		return m.wordWrap
	}
	w := m.viewport.Width - 4
	if w < 20 {
		w = 20
	}
	return w
}

// RunInteractiveChat runs the TUI until the user quits.
func RunInteractiveChat(cfg Config) error {
	model := InitChat(cfg)
	defer model.cancel()

	logging.UI("interactive chat started")
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return err
	}
	logging.UI("interactive chat exited")
	return nil
}
