package chat

import (
	"assistchat/internal/conversation"
	"assistchat/internal/logging"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		taCmd tea.Cmd
		vpCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			m.cancel()
			return m, tea.Quit

		case tea.KeyCtrlS:
			return m.handleSubmit()

		case tea.KeyEnter:
			// Alt+Enter falls through to the textarea as a newline
			if !msg.Alt {
				return m.handleSubmit()
			}
		}

	case replyMsg:
		return m.handleReply(msg.outcome)

	case spinner.TickMsg:
		// Let the spinner stop once the reply is in.
		if !m.Pending() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(taCmd, vpCmd)
}

// handleSubmit moves the conversation to Pending and schedules delivery.
// Blank input and submissions while pending are ignored.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	sub, ok := m.flow.Begin(m.textarea.Value())
	if !ok {
		return m, nil
	}

	m.textarea.Reset()
	m.textarea.Blur()
	m.refreshViewport()

	return m, tea.Batch(m.spinner.Tick, m.deliver(sub))
}

// deliver runs the outbound call off the event loop.
func (m Model) deliver(sub conversation.Submission) tea.Cmd {
	flow, ctx := m.flow, m.ctx
	return func() tea.Msg {
		return replyMsg{outcome: flow.Deliver(ctx, sub)}
	}
}

func (m Model) handleReply(out conversation.Outcome) (tea.Model, tea.Cmd) {
	m.flow.Complete(out)
	if !out.OK() {
		logging.UIDebug("showing fallback for submission %d", out.Submission.MessageID)
	}
	cmd := m.textarea.Focus()
	m.refreshViewport()
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height

	vpHeight := height - chromeHeight
	if vpHeight < 3 {
		vpHeight = 3
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(width - 4) // border + padding

	if m.markdown && m.wordWrap == 0 {
		m.renderer = newRenderer(m.styles.Theme, m.markdownWidth())
	}
	m.ready = true
	m.refreshViewport()
}

// refreshViewport re-renders the transcript and scrolls to the newest message.
func (m *Model) refreshViewport() {
	m.viewport.SetContent(m.renderHistory())
	m.viewport.GotoBottom()
	logging.UIDebug("transcript refreshed: %d messages, %d cached renders", m.flow.Store().Len(), m.cache.Len())
}
