package chat

import (
	"fmt"
	"strings"

	"assistchat/internal/conversation"
	"assistchat/internal/logging"

	"github.com/charmbracelet/lipgloss"
)

const footerHelp = "Enter/Ctrl+S send • Alt+Enter newline • PgUp/PgDn scroll • Esc quit"

// View renders the current state.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.styles.RenderDivider(m.width),
		m.viewport.View(),
		m.renderIndicator(),
		m.styles.Input.Width(m.width-2).Render(m.textarea.View()),
		m.styles.Footer.Render(footerHelp),
	)
}

func (m Model) renderHeader() string {
	var status string
	if m.Pending() {
		status = m.styles.Busy.Render(m.spinner.View() + " Thinking")
	} else {
		status = m.styles.Ready.Render("● Ready")
	}

	left := m.styles.Header.Render(title)
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(status) - 1
	if gap < 1 {
		gap = 1
	}
	top := left + strings.Repeat(" ", gap) + status

	return lipgloss.JoinVertical(lipgloss.Left, top, m.styles.Subtitle.Render(subtitle))
}

// renderIndicator is the typing line under the transcript; blank when idle
// so the layout does not jump.
func (m Model) renderIndicator() string {
	if !m.Pending() {
		return ""
	}
	return m.styles.Content.Render(m.spinner.View() + m.styles.Muted.Render(" Assistant is typing..."))
}

// renderHistory renders every message in order.
func (m Model) renderHistory() string {
	var sb strings.Builder
	for i, msg := range m.flow.Store().Messages() {
		if i > 0 {
			sb.WriteString("\n")
		}
		if msg.IsUser() {
			sb.WriteString(m.renderUser(msg))
		} else {
			sb.WriteString(m.renderAssistant(msg))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

func (m Model) renderUser(msg conversation.Message) string {
	width := m.viewport.Width
	maxBubble := width * 3 / 4
	if maxBubble < 10 {
		maxBubble = 10
	}
	bubbleWidth := lipgloss.Width(msg.Content) + 2
	if bubbleWidth > maxBubble {
		bubbleWidth = maxBubble
	}

	label := fmt.Sprintf("%s %s",
		m.styles.Timestamp.Render(msg.Timestamp()),
		m.styles.UserLabel.Render("You"))
	bubble := m.styles.UserBubble.Width(bubbleWidth).Render(msg.Content)

	block := lipgloss.JoinVertical(lipgloss.Right, label, bubble)
	return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
}

func (m Model) renderAssistant(msg conversation.Message) string {
	label := fmt.Sprintf("%s %s",
		m.styles.AssistantLabel.Render("Assistant"),
		m.styles.Timestamp.Render(msg.Timestamp()))

	body := m.cache.GetOrCompute(msg.ID, m.viewport.Width, func() string {
		if m.markdown {
			return m.safeRenderMarkdown(msg.Content)
		}
		return m.renderVerbatim(msg.Content)
	})
	return lipgloss.JoinVertical(lipgloss.Left, label, m.styles.AssistantBubble.Render(body))
}

// renderVerbatim wraps long lines to the reply width and otherwise leaves the
// content exactly as received.
func (m Model) renderVerbatim(content string) string {
	return lipgloss.NewStyle().Width(m.markdownWidth()).Render(content)
}

// safeRenderMarkdown renders markdown, falling back to verbatim text if the
// renderer is missing, errors or panics.
func (m Model) safeRenderMarkdown(content string) (out string) {
	plain := m.renderVerbatim(content)
	if m.renderer == nil {
		return plain
	}
	defer func() {
		if r := recover(); r != nil {
			logging.UIDebug("markdown render panicked: %v", r)
			out = plain
		}
	}()

	rendered, err := m.renderer.Render(content)
	if err != nil {
		logging.UIDebug("markdown render failed: %v", err)
		return plain
	}
	return strings.Trim(rendered, "\n")
}
