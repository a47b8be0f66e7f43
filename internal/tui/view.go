package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cookchat/cookchat/internal/domain/conversation"
)

// View renders the active screen
func (m Model) View() string {
	if m.screen == screenAuth {
		return m.viewAuth()
	}
	return m.viewChat()
}

func (m Model) viewAuth() string {
	var b strings.Builder

	b.WriteString(m.styles.Header.Render("CookChat — your AI cooking assistant"))
	b.WriteString("\n\n")

	if m.checking {
		b.WriteString(m.spinner.View() + " Checking session...\n")
		return b.String()
	}

	mode := "Sign in"
	if m.registerMode {
		mode = "Create an account"
	}
	b.WriteString(m.styles.ModalHeader.Render(mode))
	b.WriteString("\n\n")
	b.WriteString("  " + m.username.View() + "\n")
	b.WriteString("  " + m.password.View() + "\n\n")

	if m.authErr != "" {
		b.WriteString(m.styles.Error.Render("  "+m.authErr) + "\n")
	}
	if m.authNotice != "" {
		b.WriteString(m.styles.Notice.Render("  "+m.authNotice) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Hint.Render("  enter: submit · tab: switch field · ctrl+r: toggle sign in/register · ctrl+c: quit"))
	return b.String()
}

func (m Model) viewChat() string {
	header := m.styles.Header.Render("CookChat") +
		m.styles.Hint.Render(fmt.Sprintf("  —  cooking with %s", m.session.Username()))

	if current, ok := m.popup.Current(); ok {
		return header + "\n\n" + m.renderRecipeModal(current.Title, current.Ingredients,
			current.Instructions, current.EstimatedTimeMinutes, current.Difficulty, current.Warnings) +
			"\n" + m.styles.Hint.Render("esc: close")
	}

	var footer string
	if m.log.Pending() {
		footer = m.spinner.View() + " thinking...\n" + m.input.View()
	} else {
		footer = m.styles.Hint.Render("enter: send · ↑/↓: select recipe · /logout · /quit") + "\n" + m.input.View()
	}

	body := m.viewport.View()
	if !m.ready {
		body = "\n  starting..."
	}

	return header + "\n" + body + "\n" + footer
}

func (m Model) renderTranscript() string {
	msgs := m.log.Messages()
	if len(msgs) == 0 {
		return m.styles.Hint.Render("\n  Tell me what ingredients you have and I'll suggest recipes.")
	}

	selectable := m.selectableIndices()
	selectedIdx := -1
	if m.selected >= 0 && m.selected < len(selectable) {
		selectedIdx = selectable[m.selected]
	}

	var b strings.Builder
	for i, msg := range msgs {
		b.WriteString(m.renderMessage(msg, i == selectedIdx))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderMessage(msg conversation.Message, selected bool) string {
	label := m.styles.AILabel.Render("Chef")
	if msg.Sender == conversation.SenderUser {
		label = m.styles.UserLabel.Render("You")
	}

	content := msg.Content
	switch {
	case selected:
		content = m.styles.Selected.Render(content)
	case msg.Recipe != nil:
		content = m.styles.RecipeTitle.Render(content)
	case strings.HasPrefix(content, "Error:"):
		content = m.styles.Error.Render(content)
	}

	return fmt.Sprintf("%s %s %s",
		m.styles.Hint.Render(msg.CreatedAt.Format("15:04")),
		label+":",
		content,
	)
}

func (m Model) renderRecipeModal(title string, ingredients, instructions []string, minutes int, difficulty string, warnings []string) string {
	var b strings.Builder

	b.WriteString(m.styles.ModalTitle.Render(title) + "\n")

	meta := make([]string, 0, 2)
	if minutes > 0 {
		meta = append(meta, fmt.Sprintf("%d min (total)", minutes))
	}
	if difficulty != "" {
		meta = append(meta, "difficulty: "+difficulty)
	}
	if len(meta) > 0 {
		b.WriteString(m.styles.Hint.Render(strings.Join(meta, " · ")) + "\n")
	}

	b.WriteString("\n" + m.styles.ModalHeader.Render("Ingredients") + "\n")
	for _, ing := range ingredients {
		b.WriteString("  • " + ing + "\n")
	}

	b.WriteString("\n" + m.styles.ModalHeader.Render("Instructions") + "\n")
	for i, step := range instructions {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, step))
	}

	if len(warnings) > 0 {
		b.WriteString("\n" + m.styles.Warning.Render("Warnings") + "\n")
		for _, w := range warnings {
			b.WriteString(m.styles.Warning.Render("  ⚠ "+w) + "\n")
		}
	}

	width := m.width - 6
	if width > 76 {
		width = 76
	}
	modal := m.styles.Modal.Width(width).Render(b.String())
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, modal)
}
