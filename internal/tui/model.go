package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	appconvo "github.com/cookchat/cookchat/internal/application/conversation"
	"github.com/cookchat/cookchat/internal/application/popup"
	"github.com/cookchat/cookchat/internal/application/session"
	"github.com/cookchat/cookchat/internal/domain/conversation"
	"github.com/cookchat/cookchat/pkg/errors"
)

// screen identifies which top-level view is active
type screen int

const (
	screenAuth screen = iota
	screenChat
)

// authField identifies the focused input on the auth screen
type authField int

const (
	fieldUsername authField = iota
	fieldPassword
)

// Messages emitted by async commands

type initDoneMsg struct{}

type authResultMsg struct{ err error }

type registerResultMsg struct {
	confirmation string
	err          error
}

type sendDoneMsg struct{}

// Model is the main model for the interactive chat interface
type Model struct {
	session *session.Store
	log     *appconvo.Log
	popup   *popup.Controller
	logger  *zap.Logger
	styles  Styles

	screen screen

	// Auth screen state
	registerMode bool
	username     textinput.Model
	password     textinput.Model
	focused      authField
	authErr      string
	authNotice   string
	checking     bool

	// Chat screen state
	viewport viewport.Model
	input    textarea.Model
	spinner  spinner.Model
	// selected indexes into the selectable (recipe-bearing) messages
	// of the current transcript; -1 means no selection
	selected int

	width  int
	height int
	ready  bool
}

// New creates the chat interface model
func New(sess *session.Store, log *appconvo.Log, pop *popup.Controller, logger *zap.Logger) Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	input := textarea.New()
	input.Placeholder = "What's in your fridge?"
	input.SetHeight(2)
	input.ShowLineNumbers = false

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return Model{
		session:  sess,
		log:      log,
		popup:    pop,
		logger:   logger.Named("tui"),
		styles:   DefaultStyles(),
		screen:   screenAuth,
		username: username,
		password: password,
		input:    input,
		spinner:  sp,
		selected: -1,
		checking: true,
	}
}

// Init restores the persisted session before showing either screen
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.initSession())
}

func (m Model) initSession() tea.Cmd {
	return func() tea.Msg {
		// A failed identity check already downgraded the session;
		// the auth screen is the only consequence here.
		_ = m.session.Initialize(context.Background())
		return initDoneMsg{}
	}
}

func (m Model) loginCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{err: m.session.Login(context.Background(), username, password)}
	}
}

func (m Model) registerCmd(username, password string) tea.Cmd {
	return func() tea.Msg {
		confirmation, err := m.session.Register(context.Background(), username, password)
		return registerResultMsg{confirmation: confirmation, err: err}
	}
}

func (m Model) sendCmd(text string) tea.Cmd {
	return func() tea.Msg {
		// Guard rejections and handled failures both end up in the
		// transcript; the TUI only needs the refresh signal.
		_ = m.log.SendAndRespond(context.Background(), text)
		return sendDoneMsg{}
	}
}

// Update handles all interface events
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		headerHeight := 2
		footerHeight := m.input.Height() + 2
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.input.SetWidth(msg.Width - 2)
		m.refreshTranscript()
		return m, nil

	case initDoneMsg:
		m.checking = false
		if m.session.IsAuthenticated() {
			m.screen = screenChat
			m.input.Focus()
		}
		return m, nil

	case authResultMsg:
		m.checking = false
		if msg.err != nil {
			m.authErr = userFacing(msg.err)
			return m, nil
		}
		m.screen = screenChat
		m.authErr = ""
		m.authNotice = ""
		m.password.SetValue("")
		m.input.Focus()
		m.refreshTranscript()
		return m, nil

	case registerResultMsg:
		m.checking = false
		if msg.err != nil {
			m.authErr = userFacing(msg.err)
			return m, nil
		}
		m.registerMode = false
		m.authErr = ""
		m.authNotice = msg.confirmation
		return m, nil

	case sendDoneMsg:
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.screen == screenAuth {
			return m.updateAuth(msg)
		}
		return m.updateChat(msg)
	}

	return m, nil
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "tab", "shift+tab", "up", "down":
		if m.focused == fieldUsername {
			m.focused = fieldPassword
			m.username.Blur()
			m.password.Focus()
		} else {
			m.focused = fieldUsername
			m.password.Blur()
			m.username.Focus()
		}
		return m, nil

	case "ctrl+r":
		m.registerMode = !m.registerMode
		m.authErr = ""
		m.authNotice = ""
		return m, nil

	case "enter":
		username := strings.TrimSpace(m.username.Value())
		password := m.password.Value()
		if username == "" || password == "" {
			m.authErr = "Username and password are required"
			return m, nil
		}
		m.checking = true
		m.authErr = ""
		if m.registerMode {
			return m, m.registerCmd(username, password)
		}
		return m, m.loginCmd(username, password)
	}

	var cmd tea.Cmd
	if m.focused == fieldUsername {
		m.username, cmd = m.username.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateChat(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// The modal swallows everything except dismissal while open
	if m.popup.IsOpen() {
		switch msg.String() {
		case "esc", "q", "enter":
			m.popup.Close()
		case "ctrl+c":
			return m, tea.Quit
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		// Dismissal is always safe, open or not
		m.popup.Close()
		return m, nil

	case "up":
		if m.input.Value() == "" {
			m.moveSelection(-1)
			m.refreshTranscript()
			return m, nil
		}

	case "down":
		if m.input.Value() == "" {
			m.moveSelection(1)
			m.refreshTranscript()
			return m, nil
		}

	case "enter":
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			if msg := m.selectedMessage(); msg != nil {
				if !m.popup.SelectMessage(*msg) && msg.HasRecipeSet() {
					// Fall back to the title lookup within the set
					m.popup.SelectTitle(context.Background(), msg.Content, msg.RecipeSetID)
				}
			}
			return m, nil
		}

		switch text {
		case "/quit":
			return m, tea.Quit
		case "/logout":
			m.session.Logout()
			m.input.Reset()
			m.selected = -1
			m.screen = screenAuth
			m.username.Focus()
			m.password.SetValue("")
			m.refreshTranscript()
			return m, nil
		}

		if m.log.Pending() {
			return m, nil
		}
		m.input.Reset()
		m.selected = -1
		return m, m.sendCmd(text)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// selectableIndices returns transcript positions that carry a recipe
// snapshot and can be opened
func (m Model) selectableIndices() []int {
	msgs := m.log.Messages()
	out := make([]int, 0, len(msgs))
	for i, msg := range msgs {
		if msg.Recipe != nil {
			out = append(out, i)
		}
	}
	return out
}

func (m *Model) moveSelection(delta int) {
	selectable := m.selectableIndices()
	if len(selectable) == 0 {
		m.selected = -1
		return
	}
	if m.selected == -1 {
		m.selected = len(selectable) - 1
		return
	}
	m.selected += delta
	if m.selected < 0 {
		m.selected = 0
	}
	if m.selected >= len(selectable) {
		m.selected = len(selectable) - 1
	}
}

// selectedMessage resolves the selection cursor to a message
func (m Model) selectedMessage() *conversation.Message {
	selectable := m.selectableIndices()
	if m.selected < 0 || m.selected >= len(selectable) {
		return nil
	}
	msgs := m.log.Messages()
	msg := msgs[selectable[m.selected]]
	return &msg
}

func (m *Model) refreshTranscript() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

// userFacing extracts the human-readable reason for the auth screen
func userFacing(err error) string {
	return errors.ReasonOf(err)
}
