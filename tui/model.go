// Package tui is the interactive terminal front-end: a scrolling transcript
// above a single-line question box. Lines starting with "/" are commands:
//
//	/reset          clear the conversation
//	/window N       keep the last N exchanges in context
//	/model ID       switch model (/models lists the catalog)
//	/system TEXT    set the system prompt (empty clears it)
//	/quit           exit
package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tailored-agentic-units/groqchat/agent"
	"github.com/tailored-agentic-units/groqchat/chat"
	"github.com/tailored-agentic-units/groqchat/core/protocol"
	"github.com/tailored-agentic-units/groqchat/window"
)

const greeting = "Hello! I'm your friendly Groq chatbot. I can help answer your questions, " +
	"provide information, or just chat. I'm also super fast! Let's start our conversation!"

const busyNotice = "Still waiting for the previous reply."

// Chat is the session surface the screen drives. *chat.Session satisfies it.
type Chat interface {
	Ask(ctx context.Context, input string) (string, error)
	Reset() error
	SetWindowSize(k int) error
	SetSystemPrompt(text string) error
	SetModel(id string) error
	Transcript() []protocol.Exchange
	Model() string
	WindowSize() int
	Configured() bool
}

// replyMsg carries the outcome of an Ask back into Update.
type replyMsg struct {
	input string
	reply string
	err   error
}

// Model is the bubbletea model for the chat screen.
type Model struct {
	chat     Chat
	ctx      context.Context
	keys     KeyMap
	input    textinput.Model
	viewport viewport.Model

	width    int
	height   int
	awaiting bool
	notice   string
	isError  bool
}

// New creates the chat screen. ctx bounds every model call started from it.
func New(ctx context.Context, c Chat) Model {
	input := textinput.New()
	input.Placeholder = "Ask a question:"
	input.Prompt = "> "
	input.CharLimit = 4000
	input.Focus()

	m := Model{
		chat:     c,
		ctx:      ctx,
		keys:     DefaultKeyMap,
		input:    input,
		viewport: viewport.New(80, 20),
	}
	if !c.Configured() {
		m.setNotice("Please add your Groq API key to continue (GROQ_API_KEY or --api-key).", true)
	}
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case replyMsg:
		return m.handleReply(msg), nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Submit):
			return m.submit()
		case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Chat with Groq!"))
	b.WriteString("  ")
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("model %s · memory %d", m.chat.Model(), m.chat.WindowSize())))
	b.WriteString("\n\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	return b.String()
}

// Awaiting reports whether a reply is outstanding.
func (m Model) Awaiting() bool {
	return m.awaiting
}

// Input returns the text in the question box.
func (m Model) Input() string {
	return m.input.Value()
}

// Notice returns the current status message.
func (m Model) Notice() string {
	return m.notice
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	if strings.HasPrefix(strings.TrimSpace(text), "/") {
		m.input.Reset()
		return m.command(strings.TrimSpace(text))
	}

	// The question stays in the box until the pending reply lands.
	if m.awaiting {
		m.setNotice(busyNotice, true)
		return m, nil
	}
	m.input.Reset()

	m.awaiting = true
	m.setNotice("", false)
	return m, m.ask(text)
}

func (m Model) ask(input string) tea.Cmd {
	c, ctx := m.chat, m.ctx
	return func() tea.Msg {
		reply, err := c.Ask(ctx, input)
		return replyMsg{input: input, reply: reply, err: err}
	}
}

func (m Model) handleReply(msg replyMsg) Model {
	if errors.Is(msg.err, chat.ErrBusy) {
		m.setNotice(busyNotice, true)
		return m
	}

	m.awaiting = false
	if msg.err != nil {
		m.setNotice(describe(msg.err), true)
		return m
	}

	m.setNotice("", false)
	m.refresh()
	return m
}

func (m Model) command(line string) (tea.Model, tea.Cmd) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	var err error
	switch name {
	case "/quit", "/exit":
		return m, tea.Quit
	case "/reset":
		if err = m.chat.Reset(); err == nil {
			m.setNotice("Conversation cleared.", false)
		}
	case "/window":
		var k int
		k, err = strconv.Atoi(arg)
		if err != nil {
			err = fmt.Errorf("usage: /window N (%d-%d)", window.MinSize, window.MaxSize)
		} else if k > window.MaxSize {
			err = fmt.Errorf("memory length is limited to %d exchanges", window.MaxSize)
		} else if err = m.chat.SetWindowSize(k); err == nil {
			m.setNotice(fmt.Sprintf("Remembering the last %d exchanges.", k), false)
		}
	case "/model":
		if err = m.chat.SetModel(arg); err == nil {
			m.setNotice("Model set to "+arg+".", false)
		}
	case "/models":
		m.setNotice("Models: "+strings.Join(agent.Models(), ", "), false)
	case "/system":
		if err = m.chat.SetSystemPrompt(arg); err == nil {
			if arg == "" {
				m.setNotice("System prompt cleared.", false)
			} else {
				m.setNotice("System prompt set.", false)
			}
		}
	default:
		err = fmt.Errorf("unknown command %s", name)
	}

	if err != nil {
		m.setNotice(describe(err), true)
	}
	m.refresh()
	return m, nil
}

func (m *Model) setNotice(text string, isError bool) {
	m.notice = text
	m.isError = isError
}

func (m *Model) resize(width, height int) {
	m.width, m.height = width, height
	m.input.Width = max(width-len(m.input.Prompt)-1, 10)
	m.viewport.Width = width
	// title, blank line, input and status lines
	m.viewport.Height = max(height-5, 3)
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.render())
	m.viewport.GotoBottom()
}

func (m *Model) render() string {
	exchanges := m.chat.Transcript()
	if len(exchanges) == 0 {
		return subtitleStyle.Render(greeting)
	}

	wrap := lipgloss.NewStyle()
	if m.viewport.Width > 0 {
		wrap = wrap.Width(m.viewport.Width)
	}

	var b strings.Builder
	for i, e := range exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(wrap.Render(humanStyle.Render("You: ") + e.Human))
		b.WriteString("\n")
		b.WriteString(wrap.Render(aiStyle.Render("Chatbot: ") + e.AI))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch {
	case m.notice != "" && m.isError:
		return errorStyle.Render(m.notice)
	case m.awaiting:
		return noticeStyle.Render("Thinking…")
	case m.notice != "":
		return noticeStyle.Render(m.notice)
	default:
		return helpStyle.Render("enter send · /reset · /window N · /model ID · /system TEXT · esc quit")
	}
}

func describe(err error) string {
	var rerr *chat.RemoteCallError
	switch {
	case errors.Is(err, chat.ErrNotConfigured):
		return "Please add your Groq API key to continue."
	case errors.Is(err, chat.ErrInvalidInput):
		return "Type a question first."
	case errors.As(err, &rerr):
		return "The model call failed: " + rerr.Diagnostic
	default:
		return err.Error()
	}
}
