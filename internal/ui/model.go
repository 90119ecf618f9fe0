package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/wikid-app/feed/internal/domain/feed"
	"github.com/wikid-app/feed/internal/model"
)

// Controller is the part of the feed driven by the terminal.
type Controller interface {
	Send(text string, files []model.LocalFile)
	Resend(token string)
	Edit(id model.ID, text string)
	React(id model.ID, symbol string)
	Scroll(v feed.Viewport)
	Anchored()
	Reply(id model.ID)
	CancelReply()
}

type updateMsg feed.Update

type closedMsg struct{}

// Model renders one channel and forwards input to the feed. Every feed
// update is drawn before its effect is applied, then the new position is
// reported back.
type Model struct {
	ctrl    Controller
	updates <-chan feed.Update
	keys    keyMap

	viewport viewport.Model
	input    textarea.Model
	help     help.Model

	last     feed.Update
	page     page
	selected model.ID
	editing  model.ID
	width    int
	height   int
}

func New(ctrl Controller, updates <-chan feed.Update) Model {
	input := textarea.New()
	input.Placeholder = "Message"
	input.ShowLineNumbers = false
	input.SetHeight(2)
	input.KeyMap.InsertNewline.SetEnabled(false)
	input.Focus()

	return Model{
		ctrl:     ctrl,
		updates:  updates,
		keys:     defaultKeyMap(),
		viewport: viewport.New(80, 20),
		input:    input,
		help:     help.New(),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.wait())
}

func (m Model) wait() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return closedMsg{}
		}
		return updateMsg(u)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil

	case updateMsg:
		m.apply(feed.Update(msg))
		return m, m.wait()

	case closedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.input.SetWidth(width)
	m.viewport.Width = width
	m.viewport.Height = max(height-lipgloss.Height(m.header())-m.input.Height()-2, 1)
	m.redraw()
	m.report()
}

// apply draws an update, then performs its viewport effect.
func (m *Model) apply(u feed.Update) {
	var anchorOffset int
	anchor := u.Result.Effect.AnchorID
	if u.Result.Effect.Kind == feed.EffectAnchor {
		if line, ok := m.page.lines[anchor]; ok {
			anchorOffset = line - m.viewport.YOffset
		}
	}

	m.last = u
	if _, ok := m.indexOf(m.selected); !ok {
		m.selected = ""
	}
	m.redraw()

	switch u.Result.Effect.Kind {
	case feed.EffectBottom:
		m.viewport.GotoBottom()

	case feed.EffectAnchor:
		if line, ok := m.page.lines[anchor]; ok {
			m.viewport.SetYOffset(line - anchorOffset)
		}
		m.ctrl.Anchored()
	}

	m.report()
}

func (m *Model) redraw() {
	m.page = render(m.last, m.selected, m.viewport.Width)
	offset := m.viewport.YOffset
	m.viewport.SetContent(m.page.content)
	m.viewport.SetYOffset(offset)
}

func (m *Model) report() {
	m.ctrl.Scroll(feed.Viewport{
		Top:          m.viewport.YOffset,
		Height:       m.viewport.TotalLineCount(),
		ClientHeight: m.viewport.Height,
	})
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.editing != "" {
			m.editing = ""
			m.input.Reset()
		} else if m.last.Reply != nil {
			m.ctrl.CancelReply()
		} else {
			m.selected = ""
			m.redraw()
		}
		return m, nil

	case key.Matches(msg, m.keys.Send):
		text := strings.TrimSpace(m.input.Value())
		if m.editing != "" {
			m.ctrl.Edit(m.editing, text)
			m.editing = ""
		} else if text != "" {
			m.ctrl.Send(text, nil)
		}
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Up, m.keys.Down, m.keys.PageUp, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		m.report()
		return m, cmd

	case key.Matches(msg, m.keys.Prev):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Next):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Reply):
		if m.selected != "" {
			m.ctrl.Reply(m.selected)
		}
		return m, nil

	case key.Matches(msg, m.keys.Edit):
		if i, ok := m.indexOf(m.selected); ok {
			m.editing = m.selected
			m.input.SetValue(m.last.Messages[i].Text)
		}
		return m, nil

	case key.Matches(msg, m.keys.React):
		if m.selected != "" {
			m.ctrl.React(m.selected, "👍")
		}
		return m, nil

	case key.Matches(msg, m.keys.Resend):
		if i, ok := m.indexOf(m.selected); ok && m.last.Messages[i].Status == model.Failed {
			m.ctrl.Resend(m.last.Messages[i].OptimisticUUID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// moveSelection walks the selection and keeps the selected message visible.
func (m *Model) moveSelection(delta int) {
	n := len(m.last.Messages)
	if n == 0 {
		return
	}

	i, ok := m.indexOf(m.selected)
	switch {
	case !ok:
		i = n - 1
	default:
		i = min(max(i+delta, 0), n-1)
	}

	m.selected = m.last.Messages[i].ID
	m.redraw()

	line := m.page.lines[m.selected]
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(line)
		m.report()
	}
}

func (m Model) indexOf(id model.ID) (int, bool) {
	if id == "" {
		return 0, false
	}

	for i, msg := range m.last.Messages {
		if msg.ID == id {
			return i, true
		}
	}
	return 0, false
}

func (m Model) header() string {
	title := "#" + m.last.Ref.ChannelHandle
	if m.last.Channel.Name != "" {
		title = m.last.Channel.Name
	}
	if m.last.Ref.CommunityHandle != "" {
		title = m.last.Ref.CommunityHandle + " / " + title
	}

	return headerStyle.Render(title)
}

func (m Model) status() string {
	switch {
	case m.last.Err != nil:
		return errorStyle.Render(m.last.Err.Error())
	case m.last.Loading:
		return statusStyle.Render("Loading…")
	case m.editing != "":
		return statusStyle.Render("Editing message, esc to cancel")
	case m.last.Reply != nil && m.last.Reply.Parent != nil:
		return statusStyle.Render("Replying to " + m.last.Reply.Parent.User.DisplayName() + ", esc to cancel")
	default:
		return m.help.ShortHelpView(m.keys.help())
	}
}

func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.header(),
		m.viewport.View(),
		m.status(),
		m.input.View(),
	)
}
