// Package ui provides the interactive terminal interface.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"chaintodo/internal/output"
	"chaintodo/internal/service"
	"chaintodo/internal/tasks"
)

// RunTUI starts the interactive task view.
func RunTUI(ctx context.Context, svc service.Service, backend string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := NewModel(ctx, svc, backend)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type mode int

const (
	modeBrowse mode = iota
	modeInput
	modeConfirm
)

// Model is the bubbletea model for the task view.
type Model struct {
	ctx     context.Context
	svc     service.Service
	backend string

	account    string
	tasks      []service.Task
	cursor     int
	mode       mode
	input      string
	question   string
	pending    tea.Cmd
	pendingMsg string
	processing bool
	status     string
	loadErr    error
	showHelp   bool
}

type loadedMsg struct {
	account string
	tasks   []service.Task
	err     error
}

// resultMsg carries the outcome of one mutation.
type resultMsg struct {
	tasks  []service.Task
	status string
	err    error
	reload bool
}

// NewModel creates a model bound to svc.
func NewModel(ctx context.Context, svc service.Service, backend string) *Model {
	return &Model{ctx: ctx, svc: svc, backend: backend}
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		account, err := svc.Account(ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		list, err := tasks.Load(ctx, svc)
		return loadedMsg{account: account, tasks: list, err: err}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.mode {
		case modeInput:
			return m.updateInput(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)

	case loadedMsg:
		m.loadErr = msg.err
		if msg.err == nil {
			m.account = msg.account
			m.tasks = msg.tasks
			m.clampCursor()
		}
		return m, nil

	case resultMsg:
		m.processing = false
		m.status = msg.status
		if msg.err == nil {
			m.tasks = msg.tasks
			m.clampCursor()
			return m, nil
		}
		m.status = msg.status + " " + msg.err.Error()
		if msg.reload {
			return m, m.load()
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "h", "?":
		m.showHelp = !m.showHelp
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "down", "j":
		if m.cursor < len(m.tasks)-1 {
			m.cursor++
		}
		return m, nil
	case "r", "f5":
		return m, m.load()
	}

	if m.processing {
		return m, nil
	}

	switch msg.String() {
	case "a":
		m.mode = modeInput
		m.input = ""
		return m, nil
	case " ", "x":
		if task, ok := m.selected(); ok {
			m.ask(tasks.ConfirmToggle(task.Content, task.Completed), tasks.StatusToggling, m.toggle(task))
		}
		return m, nil
	case "d":
		if task, ok := m.selected(); ok {
			m.ask(tasks.ConfirmDelete(task.Content), tasks.StatusDeleting, m.remove(task))
		}
		return m, nil
	case "K", "shift+up":
		return m, m.move(m.cursor, m.cursor-1)
	case "J", "shift+down":
		return m, m.move(m.cursor, m.cursor+1)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.mode = modeBrowse
		m.input = ""
	case tea.KeyEnter:
		content := m.input
		m.mode = modeBrowse
		m.input = ""
		if strings.TrimSpace(content) == "" {
			return m, nil
		}
		m.ask(tasks.ConfirmCreate(content), tasks.StatusCreating, m.create(content))
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	}
	return m, nil
}

func (m *Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cmd, inFlight := m.pending, m.pendingMsg
	m.mode = modeBrowse
	m.pending = nil
	m.pendingMsg = ""
	m.question = ""
	if msg.String() == "y" || msg.String() == "Y" {
		m.processing = true
		m.status = inFlight
		return m, cmd
	}
	return m, nil
}

func (m *Model) ask(question, inFlight string, cmd tea.Cmd) {
	m.mode = modeConfirm
	m.question = question
	m.pending = cmd
	m.pendingMsg = inFlight
}

func (m *Model) create(content string) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		list, err := tasks.Create(ctx, svc, content)
		if err != nil {
			return resultMsg{status: tasks.StatusCreateErr, err: err}
		}
		return resultMsg{tasks: list, status: tasks.StatusCreated}
	}
}

func (m *Model) toggle(task service.Task) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		list, err := tasks.Toggle(ctx, svc, task.ID)
		if err != nil {
			return resultMsg{status: tasks.StatusToggleErr, err: err}
		}
		return resultMsg{tasks: list, status: tasks.StatusToggled(task.Content)}
	}
}

func (m *Model) remove(task service.Task) tea.Cmd {
	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		list, err := tasks.Delete(ctx, svc, task.ID)
		if err != nil {
			return resultMsg{status: tasks.StatusDeleteErr, err: err}
		}
		return resultMsg{tasks: list, status: tasks.StatusDeleted}
	}
}

// move rearranges the local list immediately, then persists the new order.
// A failed persist reloads whatever the ledger ended up with.
func (m *Model) move(from, to int) tea.Cmd {
	if to < 0 || to >= len(m.tasks) || from == to {
		return nil
	}
	previous := m.tasks
	moved, err := tasks.Move(previous, from, to)
	if err != nil {
		return nil
	}

	m.tasks = moved
	m.cursor = to
	m.processing = true
	m.status = tasks.StatusReordering

	ctx, svc := m.ctx, m.svc
	return func() tea.Msg {
		list, err := tasks.Reorder(ctx, svc, previous, from, to)
		if err != nil {
			return resultMsg{status: tasks.StatusReorderErr, err: err, reload: true}
		}
		return resultMsg{tasks: list, status: tasks.StatusReordered}
	}
}

func (m *Model) selected() (service.Task, bool) {
	if m.cursor < 0 || m.cursor >= len(m.tasks) {
		return service.Task{}, false
	}
	return m.tasks[m.cursor], true
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.tasks) {
		m.cursor = len(m.tasks) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) View() string {
	var b strings.Builder
	writeTitle(&b)

	if m.showHelp {
		writeHelp(&b)
		return b.String()
	}

	if m.loadErr != nil {
		b.WriteString("Please connect your wallet to begin.\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		writeFooter(&b)
		return b.String()
	}

	if m.account != "" {
		b.WriteString(fmt.Sprintf("Wallet: %s (%s)\n\n", m.account, m.backend))
	}
	if m.status != "" {
		b.WriteString(m.status + "\n\n")
	}

	if len(m.tasks) == 0 {
		b.WriteString("  No tasks found. Press a to add one.\n\n")
	}
	for i, task := range m.tasks {
		pointer := " "
		if i == m.cursor {
			pointer = ">"
		}
		b.WriteString(pointer + " ")
		output.FormatTask(&b, i+1, task)
	}
	if len(m.tasks) > 0 {
		b.WriteString("\n")
	}

	switch m.mode {
	case modeInput:
		b.WriteString("New task: " + m.input + "_\n\n")
	case modeConfirm:
		b.WriteString(m.question + " [y/N]\n\n")
	}

	writeFooter(&b)
	return b.String()
}

func writeTitle(b *strings.Builder) {
	title := "Decentralized To-Do List"
	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", len(title)) + "\n\n")
}

func writeHelp(b *strings.Builder) {
	b.WriteString("Keyboard Shortcuts\n\n")
	b.WriteString("  q, ctrl+c    Quit\n")
	b.WriteString("  up/k down/j  Move cursor\n")
	b.WriteString("  a            Add a task\n")
	b.WriteString("  space, x     Toggle completion\n")
	b.WriteString("  d            Delete task\n")
	b.WriteString("  K, J         Move task up / down\n")
	b.WriteString("  r, F5        Reload from ledger\n")
	b.WriteString("  h, ?         Toggle this help screen\n\n")
}

func writeFooter(b *strings.Builder) {
	b.WriteString("Press h for help | q to quit\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
