// Package tui provides the interactive question-answering interface.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/askdocs-cli/internal/core/domain"
	"github.com/custodia-labs/askdocs-cli/internal/core/ports/driving"
)

// answerMsg carries a completed answer record back into the update loop.
type answerMsg struct {
	record domain.AnswerRecord
}

// errMsg carries a structural failure (empty index, bad options).
type errMsg struct {
	err error
}

// App is the question-answering TUI model.
type App struct {
	ctx      context.Context
	answerer driving.Answerer

	input   textinput.Model
	spinner spinner.Model
	styles  Styles

	asking bool
	record *domain.AnswerRecord
	err    error

	width  int
	height int
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the TUI over the given answer service.
func NewApp(ctx context.Context, answerer driving.Answerer) *App {
	input := textinput.New()
	input.Placeholder = "Ask a question about your documents"
	input.Focus()
	input.CharLimit = 500
	input.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	return &App{
		ctx:      ctx,
		answerer: answerer,
		input:    input,
		spinner:  spin,
		styles:   DefaultStyles(),
		width:    80,
		height:   24,
	}
}

// Init starts the input cursor blink.
func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages following the Elm architecture.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case answerMsg:
		a.asking = false
		a.record = &msg.record
		a.err = nil
		return a, nil

	case errMsg:
		a.asking = false
		a.err = msg.err
		return a, nil

	case spinner.TickMsg:
		if !a.asking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return a, tea.Quit

	case tea.KeyEsc:
		a.record = nil
		a.err = nil
		return a, nil

	case tea.KeyEnter:
		question := strings.TrimSpace(a.input.Value())
		if question == "" || a.asking {
			return a, nil
		}
		a.asking = true
		a.record = nil
		a.err = nil
		return a, tea.Batch(a.spinner.Tick, a.ask(question))
	}

	if msg.String() == "q" && a.input.Value() == "" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// ask runs the answer pipeline off the update loop.
func (a *App) ask(question string) tea.Cmd {
	return func() tea.Msg {
		record, err := a.answerer.Answer(a.ctx, question)
		if err != nil {
			return errMsg{err: err}
		}
		return answerMsg{record: record}
	}
}

// View renders the current state.
func (a *App) View() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("askdocs"))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Prompt.Render(a.input.View()))
	b.WriteString("\n\n")

	switch {
	case a.asking:
		b.WriteString(a.spinner.View())
		b.WriteString(" Thinking...")
	case a.err != nil:
		b.WriteString(a.styles.Error.Render("Error: " + a.err.Error()))
	case a.record != nil:
		b.WriteString(a.renderRecord())
	}

	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("enter: ask • esc: clear • ctrl+c: quit"))
	return b.String()
}

func (a *App) renderRecord() string {
	width := a.width - 4
	if width > 100 {
		width = 100
	}

	if !a.record.Answered() {
		return a.styles.Error.Render("No answer produced: " + a.record.Error)
	}

	answer := a.styles.Answer.Width(width).Render(*a.record.Answer)
	sources := a.styles.Sources.Render("Sources: " + strings.Join(a.record.SourceChunkIDs, ", "))
	return lipgloss.JoinVertical(lipgloss.Left, answer, sources)
}
