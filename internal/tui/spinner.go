package tui

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// doneMsg signals that the wrapped work has returned.
type doneMsg struct{}

// spinnerModel shows a spinner with elapsed time until doneMsg arrives.
type spinnerModel struct {
	spinner    spinner.Model
	label      string
	started    time.Time
	cancel     context.CancelFunc
	cancelling bool
	done       bool
}

func newSpinnerModel(label string, cancel context.CancelFunc) spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = StyleSpinner
	return spinnerModel{
		spinner: s,
		label:   label,
		started: time.Now(),
		cancel:  cancel,
	}
}

// Init implements tea.Model.
func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model. A quit key cancels the work but keeps the
// program alive until the work has actually returned.
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) && !m.cancelling {
			m.cancelling = true
			if m.cancel != nil {
				m.cancel()
			}
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	if m.cancelling {
		return fmt.Sprintf("%s %s\n", m.spinner.View(), StyleError.Render("cancelling..."))
	}
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s %s %s\n", m.spinner.View(), m.label,
		StyleDim.Render(fmt.Sprintf("%s  (%s to cancel)", elapsed, keys.Quit.Help().Key)))
}

// Spin runs work and returns its result. When out is a terminal a spinner
// is drawn on it while work runs and a quit key cancels work's context;
// otherwise work runs with no output at all.
func Spin[T any](ctx context.Context, out *os.File, label string, work func(context.Context) T) T {
	if out == nil || !IsTerminal(out) {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	opts := []tea.ProgramOption{tea.WithOutput(out)}
	if !IsTerminal(os.Stdin) {
		opts = append(opts, tea.WithInput(nil))
	}
	p := tea.NewProgram(newSpinnerModel(label, cancel), opts...)

	results := make(chan T, 1)
	go func() {
		results <- work(ctx)
		p.Send(doneMsg{})
	}()

	if _, err := p.Run(); err != nil {
		// Interrupted or the terminal went away; stop the work and wait for it.
		cancel()
	}
	return <-results
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
