package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/rcscout/internal/ui/theme"
)

// field is a single-line input rendered by bubbletea. Enter submits,
// ctrl+c and esc abort.
type field struct {
	label   string
	input   textinput.Model
	done    bool
	aborted bool
}

func newField(label string) field {
	ti := textinput.New()
	ti.Prompt = ""
	ti.Focus()
	return field{label: label, input: ti}
}

func (f field) Init() tea.Cmd {
	return f.input.Focus()
}

func (f field) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			f.done = true
			return f, tea.Quit
		case "ctrl+c", "esc":
			f.aborted = true
			return f, tea.Quit
		}
	}

	var cmd tea.Cmd
	f.input, cmd = f.input.Update(msg)
	return f, cmd
}

func (f field) View() tea.View {
	v := tea.NewView("")
	if f.done || f.aborted {
		v.SetContent(theme.Title.Render(f.label) + f.input.Value() + "\n")
		return v
	}
	v.SetContent(theme.Title.Render(f.label) + f.input.View())
	return v
}

// Value returns the text typed so far.
func (f field) Value() string {
	return f.input.Value()
}

// readField runs a one-shot bubbletea program for a single answer.
func readField(ctx context.Context, in io.Reader, out io.Writer, label string) (string, error) {
	prog := tea.NewProgram(newField(label),
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	final, err := prog.Run()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("prompt: run input: %w", err)
	}
	f, ok := final.(field)
	if !ok || !f.done {
		return "", ErrInputClosed
	}
	return f.Value(), nil
}
