// Package prompt is the human-input channel of an annotation session.
//
// Every call blocks until the operator responds or the context is
// cancelled. Invalid answers are reported and asked again. Plain mode
// reads lines from the input stream; styled mode renders each question as
// a bubbletea text field.
package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/abhisek/rcscout/internal/logging"
	"github.com/abhisek/rcscout/internal/ui/theme"
)

// ErrInputClosed is returned when the input stream ends, or the operator
// aborts a styled field, before a valid response was read.
var ErrInputClosed = errors.New("prompt: input closed")

const ruleWidth = 52

// Prompter reads operator responses from an input stream and renders
// prompts on an output stream.
type Prompter struct {
	in     io.Reader
	out    io.Writer
	log    *slog.Logger
	styled bool

	// Plain mode reads in a goroutine so a blocked read never holds up
	// cancellation.
	readOnce sync.Once
	lines    chan string
	readErr  error
}

// Option configures a Prompter.
type Option func(*Prompter)

// WithStyle enables lipgloss styling and screen clearing. Off by default
// so scripted sessions produce plain text.
func WithStyle(enabled bool) Option {
	return func(p *Prompter) { p.styled = enabled }
}

// New creates a Prompter reading from in and writing to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		in:  in,
		out: out,
		log: logging.New("prompt"),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Decide asks for an accept/reject decision. "A"/"a" accepts and
// "R"/"r" rejects; anything else is logged and asked again.
func (p *Prompter) Decide(ctx context.Context, message string) (bool, error) {
	for {
		line, err := p.ask(ctx, message)
		if err != nil {
			return false, err
		}
		switch line {
		case "a", "A":
			return true, nil
		case "r", "R":
			return false, nil
		default:
			p.log.Info("invalid input", "input", line)
			fmt.Fprintln(p.out, "Invalid input, only A/R accepted.")
		}
	}
}

// Number asks for an integer. Non-numeric input falls back to def.
func (p *Prompter) Number(ctx context.Context, message string, def int) (int, error) {
	line, err := p.ask(ctx, message)
	if err != nil {
		return def, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(line))
	if convErr != nil {
		p.log.Info("input is not a number, using default", "input", line, "default", def)
		return def, nil
	}
	return n, nil
}

// Line asks for free text.
func (p *Prompter) Line(ctx context.Context, message string) (string, error) {
	line, err := p.ask(ctx, message)
	return strings.TrimSpace(line), err
}

// Pause waits for the operator to press Enter.
func (p *Prompter) Pause(ctx context.Context, message string) error {
	_, err := p.ask(ctx, message)
	return err
}

func (p *Prompter) ask(ctx context.Context, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if p.styled {
		return readField(ctx, p.in, p.out, message)
	}

	fmt.Fprint(p.out, message)
	p.readOnce.Do(p.startReader)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-p.lines:
		if ok {
			return line, nil
		}
		if errors.Is(p.readErr, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("prompt: read input: %w", p.readErr)
	}
}

func (p *Prompter) startReader() {
	p.lines = make(chan string)
	go func() {
		defer close(p.lines)
		r := bufio.NewReader(p.in)
		for {
			line, err := r.ReadString('\n')
			if line != "" {
				p.lines <- strings.TrimRight(line, "\r\n")
			}
			if err != nil {
				p.readErr = err
				return
			}
		}
	}()
}

// Clear starts a new screen.
func (p *Prompter) Clear() {
	if p.styled {
		fmt.Fprint(p.out, "\x1b[2J\x1b[0;0H")
	}
	p.Rule()
}

// Rule prints a separator line.
func (p *Prompter) Rule() {
	p.print(theme.Rule, strings.Repeat("=", ruleWidth))
}

// Divider prints a light separator line.
func (p *Prompter) Divider() {
	p.print(theme.Rule, strings.Repeat("-", ruleWidth))
}

// Title prints a heading line.
func (p *Prompter) Title(text string) {
	p.print(theme.Title, text)
}

// Section prints a labeled block of body text.
func (p *Prompter) Section(label, body string) {
	p.print(theme.Section, label)
	if p.styled {
		fmt.Fprintln(p.out, theme.Card.Render(theme.Body.Render(body)))
		return
	}
	fmt.Fprintln(p.out, body)
}

// Hint prints a dimmed line.
func (p *Prompter) Hint(text string) {
	p.print(theme.Hint, text)
}

// Verdict prints a success or failure line.
func (p *Prompter) Verdict(good bool, text string) {
	if good {
		p.print(theme.Correct, text)
		return
	}
	p.print(theme.Incorrect, text)
}

// Printf writes unstyled text.
func (p *Prompter) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

type renderer interface {
	Render(strs ...string) string
}

func (p *Prompter) print(style renderer, text string) {
	if p.styled {
		fmt.Fprintln(p.out, style.Render(text))
		return
	}
	fmt.Fprintln(p.out, text)
}
