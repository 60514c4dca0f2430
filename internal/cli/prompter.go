package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrEmptyInput is returned when a required answer was left blank.
var ErrEmptyInput = errors.New("input required")

// Prompter asks the user for values on a terminal or any line-based reader.
type Prompter struct {
	writer io.Writer
	reader *LineReader
	// terminal is set when input comes from a TTY, so passwords can be read
	// without echo.
	terminal *os.File
}

// NewPrompter creates a prompter reading from reader and writing prompts to writer.
func NewPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	p := &Prompter{
		reader: NewLineReader(reader),
		writer: writer,
	}
	if f, ok := reader.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.terminal = f
	}
	return p
}

// Ask prompts for a line of input. An empty answer yields def.
func (p *Prompter) Ask(ctx context.Context, label, def string) (string, error) {
	prompt := label
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", label, def)
	}
	if _, err := fmt.Fprint(p.writer, FormatPrompt(prompt)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("input terminated")
		}
		return "", err
	}
	if line == "" {
		return def, nil
	}
	return line, nil
}

// AskRequired prompts until a non-blank answer is given.
func (p *Prompter) AskRequired(ctx context.Context, label string) (string, error) {
	for {
		answer, err := p.Ask(ctx, label, "")
		if err != nil {
			return "", err
		}
		if answer != "" {
			return answer, nil
		}
		if _, err := fmt.Fprintln(p.writer, FormatError("A value is required.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// Password prompts for a secret. On a terminal the input is not echoed.
func (p *Prompter) Password(ctx context.Context, label string) (string, error) {
	if _, err := fmt.Fprint(p.writer, FormatPrompt(label)); err != nil {
		return "", fmt.Errorf("failed to write prompt: %w", err)
	}

	if p.terminal != nil {
		secret, err := term.ReadPassword(int(p.terminal.Fd()))
		// ReadPassword swallows the newline.
		_, _ = fmt.Fprintln(p.writer)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if len(secret) == 0 {
			return "", ErrEmptyInput
		}
		return string(secret), nil
	}

	line, err := p.reader.ReadLine(ctx)
	if err != nil {
		return "", err
	}
	if line == "" {
		return "", ErrEmptyInput
	}
	return line, nil
}

// Confirm asks a yes/no question.
func (p *Prompter) Confirm(ctx context.Context, label string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		answer, err := p.Ask(ctx, fmt.Sprintf("%s (%s)", label, hint), "")
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return def, nil
		case "y", "yes", "s", "si", "sí":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Please answer y or n.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}

// Choose lists options and returns the index of the one picked.
func (p *Prompter) Choose(ctx context.Context, label string, options []string) (int, error) {
	if len(options) == 0 {
		return 0, fmt.Errorf("no options to choose from")
	}

	for i, opt := range options {
		if _, err := fmt.Fprintf(p.writer, "  %s %s\n", SubtleStyle.Render(fmt.Sprintf("%2d)", i+1)), opt); err != nil {
			return 0, fmt.Errorf("failed to write option: %w", err)
		}
	}

	for {
		answer, err := p.Ask(ctx, label, "")
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(answer)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatError("Invalid choice. Please try again.")); err != nil {
			slog.Warn("Failed to write error message", "error", err)
		}
	}
}
