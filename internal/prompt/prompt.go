// Package prompt asks the operator for the account and the number of videos.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a terminal.
var ErrNotInteractive = errors.New("input is required but stdin is not a terminal")

// ValidationError explains why a limit answer was rejected.
type ValidationError struct {
	Input string
	Max   int
	Err   error
}

func (e *ValidationError) Error() string {
	if e.Max < 1 {
		return fmt.Sprintf("invalid limit %q: nothing to choose from", e.Input)
	}
	return fmt.Sprintf("invalid limit %q: enter a number between 1 and %d", e.Input, e.Max)
}

func (e *ValidationError) Unwrap() error { return e.Err }

var (
	errNotNumber  = errors.New("not a number")
	errOutOfRange = errors.New("out of range")
)

// ValidateLimit parses input as an integer in [1, max].
func ValidateLimit(input string, max int) (int, error) {
	s := strings.TrimSpace(input)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, &ValidationError{Input: s, Max: max, Err: errNotNumber}
	}
	if n < 1 || n > max {
		return 0, &ValidationError{Input: s, Max: max, Err: errOutOfRange}
	}
	return n, nil
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Prompter reads answers line by line.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// New returns a Prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio returns a Prompter on the process terminal, or ErrNotInteractive.
func Stdio() (*Prompter, error) {
	if !IsTerminal(os.Stdin) {
		return nil, ErrNotInteractive
	}
	return New(os.Stdin, os.Stdout), nil
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// AskUsername asks for the account until a non-empty answer is given. A
// leading @ is dropped.
func (p *Prompter) AskUsername() (string, error) {
	for {
		fmt.Fprint(p.out, "👤 Enter TikTok username (without @): ")
		line, err := p.readLine()
		if err != nil {
			return "", fmt.Errorf("read username: %w", err)
		}
		if name := strings.TrimPrefix(line, "@"); name != "" {
			return name, nil
		}
		fmt.Fprintln(p.out, "❌ Username cannot be empty")
	}
}

// AskLimit asks how many of max videos to scrape until a valid answer is given.
func (p *Prompter) AskLimit(max int) (int, error) {
	if max < 1 {
		return 0, &ValidationError{Max: max, Err: errOutOfRange}
	}
	for {
		fmt.Fprintf(p.out, "🔢 Enter number of videos to scrape (max %d): ", max)
		line, err := p.readLine()
		if err != nil {
			return 0, fmt.Errorf("read limit: %w", err)
		}
		n, err := ValidateLimit(line, max)
		if err == nil {
			return n, nil
		}
		fmt.Fprintf(p.out, "❌ Invalid input. Please enter a number between 1 and %d\n", max)
	}
}
