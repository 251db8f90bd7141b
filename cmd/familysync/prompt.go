package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the command's input. Passwords are masked
// when the input is a terminal.
type prompter struct {
	sc  *bufio.Scanner
	out io.Writer
	fd  int
	tty bool
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{sc: bufio.NewScanner(in), out: out}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.fd = int(f.Fd())
		p.tty = true
	}
	return p
}

// line prints prompt and returns the next trimmed input line.
// ok is false at end of input.
func (p *prompter) line(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

// password reads a password without echo on a terminal.
func (p *prompter) password(prompt string) (string, error) {
	if !p.tty {
		s, ok := p.line(prompt)
		if !ok {
			return "", io.EOF
		}
		return s, nil
	}

	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(b), nil
}

// confirm asks a yes/no question. Anything but y or yes is no.
func (p *prompter) confirm(prompt string) bool {
	answer, ok := p.line(prompt + " [y/N]: ")
	if !ok {
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
