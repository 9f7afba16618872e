package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	stdin        io.Reader = os.Stdin
	promptOut    io.Writer = os.Stderr
)

// promptText prints prompt and reads one trimmed line. A partial line before
// EOF is returned as is.
func promptText(reader *bufio.Reader, prompt string) (string, error) {
	if _, err := fmt.Fprint(promptOut, prompt+": "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo.
func promptPassword(prompt string) (string, error) {
	if _, err := fmt.Fprint(promptOut, prompt+": "); err != nil {
		return "", err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(promptOut)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

// valueOrPrompt returns value when set, otherwise asks for it.
func valueOrPrompt(reader *bufio.Reader, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	v, err := promptText(reader, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", strings.ToLower(prompt), err)
	}
	if v == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return v, nil
}

func passwordOrPrompt(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := promptPassword(prompt)
	if err != nil {
		return "", err
	}
	if pw == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return pw, nil
}
