package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// PromptString asks for a value with an optional default shown in brackets.
// An empty answer returns the default.
func PromptString(message, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("? %s [%s]: ", message, defaultValue)
	} else {
		fmt.Printf("? %s: ", message)
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return defaultValue
	}

	input = strings.TrimSpace(input)
	if input == "" {
		return defaultValue
	}
	return input
}

// PromptSecret asks for a value with terminal echo disabled. Falls back to
// a plain prompt when stdin is not a terminal (piped input in CI).
func PromptSecret(message string) string {
	fmt.Printf("? %s: ", message)

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		secret, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return ""
		}
		return strings.TrimSpace(string(secret))
	}

	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return ""
	}
	return strings.TrimSpace(input)
}

// IsInteractive returns true if stdin is a terminal and --yes flag is not set
func IsInteractive() bool {
	if IsYesMode() {
		return false
	}
	return term.IsTerminal(int(os.Stdin.Fd()))
}
