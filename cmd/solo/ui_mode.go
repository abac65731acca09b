package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode selects how generate reports progress: the full-screen progress
// view, plain prints, or whichever suits the output stream.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

// readUIMode parses the --ui flag. The empty string counts as auto so the
// flag can stay unset.
func readUIMode(value string) (uiMode, error) {
	normalized := strings.TrimSpace(strings.ToLower(value))
	switch normalized {
	case "", string(uiModeAuto):
		return uiModeAuto, nil
	case string(uiModeOn):
		return uiModeOn, nil
	case string(uiModeOff):
		return uiModeOff, nil
	}
	return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
}

// shouldUseTUI resolves auto against the output stream: the progress view
// only makes sense on a terminal.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	}
	return isTerminal(os.Stdout)
}
