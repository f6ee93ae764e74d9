package bridge

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// osascriptRunner executes scripts through the osascript binary, passing the
// script on stdin to avoid argument length limits.
type osascriptRunner struct {
	path string
}

func (r *osascriptRunner) Run(ctx context.Context, script string) (string, error) {
	cmd := exec.CommandContext(ctx, r.path, "-")
	cmd.Stdin = strings.NewReader(script)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			stderr := strings.TrimSpace(string(exitErr.Stderr))
			if isNotRunningError(stderr) {
				return "", ErrNotRunning
			}
			if stderr != "" {
				return "", fmt.Errorf("osascript: %s", stderr)
			}
		}
		return "", fmt.Errorf("osascript: %w", err)
	}
	return string(out), nil
}

// isNotRunningError detects AppleScript's "application isn't running"
// condition (error -600) in osascript stderr output.
func isNotRunningError(stderr string) bool {
	return strings.Contains(stderr, "-600") ||
		strings.Contains(stderr, "isn't running") ||
		strings.Contains(stderr, "is not running")
}
