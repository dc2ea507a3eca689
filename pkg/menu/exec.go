package menu

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/example/gobar/internal/logging"
)

// Command returns the item's shell command bound to ctx, running in the
// item's working directory when one is set.
func (s *ShellItem) Command(ctx context.Context) *exec.Cmd {
	argv := s.attrs.ShellCommand()
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if dir := s.attrs.Dir(); dir != "" {
		cmd.Dir = dir
	}
	return cmd
}

// Output runs the item's command and returns its trimmed standard output.
// Plugins use it to compute menu content from the same command a click runs.
func (s *ShellItem) Output(ctx context.Context) (string, error) {
	cmd := s.Command(ctx)
	logging.LogCommand(cmd.Path, cmd.Args[1:], cmd.Dir)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("run %q: %w", strings.Join(cmd.Args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}
