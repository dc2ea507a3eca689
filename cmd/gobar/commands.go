package main

import (
	"bufio"
	"context"
	stderrors "errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/gobar/internal/definition"
	"github.com/example/gobar/internal/logging"
	"github.com/example/gobar/internal/tray"
	"github.com/example/gobar/pkg/errors"
	"github.com/example/gobar/pkg/menu"
)

func (a *app) loadMenu(args []string) (*menu.Menu, error) {
	path, err := definitionPath(args)
	if err != nil {
		return nil, err
	}
	f, err := definition.Load(path, a.passphrase())
	if err != nil {
		return nil, err
	}
	return definition.Build(f, definition.WithShellTrace(logging.DebugEnabled()))
}

func (a *app) newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [definition]",
		Short: "Print a definition in the menu bar plugin protocol",
		Long: `Render loads a definition and writes the plugin protocol to stdout. Use it
as the body of a plugin script:

  #!/bin/sh
  exec gobar render ~/.config/gobar/status.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.loadMenu(args)
			if err != nil {
				return err
			}
			_, err = m.WriteTo(cmd.OutOrStdout())
			return err
		},
	}
}

func (a *app) newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [definition|-]",
		Short: "Preview a menu in the terminal",
		Long: `Show prints a menu as an indented, colored tree. With "-" it reads plugin
protocol text from stdin, so any plugin's output can be inspected:

  ./weather.5m.sh | gobar show -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var lines []string
			if len(args) == 1 && args[0] == "-" {
				var err error
				lines, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			} else {
				m, err := a.loadMenu(args)
				if err != nil {
					return err
				}
				lines = m.Render()
			}
			out := cmd.OutOrStdout()
			_, err := io.WriteString(out, newStyles(out).tree(lines))
			return err
		},
	}
}

func (a *app) newPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview [definition]",
		Short: "Show a definition in the system tray",
		Long: `Preview puts the definition in the system tray and re-reads it every
--interval and whenever an item with refresh=true is clicked. It needs a
build with cgo support on macOS and Linux.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := definitionPath(args)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runner := tray.NewRunner(tray.DefinitionLoader(path, a.passphrase()), a.refresh)
			if err := runner.Start(ctx); err != nil && !stderrors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&a.refresh, "interval", 30*time.Second, "How often to re-read the definition")
	return cmd
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimRight(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrIO, "read menu from stdin")
	}
	return lines, nil
}
