package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"tab/internal/daemonctl"
	"tab/internal/deps"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusKinds = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 14
)

// statusPrinter writes aligned "label: [KIND] message" lines, colored when
// the output is a terminal.
type statusPrinter struct {
	out   io.Writer
	color bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	color := false
	if file, ok := out.(*os.File); ok {
		fd := file.Fd()
		color = isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
	return &statusPrinter{out: out, color: color}
}

func (p *statusPrinter) paint(kind statusKind, text string) string {
	if !p.color {
		return text
	}
	return statusKinds[kind].color + text + ansiReset
}

func (p *statusPrinter) header(title string) {
	line := "== " + strings.TrimSpace(title) + " =="
	fmt.Fprintln(p.out, p.paint(statusInfo, line))
	fmt.Fprintln(p.out, p.paint(statusInfo, strings.Repeat("-", len(line))))
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(p.out, p.paint(kind, formatStatusLine(label, kind, message)))
}

func formatStatusLine(label string, kind statusKind, message string) string {
	text := "[" + statusKinds[kind].label + "]"
	if message != "" {
		text += " " + message
	}
	return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether a daemon is running",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			status, err := daemonctl.Inspect(cfg.Daemon.DaemonFile, nil)
			if err != nil {
				return err
			}

			p := newStatusPrinter(cmd.OutOrStdout())
			p.header("Daemon")
			kind, message := daemonStatusLine(status)
			p.line("Daemon", kind, message)
			if status.PID > 0 {
				p.line("PID", statusInfo, strconv.Itoa(status.PID))
			}
			if status.Port > 0 {
				p.line("Address", statusInfo, fmt.Sprintf("127.0.0.1:%d", status.Port))
			}
			p.line("Daemon file", statusInfo, status.Path)
			binary := deps.Check(deps.DaemonRequirement(cfg.Daemon.Executable))
			kind, message = dependencyLine(binary)
			p.line(binary.Name, kind, message)
			p.line("Log file", statusInfo, cfg.LogFilePath())
			if ctx.configPath != "" {
				p.line("Config", statusInfo, ctx.configPath)
			}
			return nil
		},
	}
}

func daemonStatusLine(status daemonctl.Status) (statusKind, string) {
	switch status.State {
	case daemonctl.DaemonRunning:
		return statusOK, "Running"
	case daemonctl.DaemonStale:
		return statusWarn, "Not running (stale daemon file)"
	case daemonctl.DaemonMalformed:
		return statusError, "Unreadable daemon file: " + status.Detail
	default:
		return statusError, "Not running"
	}
}

func dependencyLine(status deps.Status) (statusKind, string) {
	if status.Available {
		return statusOK, status.Path
	}
	return statusError, status.Detail
}
