// Package notify delivers user-facing notifications. Delivery is fire
// and forget: there is no confirmation channel and callers must not
// treat it as exactly-once.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"os/exec"

	"github.com/charmbracelet/lipgloss"
)

// Notifier dispatches one human-readable notification.
type Notifier interface {
	Notify(title, body string)
}

// ConsoleNotifier renders notifications to a terminal writer.
type ConsoleNotifier struct {
	Out io.Writer
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("208"))
	bodyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func (n ConsoleNotifier) Notify(title, body string) {
	fmt.Fprintf(n.Out, "%s\n%s\n", titleStyle.Render("🔔 "+title), bodyStyle.Render(body))
}

// CommandNotifier shells out to a desktop notification command such as
// notify-send, passing title and body as the two arguments. Failures are
// logged and swallowed; the contract has no delivery confirmation.
type CommandNotifier struct {
	Command string
	Logger  *slog.Logger
}

func (n CommandNotifier) Notify(title, body string) {
	cmd := exec.Command(n.Command, title, body)
	if err := cmd.Run(); err != nil {
		n.Logger.Warn("notification command failed", "command", n.Command, "error", err)
	}
}
