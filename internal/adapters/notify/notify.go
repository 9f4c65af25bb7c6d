// Package notify implements the OS-level notification port.
package notify

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/example/hearth/internal/ports/secondary"
)

// Desktop delivers notifications through notify-send when enabled and
// available, and falls back to writing the message to out otherwise. The
// enabled flag mirrors the user's notification permission: when it is off
// nothing is displayed, but the action still reports its message.
type Desktop struct {
	enabled bool
	out     io.Writer
}

// NewDesktop creates a Desktop notifier writing fallbacks to out.
func NewDesktop(enabled bool, out io.Writer) *Desktop {
	return &Desktop{enabled: enabled, out: out}
}

// Notify shows one notification.
func (d *Desktop) Notify(ctx context.Context, title, message string) error {
	if !d.enabled {
		return nil
	}

	if path, err := exec.LookPath("notify-send"); err == nil {
		return exec.CommandContext(ctx, path, title, message).Run()
	}

	_, err := fmt.Fprintf(d.out, "[%s] %s\n", title, message)
	return err
}

// Ensure Desktop implements the interface.
var _ secondary.Notifier = (*Desktop)(nil)
