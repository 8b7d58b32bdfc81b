package imgresize

import (
	"bytes"
	"context"
	"os/exec"
	"time"
)

// ExecConverter implements interface Converter running an external command
// as "<command> <src> <dst>" (ImageMagick convert by default).
type ExecConverter struct {
	command string
	timeout time.Duration
}

// NewExecConverter returns ExecConverter. Zero timeout means the converter
// is waited for without limit.
func NewExecConverter(command string, timeout time.Duration) *ExecConverter {
	if command == "" {
		command = DefaultConvertCommand
	}
	return &ExecConverter{command: command, timeout: timeout}
}

// Convert implements interface Converter. Returns *ConversionError if the
// command could not be started or exited with non-zero status.
func (ec *ExecConverter) Convert(ctx context.Context, src, dst string) error {
	if ec.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ec.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, ec.command, src, dst)

	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		return &ConversionError{Command: ec.command, Src: src, Dst: dst, Output: out.String(), Err: err}
	}
	return nil
}
