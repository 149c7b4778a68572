package ffmpeg

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"
)

// Streams selects which standard pipes a launched process exposes. Stderr,
// when set, receives everything the process writes to its diagnostic stream.
type Streams struct {
	Stdin  bool
	Stdout bool
	Stderr io.Writer
}

// Process is a running ffmpeg child.
type Process interface {
	// Stdin is nil unless Streams.Stdin was requested.
	Stdin() io.WriteCloser
	// Stdout is nil unless Streams.Stdout was requested.
	Stdout() io.ReadCloser
	Kill() error
	// Wait blocks until the process exits and its stderr has been copied.
	Wait() error
}

// Launcher abstracts process creation for testability.
type Launcher interface {
	Launch(ctx context.Context, binary string, args []string, streams Streams) (Process, error)
}

// waitDelay bounds how long Wait keeps copying stderr after the process
// exited, in case a grandchild inherited the pipe.
const waitDelay = 5 * time.Second

// ExecLauncher starts real processes through os/exec.
type ExecLauncher struct{}

func (ExecLauncher) Launch(ctx context.Context, binary string, args []string, streams Streams) (Process, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	cmd.WaitDelay = waitDelay
	cmd.Stderr = streams.Stderr

	proc := &execProcess{cmd: cmd}
	if streams.Stdin {
		stdin, err := cmd.StdinPipe()
		if err != nil {
			return nil, fmt.Errorf("stdin pipe: %w", err)
		}
		proc.stdin = stdin
	}
	if streams.Stdout {
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, fmt.Errorf("stdout pipe: %w", err)
		}
		proc.stdout = stdout
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("start command: %w", err)
	}
	return proc, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
}

func (p *execProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *execProcess) Stdout() io.ReadCloser { return p.stdout }

func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}
