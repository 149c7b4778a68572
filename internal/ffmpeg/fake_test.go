package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

var errKilled = errors.New("signal: killed")

// fakeLauncher starts in-memory processes driven by run. run's return value
// becomes the exit status.
type fakeLauncher struct {
	run      func(p *fakeProcess) error
	spawnErr error

	mu    sync.Mutex
	calls [][]string
	procs []*fakeProcess
}

func (l *fakeLauncher) Launch(_ context.Context, binary string, args []string, streams Streams) (Process, error) {
	l.mu.Lock()
	l.calls = append(l.calls, append([]string{binary}, args...))
	l.mu.Unlock()
	if l.spawnErr != nil {
		return nil, l.spawnErr
	}
	p := &fakeProcess{
		stderr: streams.Stderr,
		killed: make(chan struct{}),
		done:   make(chan struct{}),
	}
	if p.stderr == nil {
		p.stderr = io.Discard
	}
	p.stdinR, p.stdinW = io.Pipe()
	p.stdoutR, p.stdoutW = io.Pipe()
	l.mu.Lock()
	l.procs = append(l.procs, p)
	l.mu.Unlock()
	go func() {
		err := l.run(p)
		_ = p.stdoutW.Close()
		_ = p.stdinR.Close()
		p.mu.Lock()
		if p.exitErr == nil {
			p.exitErr = err
		}
		p.mu.Unlock()
		close(p.done)
	}()
	return p, nil
}

func (l *fakeLauncher) lastArgs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

func (l *fakeLauncher) lastProcess() *fakeProcess {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.procs[len(l.procs)-1]
}

type fakeProcess struct {
	stdinR  *io.PipeReader
	stdinW  *io.PipeWriter
	stdoutR *io.PipeReader
	stdoutW *io.PipeWriter
	stderr  io.Writer

	killOnce sync.Once
	killed   chan struct{}
	done     chan struct{}

	mu      sync.Mutex
	exitErr error
	waited  int
}

func (p *fakeProcess) Stdin() io.WriteCloser { return p.stdinW }
func (p *fakeProcess) Stdout() io.ReadCloser { return p.stdoutR }

func (p *fakeProcess) Kill() error {
	p.killOnce.Do(func() {
		p.mu.Lock()
		select {
		case <-p.done:
		default:
			p.exitErr = errKilled
		}
		p.mu.Unlock()
		close(p.killed)
		_ = p.stdoutW.Close()
		_ = p.stdinR.CloseWithError(io.ErrClosedPipe)
	})
	return nil
}

func (p *fakeProcess) Wait() error {
	<-p.done
	p.mu.Lock()
	defer p.mu.Unlock()
	p.waited++
	return p.exitErr
}

func (p *fakeProcess) wasKilled() bool {
	select {
	case <-p.killed:
		return true
	default:
		return false
	}
}

func (p *fakeProcess) waitCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.waited
}

// emit writes data to stdout, stopping quietly if the reader goes away.
func (p *fakeProcess) emit(data []byte) {
	_, _ = p.stdoutW.Write(data)
}

func (p *fakeProcess) logf(text string) {
	_, _ = io.WriteString(p.stderr, text)
}

// consume reads stdin to EOF into buf.
func (p *fakeProcess) consume(buf *bytes.Buffer) error {
	_, err := io.Copy(buf, p.stdinR)
	return err
}

// lateLauncher starts processes whose pipes finish every transfer after
// delay, even when killed meanwhile. It reproduces a deadline firing just as
// a frame completes.
type lateLauncher struct {
	delay time.Duration
	proc  *lateProcess
}

func (l *lateLauncher) Launch(context.Context, string, []string, Streams) (Process, error) {
	l.proc = &lateProcess{delay: l.delay}
	return l.proc, nil
}

type lateProcess struct {
	delay  time.Duration
	killed atomic.Bool
}

func (p *lateProcess) Stdin() io.WriteCloser { return lateWriter{p.delay} }
func (p *lateProcess) Stdout() io.ReadCloser { return io.NopCloser(lateReader{p.delay}) }

func (p *lateProcess) Kill() error {
	p.killed.Store(true)
	return nil
}

func (p *lateProcess) Wait() error {
	if p.killed.Load() {
		return errKilled
	}
	return nil
}

type lateWriter struct{ delay time.Duration }

func (w lateWriter) Write(b []byte) (int, error) {
	time.Sleep(w.delay)
	return len(b), nil
}

func (lateWriter) Close() error { return nil }

type lateReader struct{ delay time.Duration }

func (r lateReader) Read(b []byte) (int, error) {
	time.Sleep(r.delay)
	for i := range b {
		b[i] = 7
	}
	return len(b), nil
}
