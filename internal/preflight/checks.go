package preflight

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sys/unix"

	"reel/internal/deps"
)

const versionTimeout = 10 * time.Second

// CheckBinary resolves binary on PATH and runs "<binary> -version", reporting
// the first line of its output.
func CheckBinary(ctx context.Context, name, binary string) Result {
	status := deps.Check(deps.Requirement{Name: name, Command: binary})
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}

	checkCtx, cancel := context.WithTimeout(ctx, versionTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(checkCtx, status.Path, "-version")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(checkCtx.Err(), context.DeadlineExceeded) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: -version timed out)", status.Path)}
		}
		detail := fmt.Sprintf("%s (error: -version exited with code %d)", status.Path, exitCode(err))
		if line := firstLine(stderr.Bytes()); line != "" {
			detail += ": " + line
		}
		return Result{Name: name, Detail: detail}
	}

	version := firstLine(stdout.Bytes())
	if version == "" {
		version = "version unknown"
	}
	// "ffmpeg version 6.1.1 Copyright (c) ..." keeps only the version part.
	if idx := strings.Index(version, " Copyright"); idx > 0 {
		version = version[:idx]
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", status.Path, version)}
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func firstLine(data []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}
