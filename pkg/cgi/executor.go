// Package cgi runs executables on behalf of a request and captures their
// standard output as the response body.
//
// No CGI meta-variables are set: the child inherits the server's environment
// and receives no arguments.
package cgi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/raphaelreyna/ez-httpd/pkg/log"
)

// ContentType is the media type reported for captured script output.
const ContentType = "text/html"

const waitDelay = 500 * time.Millisecond

// Executor runs scripts synchronously for the calling goroutine.
type Executor struct {
	// Dir is the working directory of the child. Empty means the server's.
	Dir string
	// Stderr receives the child's standard error. Nil discards it.
	Stderr io.Writer
	// Timeout bounds the whole run. Zero means no limit.
	Timeout time.Duration
	// Logger is used when the context carries no logger.
	Logger *slog.Logger
}

// Run executes the file at path and returns everything it wrote to standard
// output. The exit status is not inspected: a script that exits non-zero
// still produces a body. Failing to start the child or hitting the timeout
// is an error.
func (e *Executor) Run(ctx context.Context, path string) ([]byte, error) {
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, path)
	cmd.Dir = e.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = e.Stderr
	if e.Timeout > 0 {
		// Descendants holding the output pipe open must not outlive the deadline.
		cmd.WaitDelay = waitDelay
	}

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, fmt.Errorf("cgi: %s: %w", path, ctxErr)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("cgi: run %s: %w", path, err)
		}
		e.logger(ctx).Debug("cgi: script exited non-zero",
			slog.String("path", path), slog.Int("code", exitErr.ExitCode()))
	}

	return stdout.Bytes(), nil
}

func (e *Executor) logger(ctx context.Context) *slog.Logger {
	if l, ok := log.FromContext(ctx); ok {
		return l
	}
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
