// Copyright 2025 cloudeng llc. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

// Package launcher provides support for running the agvis application
// under an external, production quality, http server process such as
// gunicorn. The server process is run in the foreground, its output is
// forwarded and scanned for the URL it is listening on, and its exit
// status is classified so that a user facing message can be reported.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strconv"
	"time"

	"cloudeng.io/logging/ctxlog"
	"cloudeng.io/os/executil"
)

const (
	DefaultBinary    = "gunicorn"
	DefaultHost      = "localhost"
	DefaultPort      = 8810
	DefaultWorkers   = 1
	DefaultStaticDir = "agvis/static"
	// DefaultWaitDelay is how long the server process is given to exit
	// after being interrupted before it is killed.
	DefaultWaitDelay = 10 * time.Second
)

// Config represents the configuration of the server process.
type Config struct {
	Binary    string   `yaml:"binary" cmd:"name of, or path to, the http server binary"`
	Host      string   `yaml:"host" cmd:"host to bind to"`
	Port      int      `yaml:"port" cmd:"port to bind to"`
	Workers   int      `yaml:"workers" cmd:"number of worker processes"`
	StaticDir string   `yaml:"static_dir" cmd:"location of the application's static files, informational only"`
	Dir       string   `yaml:"dir" cmd:"working directory for the server process"`
	Env       []string `yaml:"env" cmd:"additional environment variables, in key=value form, for the server process"`
}

func (c Config) withDefaults() Config {
	if len(c.Binary) == 0 {
		c.Binary = DefaultBinary
	}
	if len(c.Host) == 0 {
		c.Host = DefaultHost
	}
	if c.Port == 0 {
		c.Port = DefaultPort
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if len(c.StaticDir) == 0 {
		c.StaticDir = DefaultStaticDir
	}
	return c
}

// Option represents an option to New.
type Option func(*Launcher)

// WithMessages sets the writer that user facing messages are written to,
// the default is os.Stdout.
func WithMessages(w io.Writer) Option {
	return func(l *Launcher) {
		l.messages = w
	}
}

// WithOutput sets the writer that the server process's stdout and
// stderr are forwarded to, the default is os.Stderr.
func WithOutput(w io.Writer) Option {
	return func(l *Launcher) {
		l.output = w
	}
}

// WithWaitDelay sets the delay between interrupting the server process
// and killing it.
func WithWaitDelay(d time.Duration) Option {
	return func(l *Launcher) {
		l.waitDelay = d
	}
}

// WithURLExtractor sets the function used to find the URL that the
// server process reports it is listening on, the default is
// NewGunicornURLExtractor(nil).
func WithURLExtractor(e URLExtractor) Option {
	return func(l *Launcher) {
		l.extractor = e
	}
}

// Launcher runs an http server process for the agvis application.
type Launcher struct {
	cfg       Config
	messages  io.Writer
	output    io.Writer
	waitDelay time.Duration
	extractor URLExtractor
}

// New returns a new Launcher, any unset fields in cfg are replaced
// with their defaults.
func New(cfg Config, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:       cfg.withDefaults(),
		messages:  os.Stdout,
		output:    os.Stderr,
		waitDelay: DefaultWaitDelay,
		extractor: NewGunicornURLExtractor(nil),
	}
	for _, fn := range opts {
		fn(l)
	}
	return l
}

// Config returns the configuration in use, including defaults.
func (l *Launcher) Config() Config {
	return l.cfg
}

// Addr returns the host:port that the server process is asked to bind to.
func (l *Launcher) Addr() string {
	return net.JoinHostPort(l.cfg.Host, strconv.Itoa(l.cfg.Port))
}

// URL returns the URL that the application will be served at.
func (l *Launcher) URL() string {
	return "http://" + l.Addr()
}

// Command returns the exec.Cmd used to run the server process for
// the specified application module, ie:
//
//	gunicorn -b <host>:<port> -w <workers> <module>
//
// The command is canceled by sending it an interrupt when ctx is done
// and is killed if it has not exited within the configured wait delay.
func (l *Launcher) Command(ctx context.Context, module string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, l.cfg.Binary,
		"-b", l.Addr(),
		"-w", strconv.Itoa(l.cfg.Workers),
		module)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = l.waitDelay
	cmd.Dir = l.cfg.Dir
	if len(l.cfg.Env) > 0 {
		cmd.Env = append(os.Environ(), l.cfg.Env...)
	}
	return cmd
}

func (l *Launcher) announce() {
	fmt.Fprintf(l.messages, "AGVis will be served at %v. Static files are located at %q\n", l.URL(), l.cfg.StaticDir)
	fmt.Fprintln(l.messages, "Open your web browser and navigate to the URL to access the application.")
	fmt.Fprintln(l.messages, "\nStarting AGVis... Press Ctrl+C to stop.")
}

// Run runs the server process for the specified module and blocks until
// it exits or ctx is canceled. Canceling ctx interrupts the server process,
// which is how an operator's Ctrl+C is delivered, and Run then returns
// ErrInterrupted. If the server process exits with a non-zero status a
// *ChildProcessError is returned and all other failures are returned as an
// *UnexpectedError.
func (l *Launcher) Run(ctx context.Context, module string) error {
	if len(module) == 0 {
		return &UnexpectedError{Err: errors.New("no application module specified")}
	}
	l.announce()
	cmd := l.Command(ctx, module)

	ch := make(chan []byte, 1)
	filter := executil.NewLineFilter(l.output, ch, gunicornListeningRE)
	cmd.Stdout = l.output
	cmd.Stderr = filter
	if err := cmd.Start(); err != nil {
		filter.Close()
		return &UnexpectedError{Err: fmt.Errorf("failed to start %v: %w", cmd, err)}
	}
	ctxlog.Info(ctx, "AGVis server process started", "pid", cmd.Process.Pid, "command", cmd.String())

	done := make(chan struct{})
	go func() {
		l.watchForURL(ctx, ch)
		close(done)
	}()
	err := cmd.Wait()
	filter.Close() // closes ch
	<-done
	return l.classify(ctx, cmd, err)
}

func (l *Launcher) watchForURL(ctx context.Context, ch <-chan []byte) {
	for line := range ch {
		u, err := l.extractor(line)
		if err != nil {
			ctxlog.Warn(ctx, "failed to find a url in the server process output", "line", string(line), "error", err)
			continue
		}
		if u != nil {
			ctxlog.Info(ctx, "AGVis server process is listening", "url", u.String())
		}
	}
}

func (l *Launcher) classify(ctx context.Context, cmd *exec.Cmd, err error) error {
	if ctx.Err() != nil {
		return ErrInterrupted
	}
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ChildProcessError{
			Command:  cmd.String(),
			ExitCode: exitErr.ExitCode(),
			Err:      err,
		}
	}
	return &UnexpectedError{Err: err}
}

// RunAndReport calls Run and writes a user facing message describing
// how the server process terminated. Errors are reported and logged,
// but not returned.
func (l *Launcher) RunAndReport(ctx context.Context, module string) {
	err := l.Run(ctx, module)
	var childErr *ChildProcessError
	switch {
	case err == nil:
		fmt.Fprintln(l.messages, "\nAGVis has been stopped.")
	case errors.Is(err, ErrInterrupted):
		fmt.Fprintln(l.messages, "\nAGVis has been stopped. You may now close the browser.")
	case errors.As(err, &childErr):
		fmt.Fprintf(l.messages, "An error occurred while trying to start AGVis: %v\n", err)
		ctxlog.Warn(ctx, "AGVis server process failed", "exit_code", childErr.ExitCode, "error", err)
	default:
		fmt.Fprintf(l.messages, "An unexpected error has occurred while trying to start AGVis: %v\n", err)
		ctxlog.Warn(ctx, "AGVis could not be started", "error", err)
	}
}
