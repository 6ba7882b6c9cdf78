// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package engine

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

var _ traceroute.Engine = (*Exec)(nil)

// Exec runs an external traceroute program. Its standard output is reported
// line by line, its standard error is logged.
type Exec struct {
	binary string
}

// NewExec returns an engine starting binary. If binary is empty,
// the program named by the first argument of a run is started.
func NewExec(binary string) *Exec {
	return &Exec{binary: binary}
}

// Execute starts the program and returns its exit status once it has
// exited and all of its output was reported. It returns
// [traceroute.CodeEngineFault] if the program could not be started or
// was killed by a signal.
func (e *Exec) Execute(ctx context.Context, args []string, sink traceroute.ProgressSink) int {
	log := logger.FromContext(ctx)
	if len(args) == 0 && e.binary == "" {
		log.ErrorContext(ctx, "No traceroute program given")
		return traceroute.CodeEngineFault
	}

	name := e.binary
	var params []string
	if len(args) > 0 {
		if name == "" {
			name = args[0]
		}
		params = args[1:]
	}

	cmd := exec.CommandContext(ctx, name, params...) // #nosec G204 // running the configured program is the purpose of this engine
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		log.ErrorContext(ctx, "Failed to open stdout of traceroute program", "error", err)
		return traceroute.CodeEngineFault
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		log.ErrorContext(ctx, "Failed to open stderr of traceroute program", "error", err)
		return traceroute.CodeEngineFault
	}

	log.DebugContext(ctx, "Starting traceroute program", "command", cmd.String())
	if err := cmd.Start(); err != nil {
		log.ErrorContext(ctx, "Failed to start traceroute program", "program", name, "error", err)
		return traceroute.CodeEngineFault
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		scanLines(stdout, sink.AppendProgress)
	}()
	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			log.WarnContext(ctx, "Traceroute program error output", "line", strings.TrimSuffix(line, "\n"))
		})
	}()
	wg.Wait()

	err = cmd.Wait()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return traceroute.CodeSuccess
	case errors.As(err, &exitErr) && exitErr.ExitCode() >= 0:
		return exitErr.ExitCode()
	default:
		log.ErrorContext(ctx, "Traceroute program terminated abnormally", "error", err)
		return traceroute.CodeEngineFault
	}
}

// scanLines calls fn for every line of r including its line break.
// A final line without line break gets one.
func scanLines(r io.Reader, fn func(line string)) {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			if line[len(line)-1] != '\n' {
				line += "\n"
			}
			fn(line)
		}
		if err != nil {
			return
		}
	}
}
