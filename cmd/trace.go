// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/telekom/tracerelay/internal/engine"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/traceroute"
)

// NewCmdTrace creates the command running a single traceroute.
func NewCmdTrace() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trace HOST [-- TRACEROUTE_ARGS...]",
		Short: "Run a traceroute and print its progress",
		Long: "Run a traceroute to HOST and print its output as it is reported.\n" +
			"Arguments after -- are passed to the engine in front of HOST.\n" +
			"The command exits with the status code of the run.",
		Args: func(cmd *cobra.Command, args []string) error {
			if n := hostArgs(cmd, args); len(n) != 1 {
				return fmt.Errorf("expected exactly one host, got %d", len(n))
			}
			return nil
		},
		RunE: trace,
	}
	cmd.Flags().Bool("async", false, "start the run in the background and wait for its notifications")
	bindEngineFlags(cmd)
	return cmd
}

// hostArgs returns the arguments in front of "--".
func hostArgs(cmd *cobra.Command, args []string) []string {
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		return args[:dash]
	}
	return args
}

func trace(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := logger.NewContextWithLogger(ctx)
	defer cancel()

	cfg, err := validConfig(ctx, cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	async, err := cmd.Flags().GetBool("async")
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg.Engine)
	if err != nil {
		return err
	}
	loop := traceroute.NewMainLoop()
	svc := traceroute.New(cfg.Service, eng, loop)
	printer(svc, cmd.OutOrStdout())

	host := hostArgs(cmd, args)[0]
	var extra []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		extra = args[dash:]
	}

	res := start(ctx, svc, loop, host, extra, async)
	if res.Code == traceroute.CodeAborted {
		logger.FromContext(ctx).ErrorContext(ctx, "Traceroute did not start", "reason", res.Message)
	}
	if !res.Succeeded() {
		return &ExitError{Code: res.Code}
	}
	return nil
}

// start runs the traceroute and then runs the main loop on the calling
// goroutine until every notification of the run was delivered.
func start(ctx context.Context, svc *traceroute.Service, loop *traceroute.MainLoop, host string, extra []string, async bool) traceroute.Result {
	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	program := svc.Program()

	var res traceroute.Result
	switch {
	case async:
		task := svc.Go(ctx, append(append([]string{program}, extra...), host))
		go func() {
			<-task.Done()
			loop.Post(stopLoop)
		}()
		runLoop(loopCtx, loop)
		res = task.Wait()
	case len(extra) > 0:
		res = svc.RunArgs(ctx, append(append([]string{program}, extra...), host))
		loop.Post(stopLoop)
		runLoop(loopCtx, loop)
	default:
		res = *svc.Run(ctx, host, false)
		loop.Post(stopLoop)
		runLoop(loopCtx, loop)
	}
	return res
}

func runLoop(ctx context.Context, loop *traceroute.MainLoop) {
	if err := loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.FromContext(ctx).ErrorContext(ctx, "Main loop stopped", "error", err)
	}
}

// printer registers a listener writing the progress and the outcome of a run to w.
func printer(svc *traceroute.Service, w io.Writer) {
	svc.SetListenerFunc(func(l *traceroute.SimpleListener) {
		l.Update(func(text string) {
			_, _ = fmt.Fprint(w, text)
		})
		l.Success(func(traceroute.Result) {
			_, _ = fmt.Fprintln(w, "traceroute finish")
		})
		l.Failed(func(code int, reason string) {
			_, _ = fmt.Fprintf(w, "traceroute failed. code:%d, reason:%s\n", code, reason)
		})
	})
}
