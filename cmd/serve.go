// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/telekom/tracerelay/internal/logger"
	"github.com/telekom/tracerelay/pkg/relay"
)

// NewCmdServe creates the command serving the traceroute api.
func NewCmdServe(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the traceroute API",
		Long:  "Serve the traceroute API until SIGINT or SIGTERM is received.",
		Args:  cobra.NoArgs,
		RunE:  serve(version),
	}
	bindEngineFlags(cmd)
	bindServeFlags(cmd)
	return cmd
}

func serve(version string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := logger.NewContextWithLogger(cmd.Context())
		log := logger.FromContext(ctx)
		defer cancel()

		cfg, err := validConfig(ctx, cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true

		r, err := relay.New(cfg, version)
		if err != nil {
			return err
		}

		cErr := make(chan error, 1)
		log.InfoContext(ctx, "Running tracerelay", "version", version, "engine", cfg.Engine.Kind, "address", cfg.Api.ListeningAddress)
		go func() {
			cErr <- r.Run(ctx)
		}()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case <-sigChan:
			log.InfoContext(ctx, "Signal received, shutting down")
			cancel()
			<-cErr
			return nil
		case err := <-cErr:
			if errors.Is(err, relay.ErrFinalShutdown) {
				return errors.New("tracerelay stopped after a component failed")
			}
			return err
		}
	}
}
