// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/telekom/tracerelay/internal/engine"
	"github.com/telekom/tracerelay/pkg/config"
	"github.com/telekom/tracerelay/pkg/traceroute"
	"gopkg.in/yaml.v3"
)

const redacted = "<redacted>"

// NewCmdConfig creates the command printing the effective configuration.
func NewCmdConfig() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long:  "Print the configuration merged from defaults, config file, environment and flags.",
		Args:  cobra.NoArgs,
		RunE:  printConfig,
	}
	bindEngineFlags(cmd)
	bindServeFlags(cmd)
	return cmd
}

func printConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.Telemetry.Token != "" {
		cfg.Telemetry.Token = redacted
	}

	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(out)
	return err
}

// loadConfig binds the flags of cmd and decodes the configuration on top of the defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	if err := bindFlags(cmd); err != nil {
		return nil, err
	}
	cfg := config.Default()
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// validConfig loads and validates the configuration.
func validConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	if err = cfg.Validate(ctx); err != nil {
		return nil, fmt.Errorf("error while validating the config: %w", err)
	}
	return cfg, nil
}

func bindEngineFlags(cmd *cobra.Command) {
	def := engine.DefaultConfig()
	NewFlag("engine.kind", "engine").String().Bind(cmd, def.Kind.String(), "engine: the traceroute engine, exec or tcp")
	NewFlag("engine.binary", "engineBinary").String().Bind(cmd, "", "engine: the program started by the exec engine")
	NewFlag("engine.tcp.port", "tcpPort").Int().Bind(cmd, def.TCP.Port, "engine: the default destination port of the tcp engine")
	NewFlag("engine.tcp.maxHops", "tcpMaxHops").Int().Bind(cmd, def.TCP.MaxHops, "engine: the default maximum number of hops of the tcp engine")
	NewFlag("engine.tcp.timeout", "tcpTimeout").Duration().Bind(cmd, def.TCP.Timeout, "engine: the default probe timeout of the tcp engine")
	NewFlag("service.program", "program").String().Bind(cmd, traceroute.DefaultProgram, "service: the program name passed to the engine for a bare host")
	NewFlag("service.acquireTimeout", "acquireTimeout").Duration().Bind(cmd, 0, "service: how long a run waits for the previous one, 0 waits without limit")
}

func bindServeFlags(cmd *cobra.Command) {
	def := config.Default()
	NewFlag("api.address", "apiAddress").String().Bind(cmd, def.Api.ListeningAddress, "api: the address the server is listening on")
	NewFlag("api.tls.enabled", "apiTlsEnabled").Bool().Bind(cmd, false, "api: serve via tls")
	NewFlag("api.tls.certPath", "apiTlsCertPath").String().Bind(cmd, "", "api: the path to the tls certificate")
	NewFlag("api.tls.keyPath", "apiTlsKeyPath").String().Bind(cmd, "", "api: the path to the tls key")
	NewFlag("telemetry.enabled", "telemetryEnabled").Bool().Bind(cmd, false, "telemetry: export traces")
	NewFlag("telemetry.exporter", "telemetryExporter").String().Bind(cmd, def.Telemetry.Exporter.String(), "telemetry: the exporter, one of grpc, http, stdout or noop")
	NewFlag("telemetry.url", "telemetryUrl").String().Bind(cmd, "", "telemetry: the url of the collector")
	NewFlag("telemetry.token", "telemetryToken").String().Bind(cmd, "", "telemetry: the bearer token of the collector")
}
