// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// viperKey is the flag annotation holding the configuration key of a flag.
const viperKey = "tracerelay/viper-key"

// Flag maps a command line flag to a configuration key.
type Flag struct {
	key  string
	name string
}

// NewFlag returns a flag named name setting the configuration key key.
func NewFlag(key, name string) *Flag {
	return &Flag{key: key, name: name}
}

type StringFlag struct{ *Flag }

type IntFlag struct{ *Flag }

type BoolFlag struct{ *Flag }

type DurationFlag struct{ *Flag }

func (f *Flag) String() *StringFlag     { return &StringFlag{f} }
func (f *Flag) Int() *IntFlag           { return &IntFlag{f} }
func (f *Flag) Bool() *BoolFlag         { return &BoolFlag{f} }
func (f *Flag) Duration() *DurationFlag { return &DurationFlag{f} }

// Bind registers the flag on cmd.
func (f *StringFlag) Bind(cmd *cobra.Command, value, usage string) {
	cmd.Flags().String(f.name, value, usage)
	f.annotate(cmd)
}

// Bind registers the flag on cmd.
func (f *IntFlag) Bind(cmd *cobra.Command, value int, usage string) {
	cmd.Flags().Int(f.name, value, usage)
	f.annotate(cmd)
}

// Bind registers the flag on cmd.
func (f *BoolFlag) Bind(cmd *cobra.Command, value bool, usage string) {
	cmd.Flags().Bool(f.name, value, usage)
	f.annotate(cmd)
}

// Bind registers the flag on cmd.
func (f *DurationFlag) Bind(cmd *cobra.Command, value time.Duration, usage string) {
	cmd.Flags().Duration(f.name, value, usage)
	f.annotate(cmd)
}

func (f *Flag) annotate(cmd *cobra.Command) {
	_ = cmd.Flags().SetAnnotation(f.name, viperKey, []string{f.key})
}

// bindFlags binds the annotated flags of cmd to their configuration keys.
// It runs when cmd is executed, so commands sharing a key do not override
// each other's binding.
func bindFlags(cmd *cobra.Command) (err error) {
	cmd.Flags().VisitAll(func(fl *pflag.Flag) {
		keys, ok := fl.Annotations[viperKey]
		if !ok || err != nil {
			return
		}
		if bErr := viper.BindPFlag(keys[0], fl); bErr != nil {
			err = fmt.Errorf("failed to bind flag %q: %w", fl.Name, bErr)
		}
	})
	return err
}
