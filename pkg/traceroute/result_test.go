// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResult_Err(t *testing.T) {
	assert.NoError(t, Result{Code: 0, Message: "out"}.Err())

	err := Result{Code: 2, Message: FailureMessage}.Err()
	require.Error(t, err)
	var failure *EngineFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, 2, failure.Code)
	assert.Equal(t, "engine failure (code 2): execute traceroute failed.", err.Error())
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "traceroute succeeded (3 bytes of output)", Result{Message: "abc"}.String())
	assert.Equal(t, "traceroute failed with code -4: traceroute aborted before start.",
		Result{Code: CodeAborted, Message: AbortedMessage}.String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []error
	}{
		{name: "zero value", cfg: Config{}},
		{name: "custom program", cfg: Config{Program: "tcptraceroute", AcquireTimeout: time.Second}},
		{name: "blank program", cfg: Config{Program: "  "}, wantErr: []error{ErrInvalidProgram}},
		{name: "negative timeout", cfg: Config{AcquireTimeout: -time.Second}, wantErr: []error{ErrInvalidAcquireTimeout}},
		{
			name:    "all invalid",
			cfg:     Config{Program: "\t", AcquireTimeout: -1},
			wantErr: []error{ErrInvalidProgram, ErrInvalidAcquireTimeout},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				assert.NoError(t, err)
				return
			}
			for _, want := range tt.wantErr {
				assert.ErrorIs(t, err, want)
			}
		})
	}
}

func TestConfig_Program(t *testing.T) {
	assert.Equal(t, DefaultProgram, (&Config{}).program())
	assert.Equal(t, "mtr", (&Config{Program: "mtr"}).program())
}
