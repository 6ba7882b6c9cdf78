// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenDocs(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, genDocs(dir))

	for _, name := range []string{"tracerelay.md", "tracerelay_trace.md", "tracerelay_serve.md", "tracerelay_config.md"} {
		data, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err, name)
		assert.NotEmpty(t, data, name)
	}
}
