// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

// Package test holds helpers shared by the tests of this module.
package test

import (
	"os"
	"strconv"
	"testing"
)

// e2eEnv selects the end-to-end mode, which runs only long tests.
const e2eEnv = "TRACERELAY_E2E"

// MarkAsShort marks a unit test. It is skipped in end-to-end mode.
func MarkAsShort(t testing.TB) {
	t.Helper()
	if e2eMode() {
		t.Skip("skipping unit test in end-to-end mode")
	}
}

// MarkAsLong marks a test that starts servers or processes.
// It is skipped with -short.
func MarkAsLong(t testing.TB) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping long running test in short mode")
	}
}

func e2eMode() bool {
	ok, _ := strconv.ParseBool(os.Getenv(e2eEnv))
	return ok
}
