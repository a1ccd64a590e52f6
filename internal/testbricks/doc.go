// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package testbricks holds brick packages used by loader tests. The config
// files next to this file form the config directory for those tests.
package testbricks
