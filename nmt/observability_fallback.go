// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux || !(amd64 || arm64)

package nmt

// OffCPUReleaseCount is always zero on this platform: the fallback
// Handle has no per-shard reference cells to release off-shard.
func OffCPUReleaseCount() uint64 {
	return 0
}

// MigrationCount is always zero on this platform: there is no per-CPU
// executor pinning worker threads to hardware CPUs to migrate away from.
func MigrationCount() uint64 {
	return 0
}
