//go:build !linux || !(amd64 || arm64)

package rseq

import "errors"

// ErrUnsupported is returned by Session.Register on platforms without
// a kernel restartable-sequence ABI: callers that need the migration
// diagnostic simply don't get one here, the same way they wouldn't in
// the generic Handle variant used on every platform other than Linux
// on amd64 or arm64.
var ErrUnsupported = errors.New("rseq: not supported on this platform")

// Session is the no-op stand-in for the kernel-backed Session defined
// in kernel_linux.go, kept so callers (the executor's migration
// diagnostics) don't need a build-tag-specific call site.
type Session struct{}

// NewSession constructs a Session that will always fail to register.
func NewSession() *Session { return &Session{} }

// Register always fails on unsupported platforms.
func (s *Session) Register() error { return ErrUnsupported }

// CPUID always reports unknown.
func (s *Session) CPUID() int { return -1 }

// Migrations is always zero: without kernel registration there is
// nothing to count migrations against.
func (s *Session) Migrations() uint64 { return 0 }
