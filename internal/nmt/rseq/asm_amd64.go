// Copyright 2025 The nmt Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Assembly-backed per-CPU reference cell acquire/release, following
// the inline-assembly sequence in original_source/src/nmt/rseq/
// per_cpu_rc/x86_64.rs of the mahkoh/atomic_nmt crate this module
// descends from:
//
//	1: leaq 5f(%rip), {data}      ; point rseq_cs at our descriptor
//	   movq {data}, 8({rseq})
//	2: movl 4({rseq}), {data:e}    ; load cpu_id, compute slot address
//	   shlq $6, {data}
//	   movq ({data_by_cpu},{data}), {data}
//	   incq ({data})               ; rc++, non-atomic
//	3: jmp 6f
//	   .ascii <kernel abort signature>
//	4: jmp 1b                      ; abort target: restart from the top
//	5: <rseq_cs descriptor: version, flags, start=2b, len=3b-2b, abort=4b>
//	6:
//
// Go has no inline-assembly macro the compiler won't reorder around,
// so this sequence would need to live in a standalone .s file with the
// critical-section descriptor emitted via Plan 9 assembly DATA/GLOBL
// directives, and be wired up by a //go:noescape stub the same way a
// hand-computed getg() offset gets wired up elsewhere in this module's
// lineage.
//
// That .s file is intentionally not included in this build: an
// assembly critical section that cannot be exercised by the test suite
// is worse than no assembly at all — a wrong abort-IP or a miscounted
// rseq_cs offset corrupts memory instead of merely being slow.
// shard.go's procPin-based path is the one this module actually ships;
// it is correct by construction (preemption is disabled, not merely
// resumable-after-abort) and is the default and only build
// configuration. See DESIGN.md, OQ-2.
//
//go:build nmt_asm_rseq

package rseq

// Placeholder: see the package-level doc comment above. No code in
// this file is ever part of a default build.

