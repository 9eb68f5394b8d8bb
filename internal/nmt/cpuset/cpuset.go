// Package cpuset exposes the kernel's notion of how many CPUs this
// system could ever have, a boot-time setting the kernel itself uses
// to size per-CPU data structures.
//
// It is the Go translation of original_source/src/rseq/num_cpus.rs from
// the mahkoh/atomic_nmt crate this module is descended from: read
// /sys/devices/system/cpu/possible, take the endpoint of the last
// range in the comma-separated list, add one.
package cpuset

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// possiblePath is a boot-time setting that does not change until
// reboot; the kernel uses it to size its own per-cpu allocations.
const possiblePath = "/sys/devices/system/cpu/possible"

var (
	once    sync.Once
	numCPUs int
	initErr error
)

// NumPossibleCPUs returns the highest possible CPU index in this
// system, plus one. The value is computed once and cached; later
// calls cost only sync.Once's fast-path check and a read of the
// cached value.
//
// Panics on first use if the possible-CPUs file is missing or its
// contents cannot be parsed — this is a configuration-fatal condition:
// the caller cannot size its per-CPU arrays. Callers that have a
// reasonable fallback (internal/nmt/executor's default pool size)
// should use TryNumPossibleCPUs instead.
func NumPossibleCPUs() int {
	n, err := TryNumPossibleCPUs()
	if err != nil {
		panic(err)
	}
	return n
}

// TryNumPossibleCPUs is NumPossibleCPUs without the panic.
func TryNumPossibleCPUs() (int, error) {
	once.Do(func() {
		numCPUs, initErr = readNumPossibleCPUs(possiblePath)
	})
	return numCPUs, initErr
}

// readNumPossibleCPUs implements the parsing rule in isolation so it
// can be unit-tested without touching the real /sys filesystem.
func readNumPossibleCPUs(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("cpuset: could not read %s: %w", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	sc := bufio.NewScanner(f)
	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("cpuset: could not read %s: %w", path, err)
		}
		return 0, fmt.Errorf("cpuset: %s is empty", path)
	}

	return parsePossible(sc.Text())
}

// parsePossible parses a comma-separated list of CPU index ranges
// such as "0-7" or "0-3,8-11" and returns the endpoint of the last
// range plus one, i.e. the count of possible CPU indices [0, n).
func parsePossible(line string) (int, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return 0, fmt.Errorf("cpuset: empty possible-CPUs description")
	}

	ranges := strings.Split(line, ",")
	last := strings.TrimSpace(ranges[len(ranges)-1])

	bounds := strings.Split(last, "-")
	if len(bounds) > 2 || strings.TrimSpace(bounds[0]) == "" {
		return 0, fmt.Errorf("cpuset: malformed range %q in %q", last, line)
	}
	endpoint := strings.TrimSpace(bounds[len(bounds)-1])

	n, err := strconv.Atoi(endpoint)
	if err != nil {
		return 0, fmt.Errorf("cpuset: could not parse %q: %w", line, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("cpuset: negative CPU index in %q", line)
	}
	return n + 1, nil
}
