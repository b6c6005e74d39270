// Package topology describes the TPU accelerator types a sweep can target and
// validates a tpu_type/num_slices pair before any job is submitted.
package topology

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// generation describes how a TPU family names its slices.
type generation struct {
	// coreNamed families count TensorCores in the type name (two per chip).
	coreNamed bool
	// maxChips bounds a single slice; zero means unbounded.
	maxChips int
}

var generations = map[string]generation{
	"v2":        {coreNamed: true, maxChips: 256},
	"v3":        {coreNamed: true, maxChips: 1024},
	"v4":        {coreNamed: true},
	"v5p":       {coreNamed: true},
	"v5litepod": {maxChips: 256},
	"v5e":       {maxChips: 256},
	"v6e":       {maxChips: 256},
}

const chipsPerHost = 4

var typePattern = regexp.MustCompile(`^(v[0-9][a-z]*)-([0-9]+)$`)

// ErrMissingType is returned when no accelerator type was configured.
var ErrMissingType = errors.New("you must pass your desired target hardware in tpu_type, e.g. v5e-256")

// System is the shape of one slice of an accelerator type.
type System struct {
	Type       string
	Generation string
	Chips      int
	Hosts      int
}

// Lookup parses an accelerator type name such as v5litepod-256 or v4-128.
func Lookup(tpuType string) (System, error) {
	if tpuType == "" {
		return System{}, ErrMissingType
	}
	m := typePattern.FindStringSubmatch(tpuType)
	if m == nil {
		return System{}, fmt.Errorf("malformed tpu_type %q: expected <generation>-<size>, e.g. v5e-256", tpuType)
	}
	gen, ok := generations[m[1]]
	if !ok {
		return System{}, fmt.Errorf("unknown TPU generation %q in tpu_type %q", m[1], tpuType)
	}
	size, err := strconv.Atoi(m[2])
	if err != nil || size <= 0 {
		return System{}, fmt.Errorf("invalid size in tpu_type %q", tpuType)
	}

	sys := System{Type: tpuType, Generation: m[1]}
	if gen.coreNamed {
		if size%(2*chipsPerHost) != 0 {
			return System{}, fmt.Errorf("tpu_type %q: %s sizes count TensorCores and must be a multiple of %d", tpuType, m[1], 2*chipsPerHost)
		}
		sys.Chips = size / 2
	} else {
		if size&(size-1) != 0 {
			return System{}, fmt.Errorf("tpu_type %q: %s sizes must be a power of two", tpuType, m[1])
		}
		sys.Chips = size
	}
	if gen.maxChips > 0 && sys.Chips > gen.maxChips {
		return System{}, fmt.Errorf("tpu_type %q exceeds the %d chip slice limit of %s", tpuType, gen.maxChips, m[1])
	}

	// Slices of up to eight chips fit on a single host.
	if sys.Chips <= 2*chipsPerHost {
		sys.Hosts = 1
	} else {
		sys.Hosts = sys.Chips / chipsPerHost
	}
	return sys, nil
}

// Validate checks an accelerator type and slice count and returns the total
// number of chips the job will occupy.
func Validate(tpuType string, numSlices int) (int, error) {
	sys, err := Lookup(tpuType)
	if err != nil {
		return 0, err
	}
	if numSlices <= 0 {
		return 0, fmt.Errorf("num_slices must be a positive integer, got %d", numSlices)
	}
	return sys.Chips * numSlices, nil
}
