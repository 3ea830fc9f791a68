package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Process is the full configuration of one OSPFv3 protocol instance.
type Process struct {
	RouterID   [4]byte
	Interfaces []Interface
	Areas      []Area
}

// Validate checks the whole configuration, collecting every failure rather
// than stopping at the first so an operator sees all mistakes in one pass.
func (c Process) Validate() error {
	var result *multierror.Error

	if c.RouterID == ([4]byte{}) {
		result = multierror.Append(result, fmt.Errorf("config: router-id must be set"))
	}

	seen := make(map[string]bool, len(c.Interfaces))
	for _, ifc := range c.Interfaces {
		if seen[ifc.Name] {
			result = multierror.Append(result, fmt.Errorf("config: interface %s configured twice", ifc.Name))
		}
		seen[ifc.Name] = true
		if err := ifc.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}

	areas := make(map[[4]byte]bool, len(c.Areas))
	for _, a := range c.Areas {
		if areas[a.ID] {
			result = multierror.Append(result, fmt.Errorf("config: area %v configured twice", a.ID))
		}
		areas[a.ID] = true
		if err := a.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
		for _, vl := range a.VirtualLinks {
			if vl.TransitArea == ([4]byte{}) {
				result = multierror.Append(result, fmt.Errorf("config: area %v: a virtual link may not transit the backbone", a.ID))
			}
		}
	}

	return result.ErrorOrNil()
}
