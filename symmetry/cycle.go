// Package symmetry composes two kernels under one double-length
// combined cycle with phase-based routing.
package symmetry

import "xdao.co/dualcas/kernel"

const (
	// PhaseLength is the span of one phase within the combined cycle.
	PhaseLength = kernel.CycleLength
	// CombinedLength is the full combined cycle: two back-to-back
	// phases.
	CombinedLength = 2 * PhaseLength
)

// Cycle is a counter in [0, CombinedLength). The first PhaseLength
// steps belong to phase 0, the rest to phase 1.
type Cycle struct {
	step uint64
}

// Advance moves the cycle forward one step, wrapping at
// CombinedLength. The phase flips at the PhaseLength boundary.
func (c *Cycle) Advance() {
	c.step = (c.step + 1) % CombinedLength
}

// Step returns the combined counter value.
func (c Cycle) Step() uint64 { return c.step }

// Phase returns 0 while in the primary half, 1 in the dual half.
func (c Cycle) Phase() uint8 { return uint8(c.step / PhaseLength) }

// PhaseStep returns the step within the current phase, in
// [0, PhaseLength).
func (c Cycle) PhaseStep() uint64 { return c.step % PhaseLength }

// IsPrimary reports whether the cycle is in phase 0.
func (c Cycle) IsPrimary() bool { return c.Phase() == 0 }

// IsDual reports whether the cycle is in phase 1.
func (c Cycle) IsDual() bool { return c.Phase() == 1 }

// Ratio is the fraction of elapsed steps attributable to phase 0, by
// convention 0.5 at step 0. While phase 0 runs the ratio is 1; once
// phase 1 begins it decays from 1 toward 0.5 as dual steps accumulate.
func (c Cycle) Ratio() float64 {
	if c.step == 0 {
		return 0.5
	}
	var primarySteps, dualSteps uint64
	if c.Phase() == 0 {
		primarySteps = c.PhaseStep()
	} else {
		primarySteps = PhaseLength
		dualSteps = c.PhaseStep()
	}
	return float64(primarySteps) / float64(primarySteps+dualSteps)
}
