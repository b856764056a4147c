// Package replica pairs two independent kernels under an alternating
// active phase.
//
// Each paired write stores into both kernels and then toggles the
// active phase. Lookups are phase-gated, not content-gated: Retrieve
// consults only the kernel matching the phase at call time, so a
// digest written while the pair was Primary-active becomes unreachable
// through Retrieve once the phase has flipped, until it flips back.
package replica

import (
	"fmt"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/kernel"
)

// Phase selects which kernel is active for phase-gated operations.
type Phase int

const (
	Primary Phase = iota
	Dual
)

func (p Phase) String() string {
	switch p {
	case Primary:
		return "primary"
	case Dual:
		return "dual"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// OpKind tags entries in the pair's operation history.
type OpKind int

const (
	OpStore OpKind = iota
	OpTransition
)

// Op is one recorded pair operation.
type Op struct {
	Kind    OpKind
	Content []byte // OpStore
	From    Phase  // OpTransition
	To      Phase  // OpTransition
}

// syncFiller is the content of the filler stores Synchronize issues.
var syncFiller = []byte("sync")

// Pair is two independently-advancing kernels plus the active phase.
type Pair struct {
	mu      sync.Mutex
	primary *kernel.Kernel
	dual    *kernel.Kernel
	phase   Phase
	history []Op
}

// New builds a pair of default kernels, initially Primary-active.
func New() *Pair {
	return NewWithKernels(kernel.NewDefault(), kernel.NewDefault())
}

// NewWithKernels wraps the given kernels. The pair takes exclusive
// ownership; callers must not route writes around it if the history
// and phase are to stay meaningful.
func NewWithKernels(primary, dual *kernel.Kernel) *Pair {
	return &Pair{primary: primary, dual: dual, phase: Primary}
}

// DualStore stores content independently into both kernels (primary
// first), records the operation and toggles the active phase. The two
// digests may differ when the kernels' hashers differ.
func (p *Pair) DualStore(content []byte) (cid.Cid, cid.Cid, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	primaryID, err := p.primary.StoreArtifact(content)
	if err != nil {
		return cid.Undef, cid.Undef, err
	}
	dualID, err := p.dual.StoreArtifact(content)
	if err != nil {
		return primaryID, cid.Undef, err
	}

	p.history = append(p.history, Op{Kind: OpStore, Content: content})
	p.advancePhase()
	return primaryID, dualID, nil
}

// Retrieve looks up id only in the kernel matching the current active
// phase.
func (p *Pair) Retrieve(id cid.Cid) (*artifact.Artifact, error) {
	p.mu.Lock()
	active := p.activeKernel()
	p.mu.Unlock()
	return active.GetArtifact(id)
}

// Phase returns the current active phase.
func (p *Pair) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phase
}

// CombinedCycle is the unreduced sum of both kernels' cycle counters.
// It is a drift-visibility metric, not a canonical counter, and is not
// itself modular.
func (p *Pair) CombinedCycle() uint64 {
	return p.primary.CycleStep() + p.dual.CycleStep()
}

// IsSynchronized reports whether both counters are equal.
func (p *Pair) IsSynchronized() bool {
	return p.primary.CycleStep() == p.dual.CycleStep()
}

// Synchronize issues filler stores into whichever kernel lags until
// the counters match. Each filler is a real store: it raises the
// lagging kernel's artifact count as an observable side effect.
func (p *Pair) Synchronize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.primary.CycleStep() != p.dual.CycleStep() {
		lagging := p.primary
		if p.dual.CycleStep() < p.primary.CycleStep() {
			lagging = p.dual
		}
		if _, err := lagging.StoreArtifact(syncFiller); err != nil {
			return err
		}
	}
	return nil
}

// History returns a copy of the recorded operations.
func (p *Pair) History() []Op {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Op, len(p.history))
	copy(out, p.history)
	return out
}

// Primary returns the primary kernel.
func (p *Pair) Primary() *kernel.Kernel { return p.primary }

// Dual returns the dual kernel.
func (p *Pair) Dual() *kernel.Kernel { return p.dual }

func (p *Pair) activeKernel() *kernel.Kernel {
	if p.phase == Primary {
		return p.primary
	}
	return p.dual
}

// advancePhase toggles the phase and records the transition.
// Callers must hold p.mu.
func (p *Pair) advancePhase() {
	from := p.phase
	if p.phase == Primary {
		p.phase = Dual
	} else {
		p.phase = Primary
	}
	p.history = append(p.history, Op{Kind: OpTransition, From: from, To: p.phase})
}
