package symmetry

import (
	"math"
	"sync"

	"github.com/ipfs/go-cid"

	"xdao.co/dualcas/artifact"
	"xdao.co/dualcas/kernel"
)

// balanceTolerance is the fixed band around a perfect 0.5 ratio within
// which the scheduler counts as balanced. It is a constant of the
// design, not a tunable.
const balanceTolerance = 0.1

// balanceFiller is the content of the filler stores Balance issues.
var balanceFiller = []byte("balance")

// OpKind tags entries in the scheduler's operation history.
type OpKind int

const (
	OpStore OpKind = iota
	OpBalance
)

// Op is one recorded scheduler operation.
type Op struct {
	Kind    OpKind
	Content []byte  // OpStore
	Phase   uint8   // OpStore
	Ratio   float64 // OpBalance
}

// Stats summarizes the scheduler's recorded activity.
type Stats struct {
	TotalOps   int
	PrimaryOps int
	DualOps    int
	Ratio      float64
	Balanced   bool
}

// Scheduler routes stores across two kernels under one combined
// cycle. Single stores go to whichever kernel the current phase
// selects; dual stores go to both. Either way the combined counter
// advances by exactly one.
type Scheduler struct {
	mu      sync.Mutex
	primary *kernel.Kernel
	dual    *kernel.Kernel
	cycle   Cycle
	history []Op
}

// New builds a scheduler over two default kernels.
func New() *Scheduler {
	return NewWithKernels(kernel.NewDefault(), kernel.NewDefault())
}

// NewWithKernels wraps the given kernels. The scheduler takes
// exclusive ownership of routing; each kernel still advances its own
// mod-42 counter independently of the combined cycle.
func NewWithKernels(primary, dual *kernel.Kernel) *Scheduler {
	return &Scheduler{primary: primary, dual: dual}
}

// Store routes content to the kernel selected by the current phase and
// advances the combined counter by one, which may flip the phase at
// the PhaseLength boundary.
func (s *Scheduler) Store(content []byte) (cid.Cid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	phase := s.cycle.Phase()
	target := s.primary
	if phase == 1 {
		target = s.dual
	}
	id, err := target.StoreArtifact(content)
	if err != nil {
		return cid.Undef, err
	}

	s.history = append(s.history, Op{Kind: OpStore, Content: content, Phase: phase})
	s.cycle.Advance()
	return id, nil
}

// DualStore writes content to both kernels regardless of phase and
// advances the combined counter by exactly one, not two.
func (s *Scheduler) DualStore(content []byte) (cid.Cid, cid.Cid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	primaryID, err := s.primary.StoreArtifact(content)
	if err != nil {
		return cid.Undef, cid.Undef, err
	}
	dualID, err := s.dual.StoreArtifact(content)
	if err != nil {
		return primaryID, cid.Undef, err
	}

	s.history = append(s.history,
		Op{Kind: OpStore, Content: content, Phase: 0},
		Op{Kind: OpStore, Content: content, Phase: 1},
	)
	s.cycle.Advance()
	return primaryID, dualID, nil
}

// Retrieve looks up id in the kernel the current phase selects.
func (s *Scheduler) Retrieve(id cid.Cid) (*artifact.Artifact, error) {
	s.mu.Lock()
	target := s.primary
	if s.cycle.Phase() == 1 {
		target = s.dual
	}
	s.mu.Unlock()
	return target.GetArtifact(id)
}

// Cycle returns a copy of the combined cycle.
func (s *Scheduler) Cycle() Cycle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// SymmetryRatio returns the combined cycle's phase-0 ratio.
func (s *Scheduler) SymmetryRatio() float64 {
	return s.Cycle().Ratio()
}

// IsBalanced reports whether the ratio sits within the fixed tolerance
// of a perfect 0.5.
func (s *Scheduler) IsBalanced() bool {
	return math.Abs(s.SymmetryRatio()-0.5) < balanceTolerance
}

// Balance pads whichever kernel's own mod-42 counter lags with filler
// stores until the two counters are equal. The kernels' counters are
// compared directly; the combined cycle is not consulted and not
// advanced. Fillers are real stores, so artifact counts move.
func (s *Scheduler) Balance() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for s.primary.CycleStep() != s.dual.CycleStep() {
		lagging := s.primary
		if s.dual.CycleStep() < s.primary.CycleStep() {
			lagging = s.dual
		}
		if _, err := lagging.StoreArtifact(balanceFiller); err != nil {
			return err
		}
	}

	s.history = append(s.history, Op{Kind: OpBalance, Ratio: s.cycle.Ratio()})
	return nil
}

// History returns a copy of the recorded operations.
func (s *Scheduler) History() []Op {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Op, len(s.history))
	copy(out, s.history)
	return out
}

// Stats summarizes recorded stores per phase and the current balance.
func (s *Scheduler) Stats() Stats {
	s.mu.Lock()
	history := s.history
	ratio := s.cycle.Ratio()
	s.mu.Unlock()

	stats := Stats{Ratio: ratio, Balanced: math.Abs(ratio-0.5) < balanceTolerance}
	for _, op := range history {
		if op.Kind != OpStore {
			continue
		}
		stats.TotalOps++
		if op.Phase == 0 {
			stats.PrimaryOps++
		} else {
			stats.DualOps++
		}
	}
	return stats
}

// Primary returns the phase-0 kernel.
func (s *Scheduler) Primary() *kernel.Kernel { return s.primary }

// Dual returns the phase-1 kernel.
func (s *Scheduler) Dual() *kernel.Kernel { return s.dual }
