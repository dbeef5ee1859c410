package optimizer

import (
	"math/rand"

	"github.com/paiban/roster/pkg/model"
	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/paiban/roster/pkg/roster/solver"
)

// MoveType identifies the kind of neighbourhood move applied to produce
// a candidate solution.
type MoveType int

const (
	MoveSwap MoveType = iota
	MoveRelocate
)

// Move records what a generated neighbour changed, so the optimizer can
// hash it for the tabu list.
type Move struct {
	Type  MoveType
	SlotA string
	EmpA  string
	SlotB string
	EmpB  string
}

type neighbour struct {
	ctx  *constraint.Context
	move Move
}

// NeighborhoodGenerator produces candidate roster mutations: swapping
// two employees' shifts, or relocating one employee's shift to a
// different eligible candidate for the same slot.
type NeighborhoodGenerator struct {
	rng       *rand.Rand
	swapShare float64
}

// NewNeighborhoodGenerator builds a generator seeded from rng.
func NewNeighborhoodGenerator(rng *rand.Rand) *NeighborhoodGenerator {
	return &NeighborhoodGenerator{rng: rng, swapShare: 0.6}
}

// Generate attempts count moves against current, discarding any that
// fail a hard constraint, and returns the survivors.
func (n *NeighborhoodGenerator) Generate(current *constraint.Context, manager *constraint.Manager, m *solver.Model, count int) []neighbour {
	out := make([]neighbour, 0, count)
	for i := 0; i < count; i++ {
		var (
			cand *constraint.Context
			move Move
			ok   bool
		)
		if n.rng.Float64() < n.swapShare {
			cand, move, ok = n.generateSwap(current, manager)
		} else {
			cand, move, ok = n.generateRelocate(current, manager, m)
		}
		if ok {
			out = append(out, neighbour{ctx: cand, move: move})
		}
	}
	return out
}

func employeesWithAssignments(current *constraint.Context) []*model.Employee {
	var out []*model.Employee
	for _, e := range current.Employees {
		if len(current.Assignments(e.EmployeeID)) > 0 {
			out = append(out, e)
		}
	}
	return out
}

// generateSwap exchanges the shifts of two randomly chosen employees,
// keeping both assignments' slots fixed.
func (n *NeighborhoodGenerator) generateSwap(current *constraint.Context, manager *constraint.Manager) (*constraint.Context, Move, bool) {
	pool := employeesWithAssignments(current)
	if len(pool) < 2 {
		return nil, Move{}, false
	}

	a := pool[n.rng.Intn(len(pool))]
	b := pool[n.rng.Intn(len(pool))]
	if a.EmployeeID == b.EmployeeID {
		return nil, Move{}, false
	}

	aAssignments := current.Assignments(a.EmployeeID)
	bAssignments := current.Assignments(b.EmployeeID)
	slotA := aAssignments[n.rng.Intn(len(aAssignments))].Slot()
	slotB := bAssignments[n.rng.Intn(len(bAssignments))].Slot()
	if slotA.SlotID == slotB.SlotID {
		return nil, Move{}, false
	}

	clone := current.Clone()
	clone.Unplace(slotA, a.EmployeeID)
	clone.Unplace(slotB, b.EmployeeID)

	if ok, _ := manager.CanPlace(clone, slotA, b.EmployeeID); !ok {
		return nil, Move{}, false
	}
	if err := clone.Place(slotA, b.EmployeeID); err != nil {
		return nil, Move{}, false
	}
	if ok, _ := manager.CanPlace(clone, slotB, a.EmployeeID); !ok {
		return nil, Move{}, false
	}
	if err := clone.Place(slotB, a.EmployeeID); err != nil {
		return nil, Move{}, false
	}

	return clone, Move{Type: MoveSwap, SlotA: slotA.SlotID, EmpA: a.EmployeeID, SlotB: slotB.SlotID, EmpB: b.EmployeeID}, true
}

// generateRelocate moves one employee's placed assignment to a different
// employee eligible for that same slot.
func (n *NeighborhoodGenerator) generateRelocate(current *constraint.Context, manager *constraint.Manager, m *solver.Model) (*constraint.Context, Move, bool) {
	pool := employeesWithAssignments(current)
	if len(pool) == 0 {
		return nil, Move{}, false
	}

	from := pool[n.rng.Intn(len(pool))]
	assignments := current.Assignments(from.EmployeeID)
	placed := assignments[n.rng.Intn(len(assignments))]
	slot := placed.Slot()

	candidates := m.CandidatesFor(slot.SlotID)
	if len(candidates) < 2 {
		return nil, Move{}, false
	}
	to := candidates[n.rng.Intn(len(candidates))]
	if to == from.EmployeeID {
		return nil, Move{}, false
	}

	clone := current.Clone()
	clone.Unplace(slot, from.EmployeeID)

	if ok, _ := manager.CanPlace(clone, slot, to); !ok {
		return nil, Move{}, false
	}
	if err := clone.Place(slot, to); err != nil {
		return nil, Move{}, false
	}

	return clone, Move{Type: MoveRelocate, SlotA: slot.SlotID, EmpA: from.EmployeeID, EmpB: to}, true
}
