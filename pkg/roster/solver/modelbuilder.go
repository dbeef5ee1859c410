// Package solver builds the decision-variable model for a slot/employee
// pool and greedily solves it (§4.4/§4.5), generalizing the teacher's
// GreedySolver from a flat per-requirement loop to the full roster
// pipeline (ICPMP ownership, pattern-aware hour accounting, incremental
// locking).
package solver

import (
	"github.com/paiban/roster/pkg/model"
)

// Pair is one (slot, employee) decision variable the model builder
// admits — the model never materialises a pair that fails the slot's
// own filters, which is the primary model-size control (§4.4).
type Pair struct {
	Slot       model.Slot
	EmployeeID string
}

// Model is the admitted decision-variable set plus the lookup indexes
// the solver needs to walk it efficiently.
type Model struct {
	Pairs []Pair

	bySlot map[string][]string // slotID -> eligible employeeIDs
}

// BuildModel enumerates every (slot, employee) pair that survives the
// slot's own MatchesEmployee filter (product, rank, scheme, gender,
// qualifications-valid-on-date). Locked slots admit no pairs — they are
// carried through as fixed assignments instead (§4.7 incremental mode).
func BuildModel(slots []model.Slot, employees []*model.Employee) *Model {
	m := &Model{bySlot: make(map[string][]string, len(slots))}

	for _, slot := range slots {
		if slot.Locked {
			continue
		}
		var eligible []string
		for _, emp := range employees {
			if !slot.MatchesEmployee(emp) {
				continue
			}
			m.Pairs = append(m.Pairs, Pair{Slot: slot, EmployeeID: emp.EmployeeID})
			eligible = append(eligible, emp.EmployeeID)
		}
		m.bySlot[slot.SlotID] = eligible
	}

	return m
}

// CandidatesFor returns the employee IDs admitted for slotID.
func (m *Model) CandidatesFor(slotID string) []string {
	return m.bySlot[slotID]
}
