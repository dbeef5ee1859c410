package constraint

import (
	"sort"
	"sync"

	"github.com/paiban/roster/pkg/model"
)

// Manager holds the registered constraint set and drives evaluation
// over a roster-in-progress, adapted from the teacher's constraint
// manager.
type Manager struct {
	mu          sync.RWMutex
	constraints []Constraint
}

// NewManager builds an empty constraint manager.
func NewManager() *Manager {
	return &Manager{}
}

// Register adds c, replacing any already-registered constraint of the
// same Type, then keeps the set sorted hard-first, higher-weight-first.
func (m *Manager) Register(c Constraint) {
	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i, existing := range m.constraints {
		if existing.Type() == c.Type() {
			m.constraints[i] = c
			replaced = true
			break
		}
	}
	if !replaced {
		m.constraints = append(m.constraints, c)
	}

	sort.Slice(m.constraints, func(i, j int) bool {
		ci, cj := m.constraints[i], m.constraints[j]
		if ci.Category() != cj.Category() {
			return ci.Category() == CategoryHard
		}
		return ci.Weight() > cj.Weight()
	})
}

// All returns a snapshot of every registered constraint.
func (m *Manager) All() []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Constraint, len(m.constraints))
	copy(out, m.constraints)
	return out
}

// ByCategory returns every registered constraint in the given category.
func (m *Manager) ByCategory(cat Category) []Constraint {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []Constraint
	for _, c := range m.constraints {
		if c.Category() == cat {
			out = append(out, c)
		}
	}
	return out
}

// CanPlace checks slot/employeeID against every hard constraint,
// returning the first violated constraint's name on failure.
func (m *Manager) CanPlace(ctx *Context, slot model.Slot, employeeID string) (bool, string) {
	for _, c := range m.ByCategory(CategoryHard) {
		if valid, _ := c.EvaluateAssignment(ctx, slot, employeeID); !valid {
			return false, c.Name()
		}
	}
	return true, ""
}

// PenaltyOf sums the soft-constraint penalty of placing slot/employeeID,
// without checking hard constraints (callers run CanPlace first).
func (m *Manager) PenaltyOf(ctx *Context, slot model.Slot, employeeID string) int {
	total := 0
	for _, c := range m.ByCategory(CategorySoft) {
		_, penalty := c.EvaluateAssignment(ctx, slot, employeeID)
		total += penalty
	}
	return total
}

// Evaluate runs every registered constraint's whole-roster Evaluate and
// aggregates the result.
func (m *Manager) Evaluate(ctx *Context) *Result {
	constraints := m.All()

	result := &Result{IsValid: true}
	maxPenalty := 0

	for _, c := range constraints {
		valid, penalty, details := c.Evaluate(ctx)
		maxPenalty += c.Weight() * 100

		if !valid || penalty > 0 {
			result.TotalPenalty += penalty
			for _, d := range details {
				if c.Category() == CategoryHard {
					result.IsValid = false
					result.HardViolations = append(result.HardViolations, d)
				} else {
					result.SoftViolations = append(result.SoftViolations, d)
				}
			}
		}
		if !valid && len(details) == 0 {
			result.IsValid = false
		}
	}

	result.CalculateScore(maxPenalty)
	return result
}

// Count returns the number of registered constraints.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.constraints)
}
