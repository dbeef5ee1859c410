// Package optimizer refines a solved roster by local search: simulated
// annealing over swap/relocate moves, tabu-listed to avoid cycling,
// scored against the same constraint.Manager the solver used (§4.5/§4.6
// soft-constraint minimisation pass after the greedy fill).
package optimizer

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/paiban/roster/pkg/roster/constraint"
	"github.com/paiban/roster/pkg/roster/solver"
)

// Config tunes the simulated-annealing local search.
type Config struct {
	MaxIterations    int
	MaxTime          time.Duration
	InitialTemp      float64
	CoolingRate      float64
	TabuSize         int
	NeighborhoodSize int
	ParallelWorkers  int
	StopOnPlateau    bool
	PlateauThreshold int
}

// DefaultConfig returns the spec-reasonable defaults for Config.
func DefaultConfig() Config {
	return Config{
		MaxIterations:    1000,
		MaxTime:          30 * time.Second,
		InitialTemp:      100.0,
		CoolingRate:      0.99,
		TabuSize:         50,
		NeighborhoodSize: 20,
		ParallelWorkers:  4,
		StopOnPlateau:    true,
		PlateauThreshold: 100,
	}
}

// Result is the optimizer's output: the best context it reached plus the
// evaluation trail.
type Result struct {
	Context          *constraint.Context
	ConstraintResult *constraint.Result
	Iterations       int
	InitialPenalty   int
	FinalPenalty     int
	Duration         time.Duration
}

// Optimizer runs simulated-annealing local search over a roster-in-
// progress, generalizing the teacher's LocalSearchOptimizer from a
// generic ConstraintEvaluator interface to the roster engine's
// constraint.Manager/Context pair.
type Optimizer struct {
	manager   *constraint.Manager
	config    Config
	neighbors *NeighborhoodGenerator
	parallel  *ParallelEvaluator
	tabu      *TabuList
	rng       *rand.Rand
}

// NewOptimizer builds an optimizer bound to manager. A config whose
// MaxIterations is 0 is replaced wholesale by DefaultConfig; otherwise
// the fields are used as given (a non-positive TabuSize or
// ParallelWorkers falls back to 50 or 4).
func NewOptimizer(manager *constraint.Manager, config Config) *Optimizer {
	if config.MaxIterations == 0 {
		config = DefaultConfig()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	return &Optimizer{
		manager:   manager,
		config:    config,
		neighbors: NewNeighborhoodGenerator(rng),
		parallel:  NewParallelEvaluator(config.ParallelWorkers),
		tabu:      NewTabuList(config.TabuSize),
		rng:       rng,
	}
}

// Optimize runs the search starting from start (typically the greedy
// solver's output context) against model's eligible pairs, returning the
// best roster-in-progress found within the iteration/time budget.
func (o *Optimizer) Optimize(ctx context.Context, start *constraint.Context, m *solver.Model) *Result {
	startTime := time.Now()

	current := start
	currentResult := o.manager.Evaluate(current)
	best := current
	bestResult := currentResult
	initialPenalty := currentResult.TotalPenalty

	temperature := o.config.InitialTemp
	noImprovement := 0
	iterations := 0

	for i := 0; i < o.config.MaxIterations; i++ {
		select {
		case <-ctx.Done():
			return o.buildResult(best, bestResult, iterations, initialPenalty, startTime)
		default:
		}
		if time.Since(startTime) > o.config.MaxTime {
			break
		}
		iterations++

		batch := o.neighbors.Generate(current, o.manager, m, o.config.NeighborhoodSize)
		if len(batch) == 0 {
			noImprovement++
			continue
		}

		scored := o.parallel.Evaluate(ctx, batch, o.manager)
		winner := pickBest(scored)
		if winner == nil {
			noImprovement++
			continue
		}

		key := moveKey(winner.move)
		inTabu := o.tabu.Contains(key)

		delta := winner.result.TotalPenalty - currentResult.TotalPenalty
		accept := delta <= 0 || (!inTabu && o.rng.Float64() < boltzmann(float64(delta), temperature))

		if accept {
			current = winner.ctx
			currentResult = winner.result
			o.tabu.Add(key)

			if currentResult.TotalPenalty < bestResult.TotalPenalty {
				best = current
				bestResult = currentResult
				noImprovement = 0
			} else {
				noImprovement++
			}
		} else {
			noImprovement++
		}

		if o.config.StopOnPlateau && noImprovement >= o.config.PlateauThreshold {
			break
		}
		temperature *= o.config.CoolingRate
	}

	return o.buildResult(best, bestResult, iterations, initialPenalty, startTime)
}

func (o *Optimizer) buildResult(best *constraint.Context, bestResult *constraint.Result, iterations, initialPenalty int, startTime time.Time) *Result {
	return &Result{
		Context:          best,
		ConstraintResult: bestResult,
		Iterations:       iterations,
		InitialPenalty:   initialPenalty,
		FinalPenalty:     bestResult.TotalPenalty,
		Duration:         time.Since(startTime),
	}
}

// boltzmann is the simulated-annealing acceptance probability for a move
// that worsens total penalty by delta at the given temperature.
func boltzmann(delta, temperature float64) float64 {
	if delta <= 0 {
		return 1.0
	}
	if temperature <= 0 {
		return 0.0
	}
	return math.Exp(-delta / temperature)
}

func moveKey(mv Move) uint64 {
	h := fnv.New64a()
	h.Write([]byte{byte(mv.Type)})
	h.Write([]byte(mv.SlotA))
	h.Write([]byte(mv.EmpA))
	h.Write([]byte(mv.SlotB))
	h.Write([]byte(mv.EmpB))
	return h.Sum64()
}

// TabuList remembers recently-applied moves to discourage cycling,
// evicting the oldest entry once it exceeds maxSize.
type TabuList struct {
	items   map[uint64]struct{}
	order   []uint64
	maxSize int
}

// NewTabuList builds an empty tabu list capped at size entries.
func NewTabuList(size int) *TabuList {
	if size <= 0 {
		size = 50
	}
	return &TabuList{items: make(map[uint64]struct{}), order: make([]uint64, 0, size), maxSize: size}
}

// Add records key, evicting the oldest entry if the list is full.
func (t *TabuList) Add(key uint64) {
	if _, exists := t.items[key]; exists {
		return
	}
	if len(t.order) >= t.maxSize {
		oldest := t.order[0]
		t.order = t.order[1:]
		delete(t.items, oldest)
	}
	t.items[key] = struct{}{}
	t.order = append(t.order, key)
}

// Contains reports whether key was recently applied.
func (t *TabuList) Contains(key uint64) bool {
	_, exists := t.items[key]
	return exists
}
