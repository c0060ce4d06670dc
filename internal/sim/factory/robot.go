package factory

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"

	"robotsline.dev/internal/sim/materials"
)

// Fixed task durations, in simulated seconds.
const (
	TravelSeconds   = 5
	AssemblySeconds = 2
	SellingSeconds  = 10
)

type StateKind string

const (
	StateIdle       StateKind = "IDLE"
	StateMoving     StateKind = "MOVING"
	StateMining     StateKind = "MINING"
	StateAssembling StateKind = "ASSEMBLING"
	StateSelling    StateKind = "SELLING"
	StateHaunting   StateKind = "HAUNTING"
)

// State is the tagged per-robot task state. Only the fields of the active
// variant are meaningful; transitions replace the whole value (runRound
// assigns a fresh State rather than mutating through references).
type State struct {
	Kind      StateKind
	Remaining int
	Total     int
	Location  materials.Location

	// MOVING
	Destination materials.Location
	// MINING
	Material materials.Material
	// ASSEMBLING
	ReservedFoo Foo
	ReservedBar Bar
	SuccessRate float64
	// SELLING
	Batch []Foobar
}

func idleAt(loc materials.Location) State {
	return State{Kind: StateIdle, Location: loc}
}

// Status is the stable string contract consumed by presentation layers.
func (s State) Status() string {
	switch s.Kind {
	case StateMoving:
		return "Moving"
	case StateMining:
		return fmt.Sprintf("Mining %s at %s", s.Material.Name, s.Location.Title())
	case StateAssembling:
		return "Assembling a foobar..."
	case StateSelling:
		return fmt.Sprintf("Selling %d foobar(s)...", len(s.Batch))
	case StateHaunting:
		return "Haunting"
	}
	return "Idle"
}

// Robot is one worker of the factory.
type Robot struct {
	ID    int
	State State
}

func (r *Robot) Status() string { return r.State.Status() }

// move starts travel toward dest. Asking a robot that is already moving is
// an idempotent no-op: the current destination and countdown are kept.
func (r *Robot) move(dest materials.Location) error {
	switch r.State.Kind {
	case StateMoving:
		return nil
	case StateIdle:
		r.State = State{
			Kind:        StateMoving,
			Remaining:   TravelSeconds,
			Total:       TravelSeconds,
			Location:    materials.OnMyWay,
			Destination: dest,
		}
		return nil
	}
	return invalidTransitionf("robot %d cannot move while %s", r.ID, r.Status())
}

// mine starts extracting m. The robot must be idle at the material's mine;
// a bar's duration is rolled here, at the instant mining starts.
func (r *Robot) mine(m materials.Material, rng *rand.Rand, barMin, barMax int) error {
	if r.State.Kind != StateIdle {
		return invalidTransitionf("robot %d cannot mine while %s", r.ID, r.Status())
	}
	if r.State.Location != m.Source {
		return invalidTransitionf("robot %d cannot mine %s from %s", r.ID, m.Name, r.State.Location.Title())
	}
	seconds := m.ExtractionSeconds(rng, barMin, barMax)
	r.State = State{
		Kind:      StateMining,
		Remaining: seconds,
		Total:     seconds,
		Location:  m.Source,
		Material:  m,
	}
	return nil
}

// assemble reserves one foo and one bar from stock and starts assembling.
// A stock shortage surfaces as an invalid transition.
func (r *Robot) assemble(stock *Stock, successRate float64) error {
	if r.State.Kind != StateIdle {
		return invalidTransitionf("robot %d cannot assemble while %s", r.ID, r.Status())
	}
	if r.State.Location != materials.AssemblyLine {
		return invalidTransitionf("robot %d cannot assemble from %s", r.ID, r.State.Location.Title())
	}
	foo, bar, err := stock.StartAssembling()
	if err != nil {
		return &InvalidTransitionError{
			Reason: fmt.Sprintf("robot %d cannot assemble", r.ID),
			Cause:  err,
		}
	}
	r.State = State{
		Kind:        StateAssembling,
		Remaining:   AssemblySeconds,
		Total:       AssemblySeconds,
		Location:    materials.AssemblyLine,
		ReservedFoo: foo,
		ReservedBar: bar,
		SuccessRate: successRate,
	}
	return nil
}

// sell removes a batch of foobars from stock and starts selling it.
func (r *Robot) sell(stock *Stock, minNb, maxNb int) error {
	if r.State.Kind != StateIdle {
		return invalidTransitionf("robot %d cannot sell while %s", r.ID, r.Status())
	}
	if r.State.Location != materials.MaterialStore {
		return invalidTransitionf("robot %d cannot sell from %s", r.ID, r.State.Location.Title())
	}
	batch, err := stock.StartSelling(minNb, maxNb)
	if err != nil {
		return &InvalidTransitionError{
			Reason: fmt.Sprintf("robot %d cannot sell", r.ID),
			Cause:  err,
		}
	}
	r.State = State{
		Kind:      StateSelling,
		Remaining: SellingSeconds,
		Total:     SellingSeconds,
		Location:  materials.MaterialStore,
		Batch:     batch,
	}
	return nil
}

// buy purchases a new robot, funded by stock. The buyer facilitates the
// purchase and stays idle; the new robot spawns at the robots store.
func (r *Robot) buy(stock *Stock, requiredMoney decimal.Decimal, requiredFoos int) error {
	if r.State.Kind != StateIdle {
		return invalidTransitionf("robot %d cannot buy while %s", r.ID, r.Status())
	}
	if r.State.Location != materials.RobotsStore {
		return invalidTransitionf("robot %d cannot buy a robot from %s", r.ID, r.State.Location.Title())
	}
	_, err := stock.BuyRobot(requiredMoney, requiredFoos)
	return err
}

// runRound advances this robot by one simulated second. Idle and Haunting
// are fixed points; every other state counts down and, at zero, applies its
// completion effect on this same tick.
func (r *Robot) runRound(stock *Stock, rng *rand.Rand) {
	st := r.State
	switch st.Kind {
	case StateIdle, StateHaunting:
		return
	}

	st.Remaining--
	if st.Remaining > 0 {
		r.State = st
		return
	}

	switch st.Kind {
	case StateMoving:
		r.State = idleAt(st.Destination)
	case StateMining:
		stock.NewMaterial(st.Material, st.Total)
		r.State = idleAt(st.Location)
	case StateAssembling:
		if rng.Float64() < st.SuccessRate {
			stock.EndAssemblingSuccess(st.ReservedFoo, st.ReservedBar)
		} else {
			stock.EndAssemblingFailure(st.ReservedFoo, st.ReservedBar)
		}
		r.State = idleAt(materials.AssemblyLine)
	case StateSelling:
		stock.Sold(st.Batch)
		r.State = idleAt(materials.MaterialStore)
	}
}
