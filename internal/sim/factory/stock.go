package factory

import (
	"github.com/shopspring/decimal"

	"robotsline.dev/internal/sim/materials"
)

// Foo is one unit of raw foo.
type Foo struct{}

// Bar is one unit of raw bar; it remembers the extraction time that was
// rolled when mining started.
type Bar struct {
	Seconds int `json:"seconds"`
}

// Foobar is one assembled product. Serial numbers make each unit distinct;
// the sale price is fixed at assembly time.
type Foobar struct {
	Serial int             `json:"serial"`
	Price  decimal.Decimal `json:"price"`
}

// foobarPrice is the fixed unit sale price.
var foobarPrice = decimal.RequireFromString("1.00")

// Stock is the shared resource ledger: unreserved raw materials, finished
// foobars, the money balance and the robot roster. It is only ever touched
// from the simulation's single goroutine; operations that read then mutate
// are written as single atomic steps so no partial deduction is observable.
type Stock struct {
	foos    []Foo
	bars    []Bar
	foobars []Foobar
	money   decimal.Decimal
	robots  []*Robot

	nextRobotID int
	nextSerial  int
}

func NewStock() *Stock {
	return &Stock{money: decimal.Zero, nextRobotID: 1, nextSerial: 1}
}

// HasEnoughMaterial reports whether at least one unreserved foo and one
// unreserved bar are available. It is a precondition check only.
func (s *Stock) HasEnoughMaterial() bool {
	return len(s.foos) >= 1 && len(s.bars) >= 1
}

// StartAssembling removes exactly one foo and one bar and hands them to the
// caller for later resolution.
func (s *Stock) StartAssembling() (Foo, Bar, error) {
	if !s.HasEnoughMaterial() {
		return Foo{}, Bar{}, ErrNotEnoughMaterial
	}
	foo := s.foos[0]
	bar := s.bars[0]
	s.foos = s.foos[1:]
	s.bars = s.bars[1:]
	return foo, bar, nil
}

// EndAssemblingSuccess converts the reserved pair into a finished foobar.
func (s *Stock) EndAssemblingSuccess(Foo, Bar) {
	s.foobars = append(s.foobars, Foobar{Serial: s.nextSerial, Price: foobarPrice})
	s.nextSerial++
}

// EndAssemblingFailure returns the bar to the unreserved collection; the
// foo is lost (spoilage).
func (s *Stock) EndAssemblingFailure(_ Foo, bar Bar) {
	s.bars = append(s.bars, bar)
}

// NewMaterial appends one freshly mined unit. seconds is the extraction
// time that was rolled for this unit (bars keep it).
func (s *Stock) NewMaterial(m materials.Material, seconds int) {
	if m == materials.Bar {
		s.bars = append(s.bars, Bar{Seconds: seconds})
		return
	}
	s.foos = append(s.foos, Foo{})
}

// StartSelling removes min(maxNb, available) foobars from the front of the
// collection; it fails if fewer than minNb are available, leaving the
// collection untouched.
func (s *Stock) StartSelling(minNb, maxNb int) ([]Foobar, error) {
	n := maxNb
	if len(s.foobars) < n {
		n = len(s.foobars)
	}
	if n < minNb {
		return nil, ErrNotEnoughMaterial
	}
	batch := make([]Foobar, n)
	copy(batch, s.foobars[:n])
	s.foobars = s.foobars[n:]
	return batch, nil
}

// Sold credits the sale proceeds for a held batch.
func (s *Stock) Sold(batch []Foobar) {
	for _, fb := range batch {
		s.money = s.money.Add(fb.Price)
	}
}

// BuyRobot deducts the purchase cost and appends a new idle robot at the
// robots store. Both thresholds are checked before either is touched, so a
// failed purchase never deducts anything.
func (s *Stock) BuyRobot(requiredMoney decimal.Decimal, requiredFoos int) (*Robot, error) {
	if s.money.LessThan(requiredMoney) || len(s.foos) < requiredFoos {
		return nil, ErrNotEnoughMaterial
	}
	s.money = s.money.Sub(requiredMoney)
	s.foos = s.foos[requiredFoos:]
	return s.SpawnRobot(materials.RobotsStore), nil
}

// SpawnRobot creates the next robot of the roster, idle at the given
// location. Ids are assigned from 1 upward and never reused.
func (s *Stock) SpawnRobot(at materials.Location) *Robot {
	r := &Robot{ID: s.nextRobotID, State: idleAt(at)}
	s.nextRobotID++
	s.robots = append(s.robots, r)
	return r
}

// GetRobot looks a robot up by id. The second result is false when no such
// robot exists; callers branch on it instead of a sentinel.
func (s *Stock) GetRobot(id int) (*Robot, bool) {
	for _, r := range s.robots {
		if r.ID == id {
			return r, true
		}
	}
	return nil, false
}

func (s *Stock) FooCount() int           { return len(s.foos) }
func (s *Stock) BarCount() int           { return len(s.bars) }
func (s *Stock) FoobarCount() int        { return len(s.foobars) }
func (s *Stock) Money() decimal.Decimal  { return s.money }
func (s *Stock) RobotCount() int         { return len(s.robots) }

// Robots returns the roster in id order. The slice is shared; callers must
// not reorder it.
func (s *Stock) Robots() []*Robot { return s.robots }
