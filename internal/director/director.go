// Package director produces command batches for the factory. The auto
// director plays the game by itself; the interactive director parses
// operator input.
package director

import (
	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/factory"
	"robotsline.dev/internal/sim/materials"
)

// Director plans the next batch of commands. The batch is executed in
// order; recoverable failures inside it are dropped by the dispatcher.
type Director interface {
	Plan() ([]commands.Command, error)
}

// Auto is the unattended player. Below five robots it funnels everything
// into buying the next robot; from five robots on it pins workers to
// stations so they stop commuting.
type Auto struct {
	f *factory.RoboticFactory

	// Robots already given an order in the current batch.
	used map[int]bool
}

func NewAuto(f *factory.RoboticFactory) *Auto {
	return &Auto{f: f}
}

func (a *Auto) Plan() ([]commands.Command, error) {
	a.used = make(map[int]bool)

	var batch []commands.Command
	if a.f.Stock().RobotCount() < 5 {
		batch = a.lowRobots()
	} else {
		batch = a.highRobots()
	}
	return append(batch, commands.Wait{Seconds: 1}), nil
}

// lowRobots gives purchase priority, then keeps the rest of the idle
// roster mining.
func (a *Auto) lowRobots() []commands.Command {
	batch := a.purchaseRobot()
	for alternate := 0; ; alternate++ {
		var next []commands.Command
		if alternate%2 == 0 {
			next = a.extractFoo()
		} else {
			next = a.extractBar()
		}
		if len(next) == 0 {
			return batch
		}
		batch = append(batch, next...)
	}
}

// highRobots pins the first robot to the robots store as the standing
// buyer and spreads the rest over the four working stations.
func (a *Auto) highRobots() []commands.Command {
	stations := []materials.Location{
		materials.FooMine,
		materials.BarMine,
		materials.AssemblyLine,
		materials.MaterialStore,
	}

	robots := a.f.Stock().Robots()
	var batch []commands.Command

	buyer := robots[0]
	if buyer.State.Location != materials.RobotsStore {
		batch = append(batch, commands.MoveRobot{RobotID: buyer.ID, Destination: string(materials.RobotsStore)})
	}
	batch = append(batch, commands.BuyRobot{RobotID: buyer.ID})

	for i, r := range robots[1:] {
		station := stations[i%len(stations)]
		if r.State.Location != station && r.Status() == "Idle" {
			batch = append(batch, commands.MoveRobot{RobotID: r.ID, Destination: string(station)})
		}
	}
	for _, r := range robots {
		switch r.State.Location {
		case materials.FooMine:
			batch = append(batch, commands.Mine{RobotID: r.ID, Material: materials.Foo.Name})
		case materials.BarMine:
			batch = append(batch, commands.Mine{RobotID: r.ID, Material: materials.Bar.Name})
		case materials.AssemblyLine:
			batch = append(batch, commands.Assemble{RobotID: r.ID})
		case materials.MaterialStore:
			batch = append(batch, commands.SellFoobars{RobotID: r.ID})
		}
	}
	return batch
}

func (a *Auto) purchaseRobot() []commands.Command {
	stock := a.f.Stock()
	cost := a.f.Settings().RobotCost
	canBuy := stock.Money().GreaterThanOrEqual(cost.MoneyAmount()) && stock.FooCount() >= cost.Foos
	if canBuy {
		if buyer, ok := a.idleRobotAt(materials.RobotsStore); ok {
			a.used[buyer.ID] = true
			return []commands.Command{commands.BuyRobot{RobotID: buyer.ID}}
		}
		return a.moveIdleRobotTo(materials.RobotsStore)
	}

	var batch []commands.Command
	if stock.Money().LessThan(cost.MoneyAmount()) {
		batch = append(batch, a.sellMaterials()...)
	}
	if stock.FooCount() < cost.Foos {
		batch = append(batch, a.extractFoo()...)
	}
	return batch
}

func (a *Auto) sellMaterials() []commands.Command {
	if a.f.Stock().FoobarCount() > 0 {
		if seller, ok := a.idleRobotAt(materials.MaterialStore); ok {
			a.used[seller.ID] = true
			return []commands.Command{commands.SellFoobars{RobotID: seller.ID}}
		}
		return a.moveIdleRobotTo(materials.MaterialStore)
	}
	return a.assembleFoobars()
}

func (a *Auto) assembleFoobars() []commands.Command {
	stock := a.f.Stock()
	if stock.HasEnoughMaterial() {
		if assembler, ok := a.idleRobotAt(materials.AssemblyLine); ok {
			a.used[assembler.ID] = true
			return []commands.Command{commands.Assemble{RobotID: assembler.ID}}
		}
		return a.moveIdleRobotTo(materials.AssemblyLine)
	}

	var batch []commands.Command
	if stock.FooCount() == 0 {
		batch = append(batch, a.extractFoo()...)
	}
	if stock.BarCount() == 0 {
		batch = append(batch, a.extractBar()...)
	}
	return batch
}

func (a *Auto) extractFoo() []commands.Command {
	if extractor, ok := a.idleRobotAt(materials.FooMine); ok {
		a.used[extractor.ID] = true
		return []commands.Command{commands.Mine{RobotID: extractor.ID, Material: materials.Foo.Name}}
	}
	return a.moveIdleRobotTo(materials.FooMine)
}

func (a *Auto) extractBar() []commands.Command {
	if extractor, ok := a.idleRobotAt(materials.BarMine); ok {
		a.used[extractor.ID] = true
		return []commands.Command{commands.Mine{RobotID: extractor.ID, Material: materials.Bar.Name}}
	}
	return a.moveIdleRobotTo(materials.BarMine)
}

// idleRobotAt finds an idle robot at the location that has not been
// commanded yet this batch.
func (a *Auto) idleRobotAt(loc materials.Location) (*factory.Robot, bool) {
	for _, r := range a.f.Stock().Robots() {
		if a.used[r.ID] || r.Status() != "Idle" {
			continue
		}
		if r.State.Location == loc {
			return r, true
		}
	}
	return nil, false
}

func (a *Auto) moveIdleRobotTo(dest materials.Location) []commands.Command {
	for _, r := range a.f.Stock().Robots() {
		if a.used[r.ID] || r.Status() != "Idle" {
			continue
		}
		a.used[r.ID] = true
		return []commands.Command{commands.MoveRobot{RobotID: r.ID, Destination: string(dest)}}
	}
	return nil
}
