package factory

import (
	"testing"

	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/materials"
)

func TestBuy_ChargesMoneyAndFoos(t *testing.T) {
	f := bareFactory(t, nil)
	r := f.stock.SpawnRobot(materials.RobotsStore)
	seedFoos(f.stock, 10)
	f.stock.money = money("10.00")

	if err := f.Execute(commands.BuyRobot{RobotID: r.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := f.stock.Money().StringFixed(2); got != "7.00" {
		t.Fatalf("money = %s, want 7.00", got)
	}
	if f.stock.FooCount() != 4 {
		t.Fatalf("foos = %d, want 4", f.stock.FooCount())
	}
	if f.stock.RobotCount() != 2 {
		t.Fatalf("robots = %d, want 2", f.stock.RobotCount())
	}
	if r.Status() != "Idle" {
		t.Fatalf("buyer status = %q, want Idle", r.Status())
	}
}

func TestBuy_NewRobotStartsIdleAtRobotsStore(t *testing.T) {
	f := bareFactory(t, nil)
	r := f.stock.SpawnRobot(materials.RobotsStore)
	seedFoos(f.stock, 6)
	f.stock.money = money("3.00")

	if err := f.Execute(commands.BuyRobot{RobotID: r.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	bought, ok := f.stock.GetRobot(r.ID + 1)
	if !ok {
		t.Fatalf("bought robot not found")
	}
	if bought.Status() != "Idle" {
		t.Fatalf("status = %q, want Idle", bought.Status())
	}
	if bought.State.Location != materials.RobotsStore {
		t.Fatalf("location = %q, want %q", bought.State.Location, materials.RobotsStore)
	}
}

func TestBuy_ShortOnEitherResourceIsANoOp(t *testing.T) {
	cases := []struct {
		money string
		foos  int
	}{
		{"0.00", 0},
		{"10.00", 2}, // foos short
		{"2.00", 10}, // money short
	}
	for _, tc := range cases {
		f := bareFactory(t, nil)
		r := f.stock.SpawnRobot(materials.RobotsStore)
		seedFoos(f.stock, tc.foos)
		f.stock.money = money(tc.money)

		if err := f.Execute(commands.BuyRobot{RobotID: r.ID}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		// Neither resource is deducted on a failed purchase.
		if got := f.stock.Money().StringFixed(2); got != tc.money {
			t.Fatalf("money=%s foos=%d: money = %s, want %s", tc.money, tc.foos, got, tc.money)
		}
		if f.stock.FooCount() != tc.foos {
			t.Fatalf("money=%s foos=%d: foos = %d, want %d", tc.money, tc.foos, f.stock.FooCount(), tc.foos)
		}
		if f.stock.RobotCount() != 1 {
			t.Fatalf("money=%s foos=%d: robots = %d, want 1", tc.money, tc.foos, f.stock.RobotCount())
		}
	}
}

func TestBuy_AwayFromRobotsStoreIsDropped(t *testing.T) {
	f := bareFactory(t, nil)
	r := f.stock.SpawnRobot(materials.Cafeteria)
	seedFoos(f.stock, 10)
	f.stock.money = money("10.00")

	if err := f.Execute(commands.BuyRobot{RobotID: r.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := f.stock.Money().StringFixed(2); got != "10.00" {
		t.Fatalf("money = %s, want 10.00", got)
	}
	if f.stock.RobotCount() != 1 {
		t.Fatalf("robots = %d, want 1", f.stock.RobotCount())
	}
}
