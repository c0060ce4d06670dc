package factory

import (
	"testing"

	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/materials"
)

func TestSell_AwayFromMaterialStoreIsDropped(t *testing.T) {
	for _, loc := range materials.All() {
		if loc == materials.MaterialStore {
			continue
		}
		f := bareFactory(t, nil)
		r := f.stock.SpawnRobot(loc)
		seedFoobars(f.stock, 1)

		if err := f.Execute(commands.SellFoobars{RobotID: r.ID}); err != nil {
			t.Fatalf("execute: %v", err)
		}
		if f.stock.FoobarCount() != 1 {
			t.Fatalf("at %q: foobars = %d, want 1", loc, f.stock.FoobarCount())
		}
		if !f.stock.Money().IsZero() {
			t.Fatalf("at %q: money = %s, want 0", loc, f.stock.Money())
		}
		if r.Status() != "Idle" {
			t.Fatalf("at %q: status = %q, want Idle", loc, r.Status())
		}
	}
}

func TestSell_BatchesAndProceeds(t *testing.T) {
	cases := []struct {
		initial    int
		finalMoney string
		finalStock int
	}{
		{1, "1.00", 0},
		{5, "5.00", 0},
		{10, "5.00", 5}, // at most 5 foobars per sale
	}
	for _, tc := range cases {
		f := bareFactory(t, nil)
		r := f.stock.SpawnRobot(materials.MaterialStore)
		seedFoobars(f.stock, tc.initial)

		if err := f.Execute(commands.SellFoobars{RobotID: r.ID}); err != nil {
			t.Fatalf("execute: %v", err)
		}

		// The batch is held by the selling robot, not yet paid for.
		if got := f.stock.FoobarCount(); got != tc.finalStock {
			t.Fatalf("initial %d: foobars = %d, want %d", tc.initial, got, tc.finalStock)
		}
		if !f.stock.Money().IsZero() {
			t.Fatalf("initial %d: money credited early: %s", tc.initial, f.stock.Money())
		}

		if err := f.Execute(commands.Wait{Seconds: SellingSeconds}); err != nil {
			t.Fatalf("wait: %v", err)
		}
		if got := f.stock.Money().StringFixed(2); got != tc.finalMoney {
			t.Fatalf("initial %d: money = %s, want %s", tc.initial, got, tc.finalMoney)
		}
		if r.Status() != "Idle" {
			t.Fatalf("initial %d: status = %q, want Idle", tc.initial, r.Status())
		}
	}
}

func TestSell_WithEmptyStockIsDropped(t *testing.T) {
	f := bareFactory(t, nil)
	r := f.stock.SpawnRobot(materials.MaterialStore)

	if err := f.Execute(commands.SellFoobars{RobotID: r.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if r.Status() != "Idle" {
		t.Fatalf("status = %q, want Idle", r.Status())
	}
	if !f.stock.Money().IsZero() {
		t.Fatalf("money = %s, want 0", f.stock.Money())
	}
}

func TestSell_StatusNamesTheBatchSize(t *testing.T) {
	f := bareFactory(t, nil)
	r := f.stock.SpawnRobot(materials.MaterialStore)
	seedFoobars(f.stock, 3)

	if err := f.Execute(commands.SellFoobars{RobotID: r.ID}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if r.Status() != "Selling 3 foobar(s)..." {
		t.Fatalf("status = %q", r.Status())
	}
}
