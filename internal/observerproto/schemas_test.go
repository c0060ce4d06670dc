package observerproto_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"robotsline.dev/internal/observerproto"
	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/factory"
)

func compile(t *testing.T, name string) *jsonschema.Schema {
	t.Helper()
	p := filepath.Join("..", "..", "schemas", name)
	s, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile %s: %v", name, err)
	}
	return s
}

func validate(t *testing.T, s *jsonschema.Schema, v any) {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if err := s.Validate(doc); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestSchemas_ValidateSamples(t *testing.T) {
	commandSchema := compile(t, "command.schema.json")
	roundSchema := compile(t, "round.schema.json")
	settingsSchema := compile(t, "settings.schema.json")

	for _, cmd := range []commands.Command{
		commands.MoveRobot{RobotID: 1, Destination: "foo mine"},
		commands.Mine{RobotID: 2, Material: "bar"},
		commands.Assemble{RobotID: 1},
		commands.SellFoobars{RobotID: 2},
		commands.BuyRobot{RobotID: 1},
		commands.Wait{Seconds: 10},
	} {
		validate(t, commandSchema, commands.Describe(cmd))
	}

	snap := factory.Snapshot{
		Tick:    12,
		Foos:    2,
		Bars:    1,
		Foobars: 0,
		Money:   "4.00",
		Robots: []factory.RobotView{
			{ID: 1, Status: "Idle", Location: "cafeteria"},
			{ID: 2, Status: "Mining bar at Bar Mine", Location: "bar mine"},
		},
	}
	applied := []commands.Record{
		{Kind: commands.KindMine, RobotID: 2, Material: "bar"},
	}
	validate(t, roundSchema, observerproto.NewRoundMsg(snap, applied, "deadbeef"))

	var settings any
	_ = json.Unmarshal([]byte(`{
	  "initial_robots_nb": 2,
	  "assembly_success_rate": 0.6,
	  "mining_bar_range_time": {"min": 1, "max": 2},
	  "foobars_selling_range": {"min": 1, "max": 5},
	  "robot_cost": {"money": "3.00", "foos": 6},
	  "limit_of_robots_for_game_over": 30,
	  "seed": 42
	}`), &settings)
	validate(t, settingsSchema, settings)
}

func TestSchemas_RejectBadFrames(t *testing.T) {
	commandSchema := compile(t, "command.schema.json")

	bad := []string{
		`{"kind":"LAUNCH","robot_id":1}`,
		`{"kind":"MOVE_ROBOT","robot_id":1}`,
		`{"kind":"MINE","robot_id":1,"material":"baz"}`,
	}
	for _, raw := range bad {
		var doc any
		if err := json.Unmarshal([]byte(raw), &doc); err != nil {
			t.Fatalf("unmarshal %s: %v", raw, err)
		}
		if err := commandSchema.Validate(doc); err == nil {
			t.Fatalf("accepted %s", raw)
		}
	}
}
