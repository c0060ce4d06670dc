package tuning

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Settings bundles every knob of a simulation run. It is built once at
// start and read-only afterwards.
type Settings struct {
	InitialRobotsNb          int       `yaml:"initial_robots_nb" json:"initial_robots_nb"`
	AssemblySuccessRate      float64   `yaml:"assembly_success_rate" json:"assembly_success_rate"`
	MiningBarRangeTime       Range     `yaml:"mining_bar_range_time" json:"mining_bar_range_time"`
	FoobarsSellingRange      Range     `yaml:"foobars_selling_range" json:"foobars_selling_range"`
	RobotCost                RobotCost `yaml:"robot_cost" json:"robot_cost"`
	LimitOfRobotsForGameOver int       `yaml:"limit_of_robots_for_game_over" json:"limit_of_robots_for_game_over"`

	// Seed drives every random roll (bar durations, assembly outcomes) so
	// runs are reproducible. 0 means the caller picks one.
	Seed int64 `yaml:"seed" json:"seed"`
}

type Range struct {
	Min int `yaml:"min" json:"min"`
	Max int `yaml:"max" json:"max"`
}

type RobotCost struct {
	Money string `yaml:"money" json:"money"`
	Foos  int    `yaml:"foos" json:"foos"`
}

// MoneyAmount parses the money part of the cost. Validate guarantees it
// parses, so the zero decimal is only returned for unvalidated settings.
func (c RobotCost) MoneyAmount() decimal.Decimal {
	d, err := decimal.NewFromString(c.Money)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func Default() Settings {
	s := Settings{}
	s.applyDefaults()
	return s
}

func Load(path string) (Settings, error) {
	var s Settings
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("settings.yaml: %w", err)
	}
	s.applyDefaults()
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Save writes the settings next to a run so it can be replayed later.
func (s Settings) Save(path string) error {
	b, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func (s *Settings) applyDefaults() {
	if s.InitialRobotsNb <= 0 {
		s.InitialRobotsNb = 2
	}
	if s.AssemblySuccessRate == 0 {
		s.AssemblySuccessRate = 0.6
	}
	if s.MiningBarRangeTime.Min <= 0 {
		s.MiningBarRangeTime.Min = 1
	}
	if s.MiningBarRangeTime.Max <= 0 {
		s.MiningBarRangeTime.Max = 2
	}
	if s.FoobarsSellingRange.Min <= 0 {
		s.FoobarsSellingRange.Min = 1
	}
	if s.FoobarsSellingRange.Max <= 0 {
		s.FoobarsSellingRange.Max = 5
	}
	if s.RobotCost.Money == "" {
		s.RobotCost.Money = "3.00"
	}
	if s.RobotCost.Foos <= 0 {
		s.RobotCost.Foos = 6
	}
	if s.LimitOfRobotsForGameOver <= 0 {
		s.LimitOfRobotsForGameOver = 30
	}
}

func (s Settings) Validate() error {
	if s.AssemblySuccessRate < 0 || s.AssemblySuccessRate > 1 {
		return fmt.Errorf("assembly_success_rate %v is outside [0,1]", s.AssemblySuccessRate)
	}
	if err := validRange("mining_bar_range_time", s.MiningBarRangeTime); err != nil {
		return err
	}
	if err := validRange("foobars_selling_range", s.FoobarsSellingRange); err != nil {
		return err
	}
	money, err := decimal.NewFromString(s.RobotCost.Money)
	if err != nil {
		return fmt.Errorf("robot_cost.money %q: %w", s.RobotCost.Money, err)
	}
	if money.IsNegative() {
		return fmt.Errorf("robot_cost.money %q is negative", s.RobotCost.Money)
	}
	if s.RobotCost.Foos < 0 {
		return fmt.Errorf("robot_cost.foos %d is negative", s.RobotCost.Foos)
	}
	if s.LimitOfRobotsForGameOver < 1 {
		return fmt.Errorf("limit_of_robots_for_game_over %d must be >= 1", s.LimitOfRobotsForGameOver)
	}
	return nil
}

func validRange(name string, r Range) error {
	if r.Min < 1 || r.Max < r.Min {
		return fmt.Errorf("%s (%d,%d) must satisfy 1 <= min <= max", name, r.Min, r.Max)
	}
	return nil
}

// Digest identifies a settings bundle (seed excluded: two runs of the same
// game with different seeds share a digest).
func (s Settings) Digest() string {
	s.Seed = 0
	b, _ := json.Marshal(s)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
