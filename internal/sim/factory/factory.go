package factory

import (
	"io"
	"log"
	"math/rand"

	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/materials"
	"robotsline.dev/internal/sim/tuning"
)

// RoundLogEntry is one journal line: the commands applied since the
// previous round and the state digest after this one.
type RoundLogEntry struct {
	Tick     uint64            `json:"tick"`
	Commands []commands.Record `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

// RoundLogger receives one entry per completed round. Implemented in
// internal/journal.
type RoundLogger interface {
	WriteRound(entry RoundLogEntry) error
}

// RoundObserver receives the post-round snapshot, the commands applied
// during that round and the state digest. Implemented by the observer
// transport.
type RoundObserver interface {
	OnRound(snap Snapshot, applied []commands.Record, digest string)
}

// RoboticFactory dispatches commands to robots and drives simulated time.
// It is single-threaded: command execution and tick advancement never
// overlap, and all effects are synchronous.
type RoboticFactory struct {
	settings tuning.Settings
	stock    *Stock
	rng      *rand.Rand
	logger   *log.Logger

	tick     uint64
	recorded []commands.Record

	roundLogger RoundLogger
	observer    RoundObserver
}

// New builds a factory from validated settings: an empty stock plus the
// configured number of robots, idle at the cafeteria.
func New(settings tuning.Settings) (*RoboticFactory, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	f := &RoboticFactory{
		settings: settings,
		stock:    NewStock(),
		rng:      rand.New(rand.NewSource(settings.Seed)),
		logger:   log.New(io.Discard, "", 0),
	}
	for i := 0; i < settings.InitialRobotsNb; i++ {
		f.stock.SpawnRobot(materials.Cafeteria)
	}
	return f, nil
}

func (f *RoboticFactory) SetLogger(logger *log.Logger)     { f.logger = logger }
func (f *RoboticFactory) SetRoundLogger(l RoundLogger)     { f.roundLogger = l }
func (f *RoboticFactory) SetRoundObserver(o RoundObserver) { f.observer = o }

func (f *RoboticFactory) Stock() *Stock             { return f.stock }
func (f *RoboticFactory) Settings() tuning.Settings { return f.settings }
func (f *RoboticFactory) CurrentTick() uint64       { return f.tick }

// Execute routes one command. Recoverable domain errors (invalid
// transitions, material shortages, unknown names) are logged and dropped;
// the only error that escapes is ErrGameOver, raised while waiting.
func (f *RoboticFactory) Execute(cmd commands.Command) error {
	var err error
	switch c := cmd.(type) {
	case commands.MoveRobot:
		err = f.moveRobot(c)
	case commands.Mine:
		err = f.mineMaterial(c)
	case commands.Assemble:
		err = f.assembleFoobar(c)
	case commands.SellFoobars:
		err = f.sellFoobars(c)
	case commands.BuyRobot:
		err = f.buyRobot(c)
	case commands.Wait:
		if err := f.Wait(c.Seconds); err != nil {
			if recoverable(err) {
				f.logger.Printf("dropped %v: %v", cmd, err)
				return nil
			}
			return err
		}
		return nil
	default:
		f.logger.Printf("dropped unknown command %T", cmd)
		return nil
	}

	if err != nil {
		if recoverable(err) {
			f.logger.Printf("dropped %v: %v", cmd, err)
			return nil
		}
		return err
	}
	f.recorded = append(f.recorded, commands.Describe(cmd))
	return nil
}

func (f *RoboticFactory) moveRobot(c commands.MoveRobot) error {
	r, ok := f.stock.GetRobot(c.RobotID)
	if !ok {
		f.logger.Printf("no robot %d, ignoring %v", c.RobotID, c)
		return nil
	}
	dest, err := materials.LocationFromName(c.Destination)
	if err != nil {
		return err
	}
	return r.move(dest)
}

func (f *RoboticFactory) mineMaterial(c commands.Mine) error {
	r, ok := f.stock.GetRobot(c.RobotID)
	if !ok {
		f.logger.Printf("no robot %d, ignoring %v", c.RobotID, c)
		return nil
	}
	m, err := materials.FromName(c.Material)
	if err != nil {
		return err
	}
	barRange := f.settings.MiningBarRangeTime
	return r.mine(m, f.rng, barRange.Min, barRange.Max)
}

func (f *RoboticFactory) assembleFoobar(c commands.Assemble) error {
	r, ok := f.stock.GetRobot(c.RobotID)
	if !ok {
		f.logger.Printf("no robot %d, ignoring %v", c.RobotID, c)
		return nil
	}
	return r.assemble(f.stock, f.settings.AssemblySuccessRate)
}

func (f *RoboticFactory) sellFoobars(c commands.SellFoobars) error {
	r, ok := f.stock.GetRobot(c.RobotID)
	if !ok {
		f.logger.Printf("no robot %d, ignoring %v", c.RobotID, c)
		return nil
	}
	selling := f.settings.FoobarsSellingRange
	return r.sell(f.stock, selling.Min, selling.Max)
}

func (f *RoboticFactory) buyRobot(c commands.BuyRobot) error {
	r, ok := f.stock.GetRobot(c.RobotID)
	if !ok {
		f.logger.Printf("no robot %d, ignoring %v", c.RobotID, c)
		return nil
	}
	cost := f.settings.RobotCost
	return r.buy(f.stock, cost.MoneyAmount(), cost.Foos)
}

// Wait advances simulated time by whole seconds. Each round runs every
// robot once, in roster order. The first round that leaves the roster at
// the configured limit returns ErrGameOver and aborts the remaining
// rounds.
func (f *RoboticFactory) Wait(seconds int) error {
	if seconds < 0 {
		return invalidTransitionf("cannot wait %d seconds", seconds)
	}
	for i := 0; i < seconds; i++ {
		if err := f.StepRound(); err != nil {
			return err
		}
	}
	return nil
}

// StepRound runs exactly one round: every robot's runRound in roster
// order, then journal/observer fan-out, then the game-over check.
func (f *RoboticFactory) StepRound() error {
	for _, r := range f.stock.Robots() {
		r.runRound(f.stock, f.rng)
	}
	f.tick++

	applied := f.recorded
	f.recorded = nil
	if f.roundLogger != nil || f.observer != nil {
		digest := f.StateDigest()
		if f.roundLogger != nil {
			entry := RoundLogEntry{Tick: f.tick, Commands: applied, Digest: digest}
			if err := f.roundLogger.WriteRound(entry); err != nil {
				f.logger.Printf("round journal: %v", err)
			}
		}
		if f.observer != nil {
			f.observer.OnRound(f.Snapshot(), applied, digest)
		}
	}

	if f.stock.RobotCount() >= f.settings.LimitOfRobotsForGameOver {
		return ErrGameOver
	}
	return nil
}
