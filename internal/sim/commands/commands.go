// Package commands defines the immutable intent records that are the sole
// way external callers (directors, the interactive CLI) affect the
// simulation. The vocabulary is closed: the dispatcher routes by type
// switch, and Record is the flat JSON form used by the journal and the
// observer stream.
package commands

import "fmt"

type Command interface {
	isCommand()
}

// MoveRobot asks a robot to walk to a named location.
type MoveRobot struct {
	RobotID     int
	Destination string
}

// Mine asks a robot to extract a raw material ("foo" or "bar").
type Mine struct {
	RobotID  int
	Material string
}

// Assemble asks a robot to assemble a foobar from stock.
type Assemble struct {
	RobotID int
}

// SellFoobars asks a robot to sell a batch of foobars.
type SellFoobars struct {
	RobotID int
}

// BuyRobot asks a robot to purchase a new robot, funded by stock.
type BuyRobot struct {
	RobotID int
}

// Wait advances simulated time by whole seconds.
type Wait struct {
	Seconds int
}

func (MoveRobot) isCommand()   {}
func (Mine) isCommand()        {}
func (Assemble) isCommand()    {}
func (SellFoobars) isCommand() {}
func (BuyRobot) isCommand()    {}
func (Wait) isCommand()        {}

// Command kinds as recorded on the wire.
const (
	KindMoveRobot   = "MOVE_ROBOT"
	KindMine        = "MINE"
	KindAssemble    = "ASSEMBLE"
	KindSellFoobars = "SELL_FOOBARS"
	KindBuyRobot    = "BUY_ROBOT"
	KindWait        = "WAIT"
)

// Record is the flat serialized form of a Command.
type Record struct {
	Kind        string `json:"kind"`
	RobotID     int    `json:"robot_id,omitempty"`
	Destination string `json:"destination,omitempty"`
	Material    string `json:"material,omitempty"`
	Seconds     int    `json:"seconds,omitempty"`
}

// Describe flattens a command into its wire record.
func Describe(cmd Command) Record {
	switch c := cmd.(type) {
	case MoveRobot:
		return Record{Kind: KindMoveRobot, RobotID: c.RobotID, Destination: c.Destination}
	case Mine:
		return Record{Kind: KindMine, RobotID: c.RobotID, Material: c.Material}
	case Assemble:
		return Record{Kind: KindAssemble, RobotID: c.RobotID}
	case SellFoobars:
		return Record{Kind: KindSellFoobars, RobotID: c.RobotID}
	case BuyRobot:
		return Record{Kind: KindBuyRobot, RobotID: c.RobotID}
	case Wait:
		return Record{Kind: KindWait, Seconds: c.Seconds}
	}
	return Record{}
}

// Command rebuilds the typed command from a wire record.
func (r Record) Command() (Command, error) {
	switch r.Kind {
	case KindMoveRobot:
		return MoveRobot{RobotID: r.RobotID, Destination: r.Destination}, nil
	case KindMine:
		return Mine{RobotID: r.RobotID, Material: r.Material}, nil
	case KindAssemble:
		return Assemble{RobotID: r.RobotID}, nil
	case KindSellFoobars:
		return SellFoobars{RobotID: r.RobotID}, nil
	case KindBuyRobot:
		return BuyRobot{RobotID: r.RobotID}, nil
	case KindWait:
		return Wait{Seconds: r.Seconds}, nil
	}
	return nil, fmt.Errorf("unknown command kind %q", r.Kind)
}

func (c MoveRobot) String() string {
	return fmt.Sprintf("MoveRobot(robot=%d, destination=%q)", c.RobotID, c.Destination)
}

func (c Mine) String() string {
	return fmt.Sprintf("Mine(robot=%d, material=%q)", c.RobotID, c.Material)
}

func (c Assemble) String() string    { return fmt.Sprintf("Assemble(robot=%d)", c.RobotID) }
func (c SellFoobars) String() string { return fmt.Sprintf("SellFoobars(robot=%d)", c.RobotID) }
func (c BuyRobot) String() string    { return fmt.Sprintf("BuyRobot(robot=%d)", c.RobotID) }
func (c Wait) String() string        { return fmt.Sprintf("Wait(%ds)", c.Seconds) }
