package director

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"robotsline.dev/internal/sim/commands"
)

// ErrQuit is returned by the interactive director when the operator asks
// to leave.
var ErrQuit = fmt.Errorf("quit")

// Interactive reads one command per line from the operator.
type Interactive struct {
	in  *bufio.Scanner
	out io.Writer
}

func NewInteractive(in io.Reader, out io.Writer) *Interactive {
	return &Interactive{in: bufio.NewScanner(in), out: out}
}

const usage = `commands:
  move <robot> <destination>   walk a robot to a location
  mine <robot> <foo|bar>       extract a raw material
  assemble <robot>             assemble a foobar
  sell <robot>                 sell a batch of foobars
  buy <robot>                  buy a new robot
  wait <seconds>               let time pass
  quit`

func (d *Interactive) Plan() ([]commands.Command, error) {
	for {
		fmt.Fprint(d.out, "> ")
		if !d.in.Scan() {
			if err := d.in.Err(); err != nil {
				return nil, err
			}
			return nil, ErrQuit
		}
		line := strings.TrimSpace(d.in.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil, ErrQuit
		}
		cmd, err := Parse(line)
		if err != nil {
			fmt.Fprintf(d.out, "%v\n%s\n", err, usage)
			continue
		}
		return []commands.Command{cmd}, nil
	}
}

// Parse turns one operator line into a command.
func Parse(line string) (commands.Command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "move":
		if len(args) < 2 {
			return nil, fmt.Errorf("move needs a robot id and a destination")
		}
		id, err := parseRobotID(args[0])
		if err != nil {
			return nil, err
		}
		return commands.MoveRobot{RobotID: id, Destination: strings.Join(args[1:], " ")}, nil
	case "mine":
		if len(args) != 2 {
			return nil, fmt.Errorf("mine needs a robot id and a material")
		}
		id, err := parseRobotID(args[0])
		if err != nil {
			return nil, err
		}
		return commands.Mine{RobotID: id, Material: args[1]}, nil
	case "assemble":
		id, err := singleRobotID(verb, args)
		if err != nil {
			return nil, err
		}
		return commands.Assemble{RobotID: id}, nil
	case "sell":
		id, err := singleRobotID(verb, args)
		if err != nil {
			return nil, err
		}
		return commands.SellFoobars{RobotID: id}, nil
	case "buy":
		id, err := singleRobotID(verb, args)
		if err != nil {
			return nil, err
		}
		return commands.BuyRobot{RobotID: id}, nil
	case "wait":
		if len(args) != 1 {
			return nil, fmt.Errorf("wait needs a number of seconds")
		}
		seconds, err := strconv.Atoi(args[0])
		if err != nil || seconds < 0 {
			return nil, fmt.Errorf("bad duration %q", args[0])
		}
		return commands.Wait{Seconds: seconds}, nil
	}
	return nil, fmt.Errorf("unknown command %q", verb)
}

func singleRobotID(verb string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%s needs a robot id", verb)
	}
	return parseRobotID(args[0])
}

func parseRobotID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("bad robot id %q", s)
	}
	return id, nil
}
