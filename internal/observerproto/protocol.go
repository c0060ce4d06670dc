package observerproto

import (
	"robotsline.dev/internal/sim/commands"
	"robotsline.dev/internal/sim/factory"
)

// Version is the observer protocol version.
const Version = "0.1"

// Client -> Server. First message on the observer WS connection.
type SubscribeMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
}

// HTTP response for GET /v1/observer/bootstrap.
type BootstrapResponse struct {
	ProtocolVersion string   `json:"protocol_version"`
	RunID           string   `json:"run_id"`
	Tick            uint64   `json:"tick"`
	SettingsDigest  string   `json:"settings_digest"`
	Locations       []string `json:"locations"`
}

// Server -> Client. Sent after every simulated second.
type RoundMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`

	Foos    int    `json:"foos"`
	Bars    int    `json:"bars"`
	Foobars int    `json:"foobars"`
	Money   string `json:"money"`

	Robots   []RobotState      `json:"robots"`
	Commands []commands.Record `json:"commands,omitempty"`
	Digest   string            `json:"digest"`
}

type RobotState struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Location string `json:"location"`
}

// Server -> Client. Terminal frame once the roster hits the robot limit.
type GameOverMsg struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version"`
	Tick            uint64 `json:"tick"`
	Robots          int    `json:"robots"`
}

// NewRoundMsg flattens a factory snapshot into the wire frame.
func NewRoundMsg(snap factory.Snapshot, applied []commands.Record, digest string) RoundMsg {
	msg := RoundMsg{
		Type:            "ROUND",
		ProtocolVersion: Version,
		Tick:            snap.Tick,
		Foos:            snap.Foos,
		Bars:            snap.Bars,
		Foobars:         snap.Foobars,
		Money:           snap.Money,
		Commands:        applied,
		Digest:          digest,
	}
	for _, r := range snap.Robots {
		msg.Robots = append(msg.Robots, RobotState{
			ID:       r.ID,
			Status:   r.Status,
			Location: r.Location,
		})
	}
	return msg
}
