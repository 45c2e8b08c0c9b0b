package protocol

import "encoding/json"

const Version = "1.0"

// Message types.
const (
	TypeHello   = "HELLO"
	TypeWelcome = "WELCOME"
	TypeIntent  = "INTENT"
	TypeFrame   = "FRAME"
	TypeAck     = "ACK"
)

// Intent kinds carried by INTENT messages.
const (
	IntentMove    = "MOVE"
	IntentMark    = "MARK"
	IntentTask    = "TASK"
	IntentStop    = "STOP"
	IntentUpgrade = "UPGRADE"
	IntentSwitch  = "SWITCH"
)

// BaseMessage lets us route unknown JSON messages by type.
type BaseMessage struct {
	Type            string `json:"type"`
	ProtocolVersion string `json:"protocol_version,omitempty"`
}

func DecodeBase(b []byte) (BaseMessage, error) {
	var m BaseMessage
	err := json.Unmarshal(b, &m)
	return m, err
}
