package world

import (
	"fmt"

	"go.uber.org/zap"

	"gridrealm.ai/internal/protocol"
	"gridrealm.ai/internal/sim/world/kernel/model"
)

type IntentKind uint8

const (
	IntentMove IntentKind = iota + 1
	IntentMark
	IntentTask
	IntentStop
	IntentUpgrade
	IntentSwitch
)

func (k IntentKind) String() string {
	switch k {
	case IntentMove:
		return protocol.IntentMove
	case IntentMark:
		return protocol.IntentMark
	case IntentTask:
		return protocol.IntentTask
	case IntentStop:
		return protocol.IntentStop
	case IntentUpgrade:
		return protocol.IntentUpgrade
	case IntentSwitch:
		return protocol.IntentSwitch
	}
	return fmt.Sprintf("intent(%d)", uint8(k))
}

// Intent is a queued command, applied at the next tick boundary.
type Intent struct {
	Kind        IntentKind
	CharacterID string
	Tile        model.Pos
	Task        model.Task
	Resource    string
	UpgradeID   string

	// Done, when set, receives the command result on the simulation goroutine.
	Done func(err error)
}

// IntentFromMsg converts a validated wire intent.
func IntentFromMsg(msg protocol.IntentMsg) (Intent, error) {
	in := Intent{CharacterID: msg.CharacterID, Resource: msg.Resource, UpgradeID: msg.UpgradeID}
	if msg.Tile != nil {
		in.Tile = model.PosFromArray(*msg.Tile)
	}
	switch msg.Intent {
	case protocol.IntentMove:
		in.Kind = IntentMove
	case protocol.IntentMark:
		in.Kind = IntentMark
	case protocol.IntentTask:
		in.Kind = IntentTask
		task, err := model.ParseTask(msg.Task)
		if err != nil {
			return in, fmt.Errorf("%w: %v", ErrBadIntent, err)
		}
		in.Task = task
	case protocol.IntentStop:
		in.Kind = IntentStop
	case protocol.IntentUpgrade:
		in.Kind = IntentUpgrade
	case protocol.IntentSwitch:
		in.Kind = IntentSwitch
	default:
		return in, fmt.Errorf("%w: intent %q", ErrBadIntent, msg.Intent)
	}
	return in, nil
}

// Submit queues in for the next tick.
func (w *World) Submit(in Intent) { w.intents = append(w.intents, in) }

// Apply runs one intent immediately.
func (w *World) Apply(in Intent) error {
	switch in.Kind {
	case IntentMove:
		return w.MoveTo(in.CharacterID, in.Tile)
	case IntentMark:
		return w.ToggleMark(in.CharacterID, in.Tile)
	case IntentTask:
		return w.StartTask(in.CharacterID, in.Task, in.Resource)
	case IntentStop:
		return w.StopAutomation(in.CharacterID)
	case IntentUpgrade:
		return w.PurchaseUpgrade(in.UpgradeID)
	case IntentSwitch:
		return w.SwitchActive(in.CharacterID)
	}
	return fmt.Errorf("%w: %s", ErrBadIntent, in.Kind)
}

func (w *World) applyIntents() {
	pending := w.intents
	w.intents = nil
	for _, in := range pending {
		err := w.Apply(in)
		if err != nil {
			w.log.Debug("intent rejected",
				zap.Stringer("intent", in.Kind),
				zap.String("character", in.CharacterID),
				zap.Error(err))
		}
		if in.Done != nil {
			in.Done(err)
		}
	}
}
