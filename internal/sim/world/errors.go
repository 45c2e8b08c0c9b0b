package world

import (
	"errors"

	"gridrealm.ai/internal/protocol"
	"gridrealm.ai/internal/sim/world/feature/economy/stats"
	"gridrealm.ai/internal/sim/zones"
)

var (
	ErrConfigMissing   = zones.ErrConfigMissing
	ErrUnreachable     = errors.New("goal unreachable")
	ErrInvalidPosition = errors.New("invalid position")
	ErrStaleReference  = errors.New("stale reference")

	ErrUnknownCharacter  = errors.New("unknown character")
	ErrNoMonster         = errors.New("no monster at tile")
	ErrNoApproachTile    = errors.New("no free approach tile")
	ErrInsufficientFunds = stats.ErrInsufficientFunds
	ErrMaxLevel          = stats.ErrMaxLevel
	ErrUnknownUpgrade    = errors.New("unknown upgrade")
	ErrCharacterDead     = errors.New("character is dead")
	ErrCharacterCap      = errors.New("character limit reached")
	ErrBadIntent         = errors.New("bad intent")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrConfigMissing, protocol.ErrConfigMissing},
	{ErrUnreachable, protocol.ErrUnreachable},
	{ErrInvalidPosition, protocol.ErrInvalidPosition},
	{ErrStaleReference, protocol.ErrStale},
	{ErrUnknownCharacter, protocol.ErrUnknownCharacter},
	{ErrNoMonster, protocol.ErrNoMonster},
	{ErrNoApproachTile, protocol.ErrNoApproach},
	{ErrInsufficientFunds, protocol.ErrInsufficientFunds},
	{ErrMaxLevel, protocol.ErrMaxLevel},
	{ErrUnknownUpgrade, protocol.ErrUnknownUpgrade},
	{ErrCharacterDead, protocol.ErrCharacterDead},
	{ErrCharacterCap, protocol.ErrCharacterCapReached},
	{ErrBadIntent, protocol.ErrBadRequest},
}

// Code maps a command error onto its wire code. Nil maps to "".
func Code(err error) string {
	if err == nil {
		return ""
	}
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return protocol.ErrInternal
}
