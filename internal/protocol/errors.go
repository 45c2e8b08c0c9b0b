package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"
	ErrBusy            = "E_BUSY"

	// Session/command layer.
	ErrBadRequest          = "E_BAD_REQUEST"
	ErrConfigMissing       = "E_CONFIG_MISSING"
	ErrUnreachable         = "E_UNREACHABLE"
	ErrInvalidPosition     = "E_INVALID_POSITION"
	ErrStale               = "E_STALE"
	ErrUnknownCharacter    = "E_UNKNOWN_CHARACTER"
	ErrNoMonster           = "E_NO_MONSTER"
	ErrNoApproach          = "E_NO_APPROACH"
	ErrInsufficientFunds   = "E_INSUFFICIENT_FUNDS"
	ErrUnknownUpgrade      = "E_UNKNOWN_UPGRADE"
	ErrMaxLevel            = "E_MAX_LEVEL"
	ErrCharacterDead       = "E_CHARACTER_DEAD"
	ErrCharacterCapReached = "E_CHARACTER_CAP"
	ErrInternal            = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest:     {},
	ErrBusy:                {},
	ErrBadRequest:          {},
	ErrConfigMissing:       {},
	ErrUnreachable:         {},
	ErrInvalidPosition:     {},
	ErrStale:               {},
	ErrUnknownCharacter:    {},
	ErrNoMonster:           {},
	ErrNoApproach:          {},
	ErrInsufficientFunds:   {},
	ErrUnknownUpgrade:      {},
	ErrMaxLevel:            {},
	ErrCharacterDead:       {},
	ErrCharacterCapReached: {},
	ErrInternal:            {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
