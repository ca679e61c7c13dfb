package game

// Street represents the betting phase of a hand
type Street int

const (
	NoStreet Street = iota
	Preflop
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	return [...]string{"none", "preflop", "flop", "turn", "river", "showdown"}[s]
}

// Action represents a player action
type Action int

const (
	Fold Action = iota
	Check
	Call
	Bet
	Raise
)

func (a Action) String() string {
	return [...]string{"fold", "check", "call", "bet", "raise"}[a]
}

// ParseAction maps a wire action name to an Action.
func ParseAction(s string) (Action, bool) {
	switch s {
	case "fold":
		return Fold, true
	case "check":
		return Check, true
	case "call":
		return Call, true
	case "bet":
		return Bet, true
	case "raise":
		return Raise, true
	default:
		return 0, false
	}
}

// Phase represents the table's top-level state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseCountdown
	PhaseHand
)

func (p Phase) String() string {
	return [...]string{"idle", "countdown", "hand"}[p]
}
