package rules

import (
	"fmt"

	"github.com/aljosa/paima-cards/internal/state"
)

// EndRule decides when a match is over.
type EndRule uint8

const (
	// EndRuleDisabled never ends a match.
	EndRuleDisabled EndRule = iota
	// EndRuleProperRoundLimit ends the match once every player has completed
	// NumberOfRounds turns.
	EndRuleProperRoundLimit
)

func (r EndRule) String() string {
	switch r {
	case EndRuleDisabled:
		return "disabled"
	case EndRuleProperRoundLimit:
		return "proper-round-limit"
	default:
		return fmt.Sprintf("EndRule(%d)", uint8(r))
	}
}

func ParseEndRule(s string) (EndRule, error) {
	switch s {
	case "", "disabled":
		return EndRuleDisabled, nil
	case "proper-round-limit":
		return EndRuleProperRoundLimit, nil
	default:
		return 0, fmt.Errorf("unknown match end rule %q", s)
	}
}

// Environment is the per-lobby configuration the rules read.
type Environment struct {
	Practice       bool
	NumberOfRounds int
	EndRule        EndRule
}

// MatchEnded reports whether ms is final under env.
func MatchEnded(env Environment, ms state.MatchState) bool {
	switch env.EndRule {
	case EndRuleProperRoundLimit:
		return env.NumberOfRounds > 0 && ms.ProperRound >= env.NumberOfRounds
	default:
		return false
	}
}
