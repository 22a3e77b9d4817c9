package game

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// PlayCall is the kind of play an offense calls.
type PlayCall int

const (
	Pass PlayCall = iota
	Run
	Kickoff
	NoPlay
	Punt
	ExtraPoint
	FieldGoal
	QBKneel
	QBSpike
)

var playCallNames = [...]string{
	Pass:       "PASS",
	Run:        "RUN",
	Kickoff:    "KICKOFF",
	NoPlay:     "NO_PLAY",
	Punt:       "PUNT",
	ExtraPoint: "EXTRA_POINT",
	FieldGoal:  "FIELD_GOAL",
	QBKneel:    "QB_KNEEL",
	QBSpike:    "QB_SPIKE",
}

var upper = cases.Upper(language.Und)

func (p PlayCall) String() string {
	if p < 0 || int(p) >= len(playCallNames) {
		return fmt.Sprintf("PlayCall(%d)", int(p))
	}
	return playCallNames[p]
}

// ParsePlayCall accepts a play call name in any case, with spaces or
// hyphens in place of underscores ("qb kneel", "Field-Goal").
func ParsePlayCall(s string) (PlayCall, error) {
	name := upper.String(strings.TrimSpace(s))
	name = strings.NewReplacer(" ", "_", "-", "_").Replace(name)
	for i, n := range playCallNames {
		if n == name {
			return PlayCall(i), nil
		}
	}
	return 0, fmt.Errorf("unknown play call %q", s)
}

// PlayCalls returns every play call in enum order.
func PlayCalls() []PlayCall {
	out := make([]PlayCall, len(playCallNames))
	for i := range out {
		out[i] = PlayCall(i)
	}
	return out
}
