package game

import (
	"fmt"
	"sort"
)

// Scenario is a named game situation used for demos and smoke checks.
type Scenario struct {
	Name    string
	Context Context
}

var scenarios = []Scenario{
	{"after_kickoff", Context{Quarter: 2, HalfSeconds: 900, Down: 1, Distance: 10, YardLine: 35, ScoreDiff: 0, DefTimeouts: 3, OffTimeouts: 3}},
	{"two_minute_drill", Context{Quarter: 2, HalfSeconds: 102, Down: 2, Distance: 6, YardLine: 39, ScoreDiff: -3, DefTimeouts: 2, OffTimeouts: 2}},
	{"goal_line_stand", Context{Quarter: 4, HalfSeconds: 18, Down: 4, Distance: 2, YardLine: 98, ScoreDiff: -6, DefTimeouts: 0, OffTimeouts: 1}},
	{"after_turnover", Context{Quarter: 3, HalfSeconds: 561, Down: 1, Distance: 10, YardLine: 76, ScoreDiff: 0, DefTimeouts: 3, OffTimeouts: 3}},
	{"ice_the_game", Context{Quarter: 4, HalfSeconds: 69, Down: 3, Distance: 2, YardLine: 62, ScoreDiff: 4, DefTimeouts: 2, OffTimeouts: 1}},
	{"hail_mary_setup", Context{Quarter: 2, HalfSeconds: 7, Down: 1, Distance: 10, YardLine: 54, ScoreDiff: 0, DefTimeouts: 1, OffTimeouts: 0}},
	{"fourth_down_decision", Context{Quarter: 3, HalfSeconds: 355, Down: 4, Distance: 1, YardLine: 55, ScoreDiff: 10, DefTimeouts: 3, OffTimeouts: 3}},
}

// Scenarios returns the built-in scenarios in presentation order.
func Scenarios() []Scenario {
	return append([]Scenario(nil), scenarios...)
}

// LookupScenario finds a built-in scenario by name.
func LookupScenario(name string) (Scenario, error) {
	for _, s := range scenarios {
		if s.Name == name {
			return s, nil
		}
	}
	names := make([]string, len(scenarios))
	for i, s := range scenarios {
		names[i] = s.Name
	}
	sort.Strings(names)
	return Scenario{}, fmt.Errorf("unknown scenario %q (have %v)", name, names)
}
