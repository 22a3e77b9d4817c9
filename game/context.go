package game

import (
	"fmt"
	"strings"
)

// FeatureNames is the column order the play calling model was trained on.
var FeatureNames = []string{
	"qtr",
	"half_seconds_remaining",
	"down",
	"ydstogo",
	"yardline_100",
	"score_diff",
	"defteam_timeouts_remaining",
	"posteam_timeouts_remaining",
}

// Context is a play calling scenario seen from the offense.
type Context struct {
	Quarter     int `json:"quarter" yaml:"quarter"`
	HalfSeconds int `json:"half_seconds" yaml:"half_seconds"`
	Down        int `json:"down" yaml:"down"`
	Distance    int `json:"distance" yaml:"distance"`
	// YardLine counts from the offense's own goal line; above 50 is the
	// opponent's half.
	YardLine    int `json:"yard_line" yaml:"yard_line"`
	ScoreDiff   int `json:"score_diff" yaml:"score_diff"`
	OffTimeouts int `json:"off_timeouts" yaml:"off_timeouts"`
	DefTimeouts int `json:"def_timeouts" yaml:"def_timeouts"`
}

// DefaultContext is the opening snap of a half.
func DefaultContext() Context {
	return Context{
		Quarter:     1,
		HalfSeconds: 1800,
		Down:        0,
		Distance:    10,
		YardLine:    25,
		OffTimeouts: 3,
		DefTimeouts: 3,
	}
}

// Validate checks every field against its legal range.
func (c Context) Validate() error {
	checks := []struct {
		name     string
		val      int
		min, max int
	}{
		{"quarter", c.Quarter, 1, 4},
		{"half seconds", c.HalfSeconds, 0, 1800},
		{"down", c.Down, 0, 4},
		{"distance", c.Distance, 0, 100},
		{"yard line", c.YardLine, 0, 100},
		{"offense timeouts", c.OffTimeouts, 0, 3},
		{"defense timeouts", c.DefTimeouts, 0, 3},
	}
	for _, ch := range checks {
		if ch.val < ch.min || ch.val > ch.max {
			return fmt.Errorf("%s must be between %d-%d, got: %d", ch.name, ch.min, ch.max, ch.val)
		}
	}
	return nil
}

// Features returns the context as a feature vector in FeatureNames order.
func (c Context) Features() []float64 {
	return []float64{
		float64(c.Quarter),
		float64(c.HalfSeconds),
		float64(c.Down),
		float64(c.Distance),
		float64(c.YardLine),
		float64(c.ScoreDiff),
		float64(c.DefTimeouts),
		float64(c.OffTimeouts),
	}
}

func (c Context) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Q%d %s | ", c.Quarter, c.clock())
	if c.Down == 0 {
		b.WriteString("no down")
	} else {
		fmt.Fprintf(&b, "%s & %d", ordinal(c.Down), c.Distance)
	}
	fmt.Fprintf(&b, " | %s | ", c.fieldPosition())
	switch {
	case c.ScoreDiff > 0:
		fmt.Fprintf(&b, "up %d", c.ScoreDiff)
	case c.ScoreDiff < 0:
		fmt.Fprintf(&b, "down %d", -c.ScoreDiff)
	default:
		b.WriteString("tied")
	}
	fmt.Fprintf(&b, " | TO off %d def %d", c.OffTimeouts, c.DefTimeouts)
	return b.String()
}

// clock is the game clock within the quarter. The second and fourth
// quarters hold the last 900 seconds of a half.
func (c Context) clock() string {
	secs := c.HalfSeconds
	if secs >= 900 && (c.Quarter == 1 || c.Quarter == 3) {
		secs -= 900
	}
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

func (c Context) fieldPosition() string {
	switch {
	case c.YardLine == 50:
		return "midfield"
	case c.YardLine > 50:
		return fmt.Sprintf("opp %d", 100-c.YardLine)
	default:
		return fmt.Sprintf("own %d", c.YardLine)
	}
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return fmt.Sprintf("%dth", n)
	}
}
