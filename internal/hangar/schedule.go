package hangar

import "time"

// Durations of the phases as observed on exec.xyxyll.com
const (
	OpenDuration  = 3900381 * time.Millisecond
	CloseDuration = 7200704 * time.Millisecond
)

// Start of cycle 0: 2025-10-16T13:43:24.402-04:00
var InitialOpenTime = time.Date(2025, time.October, 16, 17, 43, 24, 402000000, time.UTC)

// The light patterns over one cycle. Note the table ends at 185 minutes
// while the cycle is slightly longer (about one second); the calculator
// keeps the last pattern during that gap
var Thresholds = []Threshold{
	{0, 12 * time.Minute, [5]Color{Green, Green, Green, Green, Green}},
	{12 * time.Minute, 24 * time.Minute, [5]Color{Green, Green, Green, Green, Empty}},
	{24 * time.Minute, 36 * time.Minute, [5]Color{Green, Green, Green, Empty, Empty}},
	{36 * time.Minute, 48 * time.Minute, [5]Color{Green, Green, Empty, Empty, Empty}},
	{48 * time.Minute, 60 * time.Minute, [5]Color{Green, Empty, Empty, Empty, Empty}},
	{60 * time.Minute, 65 * time.Minute, [5]Color{Empty, Empty, Empty, Empty, Empty}},
	{65 * time.Minute, 89 * time.Minute, [5]Color{Red, Red, Red, Red, Red}},
	{89 * time.Minute, 113 * time.Minute, [5]Color{Green, Red, Red, Red, Red}},
	{113 * time.Minute, 137 * time.Minute, [5]Color{Green, Green, Red, Red, Red}},
	{137 * time.Minute, 161 * time.Minute, [5]Color{Green, Green, Green, Red, Red}},
	{161 * time.Minute, 185 * time.Minute, [5]Color{Green, Green, Green, Green, Red}},
}

// DefaultConfig returns the production hangar schedule
func DefaultConfig() Config {
	return Config{
		InitialOpenTime: InitialOpenTime,
		OpenDuration:    OpenDuration,
		CloseDuration:   CloseDuration,
		Thresholds:      Thresholds,
	}
}
