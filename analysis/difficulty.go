package analysis

import "fmt"

// Difficulty is a named playing strength; its value is the fixed
// search depth used for that level. Pure configuration, no behavior
// beyond the depth mapping.
type Difficulty int

const (
	Easy   Difficulty = 2
	Medium Difficulty = 3
	Hard   Difficulty = 4
	Master Difficulty = 5
)

// Depth returns the search depth for this level.
func (d Difficulty) Depth() int {
	return int(d)
}

func (d Difficulty) String() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Master:
		return "master"
	}
	return fmt.Sprintf("Difficulty(%d)", int(d))
}

// ParseDifficulty maps a level name to its Difficulty.
func ParseDifficulty(name string) (Difficulty, error) {
	switch name {
	case "easy":
		return Easy, nil
	case "medium":
		return Medium, nil
	case "hard":
		return Hard, nil
	case "master":
		return Master, nil
	}
	return 0, fmt.Errorf("unknown difficulty %q", name)
}
