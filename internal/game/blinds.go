package game

// BlindLevel is one step of the escalation schedule
type BlindLevel struct {
	Small int `json:"small"`
	Big   int `json:"big"`
}

// DefaultLevels is the standard sit-and-go escalation schedule. The
// final level holds for the rest of the tournament.
var DefaultLevels = []BlindLevel{
	{Small: 10, Big: 20},
	{Small: 20, Big: 40},
	{Small: 40, Big: 80},
	{Small: 75, Big: 150},
	{Small: 150, Big: 300},
	{Small: 300, Big: 600},
	{Small: 500, Big: 1000},
	{Small: 1000, Big: 2000},
}

// DefaultHandsPerLevel is how many hands are played at each blind level
const DefaultHandsPerLevel = 10

// BlindManager escalates blinds on a hand count schedule. The level is
// a pure function of hands played, so replays land on the same blinds.
type BlindManager struct {
	levels        []BlindLevel
	handsPerLevel int
	handsPlayed   int
}

// NewBlindManager creates a blind manager. A nil schedule or
// non-positive cadence falls back to the defaults.
func NewBlindManager(levels []BlindLevel, handsPerLevel int) *BlindManager {
	if len(levels) == 0 {
		levels = DefaultLevels
	}
	if handsPerLevel <= 0 {
		handsPerLevel = DefaultHandsPerLevel
	}
	return &BlindManager{levels: levels, handsPerLevel: handsPerLevel}
}

// Level returns the current schedule index, capped at the final level
func (bm *BlindManager) Level() int {
	level := bm.handsPlayed / bm.handsPerLevel
	if level > len(bm.levels)-1 {
		level = len(bm.levels) - 1
	}
	return level
}

// Small returns the current small blind
func (bm *BlindManager) Small() int {
	return bm.levels[bm.Level()].Small
}

// Big returns the current big blind
func (bm *BlindManager) Big() int {
	return bm.levels[bm.Level()].Big
}

// HandsPlayed returns the number of completed hands
func (bm *BlindManager) HandsPlayed() int {
	return bm.handsPlayed
}

// HandComplete records a finished hand and reports whether the blinds
// just escalated.
func (bm *BlindManager) HandComplete() bool {
	before := bm.Level()
	bm.handsPlayed++
	return bm.Level() > before
}
