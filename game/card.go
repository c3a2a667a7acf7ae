package game

import "math/rand"

const (
	// CardPoolSize is the number of selectable cards per room.
	CardPoolSize = 300

	// MaxCardsPerPlayer caps how many cards one player may hold in a round.
	MaxCardsPerPlayer = 2

	// MaxNumber is the highest callable bingo number.
	MaxNumber = 75

	gridSize = 5
	freeRow  = 2
	freeCol  = 2
)

// Mode is the win condition a room plays.
type Mode string

const (
	ModeOneLine   Mode = "ande-zig"  // one completed line or all four corners
	ModeTwoLine   Mode = "hulet-zig" // two completed lines, corners excluded
	ModeFullHouse Mode = "mulu-zig"  // every cell marked
)

// Modes lists all playable modes.
var Modes = []Mode{ModeOneLine, ModeTwoLine, ModeFullHouse}

// ValidMode reports whether m is a playable mode.
func ValidMode(m Mode) bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Card is a 5x5 bingo grid. Column c holds numbers from [15c+1, 15c+15];
// the center cell is the free space, stored as 0.
type Card [gridSize][gridSize]int

// PatternMask marks card cells for client-side highlighting.
type PatternMask [gridSize][gridSize]bool

// ValidCardID reports whether id addresses a card in the pool.
func ValidCardID(id int) bool {
	return id >= 1 && id <= CardPoolSize
}

// Generate derives the card for the given id. The same id always yields
// the same grid, in every process, so clients select cards by id alone
// and reconstruct the numbers locally.
func Generate(cardID int) Card {
	rng := rand.New(rand.NewSource(int64(cardID) * 2654435761))

	var card Card
	for col := 0; col < gridSize; col++ {
		perm := rng.Perm(15)
		for row := 0; row < gridSize; row++ {
			card[row][col] = 15*col + 1 + perm[row]
		}
	}
	card[freeRow][freeCol] = 0
	return card
}

// IsMarked reports whether the cell at (row, col) counts as daubed:
// either it is the free center or its number has been called.
func IsMarked(card Card, called map[int]bool, row, col int) bool {
	if row == freeRow && col == freeCol {
		return true
	}
	return called[card[row][col]]
}

// LineCount summarizes the completed patterns on a card.
type LineCount struct {
	Rows    int
	Cols    int
	Diag1   bool // top-left to bottom-right
	Diag2   bool // top-right to bottom-left
	Corners bool
}

// Lines returns the number of completed straight lines (rows, columns
// and diagonals). Corners are tracked separately because hulet-zig does
// not count them.
func (lc LineCount) Lines() int {
	n := lc.Rows + lc.Cols
	if lc.Diag1 {
		n++
	}
	if lc.Diag2 {
		n++
	}
	return n
}

// CountCompletedLines checks every row, column, both diagonals and the
// four corners of the card against the called set.
func CountCompletedLines(card Card, called map[int]bool) LineCount {
	var lc LineCount

	for row := 0; row < gridSize; row++ {
		complete := true
		for col := 0; col < gridSize; col++ {
			if !IsMarked(card, called, row, col) {
				complete = false
				break
			}
		}
		if complete {
			lc.Rows++
		}
	}

	for col := 0; col < gridSize; col++ {
		complete := true
		for row := 0; row < gridSize; row++ {
			if !IsMarked(card, called, row, col) {
				complete = false
				break
			}
		}
		if complete {
			lc.Cols++
		}
	}

	lc.Diag1, lc.Diag2 = true, true
	for i := 0; i < gridSize; i++ {
		if !IsMarked(card, called, i, i) {
			lc.Diag1 = false
		}
		if !IsMarked(card, called, i, gridSize-1-i) {
			lc.Diag2 = false
		}
	}

	lc.Corners = IsMarked(card, called, 0, 0) &&
		IsMarked(card, called, 0, gridSize-1) &&
		IsMarked(card, called, gridSize-1, 0) &&
		IsMarked(card, called, gridSize-1, gridSize-1)

	return lc
}

// ValidateWin reports whether the card satisfies the mode's win
// condition under the called set. Pure function of its inputs; the
// server and any client-side check agree by construction.
func ValidateWin(card Card, called map[int]bool, mode Mode) bool {
	switch mode {
	case ModeOneLine:
		lc := CountCompletedLines(card, called)
		return lc.Lines() >= 1 || lc.Corners
	case ModeTwoLine:
		return CountCompletedLines(card, called).Lines() >= 2
	case ModeFullHouse:
		for row := 0; row < gridSize; row++ {
			for col := 0; col < gridSize; col++ {
				if !IsMarked(card, called, row, col) {
					return false
				}
			}
		}
		return true
	}
	return false
}

// DerivePattern returns the union of all completed lines (and corners,
// for ande-zig) as a highlight mask. For mulu-zig the mask is simply the
// marked cells. Always recomputed from the called set, never stored.
func DerivePattern(card Card, called map[int]bool, mode Mode) PatternMask {
	var mask PatternMask

	if mode == ModeFullHouse {
		for row := 0; row < gridSize; row++ {
			for col := 0; col < gridSize; col++ {
				mask[row][col] = IsMarked(card, called, row, col)
			}
		}
		return mask
	}

	lineDone := func(cells [][2]int) bool {
		for _, cell := range cells {
			if !IsMarked(card, called, cell[0], cell[1]) {
				return false
			}
		}
		return true
	}
	markLine := func(cells [][2]int) {
		for _, cell := range cells {
			mask[cell[0]][cell[1]] = true
		}
	}

	for row := 0; row < gridSize; row++ {
		cells := make([][2]int, 0, gridSize)
		for col := 0; col < gridSize; col++ {
			cells = append(cells, [2]int{row, col})
		}
		if lineDone(cells) {
			markLine(cells)
		}
	}
	for col := 0; col < gridSize; col++ {
		cells := make([][2]int, 0, gridSize)
		for row := 0; row < gridSize; row++ {
			cells = append(cells, [2]int{row, col})
		}
		if lineDone(cells) {
			markLine(cells)
		}
	}

	diag1 := make([][2]int, 0, gridSize)
	diag2 := make([][2]int, 0, gridSize)
	for i := 0; i < gridSize; i++ {
		diag1 = append(diag1, [2]int{i, i})
		diag2 = append(diag2, [2]int{i, gridSize - 1 - i})
	}
	if lineDone(diag1) {
		markLine(diag1)
	}
	if lineDone(diag2) {
		markLine(diag2)
	}

	if mode == ModeOneLine {
		corners := [][2]int{{0, 0}, {0, gridSize - 1}, {gridSize - 1, 0}, {gridSize - 1, gridSize - 1}}
		if lineDone(corners) {
			markLine(corners)
		}
	}

	return mask
}

// CalledSet builds a lookup set from the called-number history.
func CalledSet(numbers []int) map[int]bool {
	set := make(map[int]bool, len(numbers))
	for _, n := range numbers {
		set[n] = true
	}
	return set
}
