package symmetry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
)

// allBoards returns every assignment of the three cell values to the nine squares.
func allBoards() []entity.Board {
	cells := [3]entity.Cell{entity.CellEmpty, entity.CellX, entity.CellO}
	boards := make([]entity.Board, 0, 19683)

	for n := 0; n < 19683; n++ {
		var board entity.Board
		rest := n
		for i := range board {
			board[i] = cells[rest%3]
			rest /= 3
		}
		boards = append(boards, board)
	}

	return boards
}

func sameSet(t *testing.T, want, got []entity.Board) {
	t.Helper()

	assert.ElementsMatch(t, want, got)
}

func TestTransforms(t *testing.T) {
	t.Run("Group has eight distinct elements starting with identity", func(t *testing.T) {
		transforms := Transforms()

		seen := make(map[permutation]struct{})
		for _, transform := range transforms {
			seen[transform.perm] = struct{}{}
		}

		assert.Len(t, seen, 8)
		assert.Equal(t, "identity", transforms[0].Name)
		assert.Equal(t, identity, transforms[0].perm)
	})

	t.Run("Group is closed under composition", func(t *testing.T) {
		elements := make(map[permutation]struct{})
		for _, transform := range Transforms() {
			elements[transform.perm] = struct{}{}
		}

		for _, a := range Transforms() {
			for _, b := range Transforms() {
				_, ok := elements[a.perm.then(b.perm)]
				assert.True(t, ok, "%s then %s", a.Name, b.Name)
			}
		}
	})

	t.Run("Four rotations return the original board", func(t *testing.T) {
		board := entity.MustParseBoard("XO  X   O")

		rotated := board
		for i := 0; i < 4; i++ {
			rotated = Rotate(rotated)
		}

		assert.Equal(t, board, rotated)
		assert.Equal(t, board, Reflect(Reflect(board)))
	})
}

func TestRotateAndReflect(t *testing.T) {
	// Given: X in the top-left corner
	board := entity.MustParseBoard("X        ")

	// When: rotating and reflecting
	rotated := Rotate(board)
	reflected := Reflect(board)

	// Then: the mark moves to the top-right corner in both cases
	assert.Equal(t, "  X      ", rotated.String())
	assert.Equal(t, "  X      ", reflected.String())

	// And: a second rotation moves it to the bottom-right corner
	assert.Equal(t, "        X", Rotate(rotated).String())
}

func TestOrbit(t *testing.T) {
	t.Run("Empty board is its own orbit", func(t *testing.T) {
		orbit := Orbit(entity.EmptyBoard())

		require.Len(t, orbit, 1)
		assert.Equal(t, entity.EmptyBoard(), orbit[0])
	})

	t.Run("Corner mark has four images", func(t *testing.T) {
		orbit := Orbit(entity.MustParseBoard("X        "))

		sameSet(t, []entity.Board{
			entity.MustParseBoard("X        "),
			entity.MustParseBoard("  X      "),
			entity.MustParseBoard("      X  "),
			entity.MustParseBoard("        X"),
		}, orbit)
	})

	t.Run("Asymmetric board has eight images", func(t *testing.T) {
		orbit := Orbit(entity.MustParseBoard("XO       "))

		assert.Len(t, orbit, 8)
	})

	t.Run("Every board is in its own orbit and orbits have one to eight members", func(t *testing.T) {
		for _, board := range allBoards() {
			orbit := Orbit(board)

			require.Equal(t, board, orbit[0])
			require.GreaterOrEqual(t, len(orbit), 1)
			require.LessOrEqual(t, len(orbit), 8)
		}
	})
}

func TestCanonicalForm(t *testing.T) {
	t.Run("Canonical form is the minimum of the orbit", func(t *testing.T) {
		for _, board := range allBoards() {
			canonical := CanonicalForm(board)

			for _, image := range Orbit(board) {
				require.False(t, image.Less(canonical), "%q below %q", image, canonical)
			}
		}
	})

	t.Run("Canonical form is idempotent and keeps the orbit", func(t *testing.T) {
		for _, board := range allBoards() {
			canonical := CanonicalForm(board)

			require.Equal(t, canonical, CanonicalForm(canonical))
			require.ElementsMatch(t, Orbit(board), Orbit(canonical))
		}
	})

	t.Run("Canonical transform maps the board onto its canonical form", func(t *testing.T) {
		for _, board := range allBoards() {
			canonical, transform := CanonicalTransform(board)

			require.Equal(t, canonical, transform.Apply(board), transform.Name)
		}
	})

	t.Run("First moves collapse into corner, edge and centre", func(t *testing.T) {
		// Given: every board with a single X
		keys := make(map[entity.Board]struct{})
		for i := 0; i < entity.BoardSize; i++ {
			keys[CanonicalForm(entity.EmptyBoard().Play(i, entity.CellX))] = struct{}{}
		}

		// Then: exactly three classes remain
		assert.Len(t, keys, 3)
		assert.Contains(t, keys, entity.MustParseBoard("        X"))
		assert.Contains(t, keys, entity.MustParseBoard("       X "))
		assert.Contains(t, keys, entity.MustParseBoard("    X    "))

		// And: the top-left corner shares its key with every other corner
		topLeft := CanonicalForm(entity.MustParseBoard("X        "))
		for _, corner := range []int{2, 6, 8} {
			assert.Equal(t, topLeft, CanonicalForm(entity.EmptyBoard().Play(corner, entity.CellX)))
		}
	})
}

func TestEquivalent(t *testing.T) {
	a := entity.MustParseBoard("X   O    ")
	b := entity.MustParseBoard("    O   X")
	c := entity.MustParseBoard(" X  O    ")

	assert.True(t, Equivalent(a, b))
	assert.True(t, Equivalent(b, a))
	assert.False(t, Equivalent(a, c))
	assert.True(t, Equivalent(a, a))
}
