// Package symmetry applies the eight rotations and reflections of the 3x3 grid
// to boards and picks the canonical member of each orbit.
package symmetry

import "github.com/rocketscienceinc/tictactoe-catalog/internal/entity"

// permutation maps a target square to the source square: next[i] = prev[p[i]].
type permutation [entity.BoardSize]int

var (
	rotatePerm  = permutation{6, 3, 0, 7, 4, 1, 8, 5, 2}
	reflectPerm = permutation{2, 1, 0, 5, 4, 3, 8, 7, 6}
	identity    = permutation{0, 1, 2, 3, 4, 5, 6, 7, 8}
)

// Transform is one element of the dihedral group of the square.
type Transform struct {
	Name string
	perm permutation
}

// group holds the eight transforms in orbit order: each rotation followed by its reflection.
var group = buildGroup()

func buildGroup() [8]Transform {
	names := [4]string{"identity", "rotate90", "rotate180", "rotate270"}

	var transforms [8]Transform

	rotation := identity
	for k := 0; k < 4; k++ {
		transforms[2*k] = Transform{Name: names[k], perm: rotation}
		transforms[2*k+1] = Transform{Name: names[k] + "+reflect", perm: rotation.then(reflectPerm)}

		rotation = rotation.then(rotatePerm)
	}

	return transforms
}

// then composes two permutations: the receiver is applied first, next second.
func (that permutation) then(next permutation) permutation {
	var composed permutation
	for i := range composed {
		composed[i] = that[next[i]]
	}

	return composed
}

// Apply returns the image of board under the transform.
func (that Transform) Apply(board entity.Board) entity.Board {
	var image entity.Board
	for i, src := range that.perm {
		image[i] = board[src]
	}

	return image
}

// Transforms returns the eight group elements, identity first.
func Transforms() [8]Transform {
	return group
}

func Rotate(board entity.Board) entity.Board {
	return Transform{perm: rotatePerm}.Apply(board)
}

func Reflect(board entity.Board) entity.Board {
	return Transform{perm: reflectPerm}.Apply(board)
}

// Orbit returns the distinct images of board in order of first appearance.
// The first element is always board itself.
func Orbit(board entity.Board) []entity.Board {
	orbit := make([]entity.Board, 0, len(group))

	for _, transform := range group {
		image := transform.Apply(board)
		if !contains(orbit, image) {
			orbit = append(orbit, image)
		}
	}

	return orbit
}

// CanonicalForm returns the smallest member of the orbit of board.
func CanonicalForm(board entity.Board) entity.Board {
	canonical, _ := CanonicalTransform(board)

	return canonical
}

// CanonicalTransform returns the canonical form of board together with the first
// transform, in group order, that maps board onto it.
func CanonicalTransform(board entity.Board) (entity.Board, Transform) {
	best, bestTransform := board, group[0]

	for _, transform := range group[1:] {
		if image := transform.Apply(board); image.Less(best) {
			best, bestTransform = image, transform
		}
	}

	return best, bestTransform
}

// Equivalent reports whether b is a symmetry image of a.
func Equivalent(a, b entity.Board) bool {
	return contains(Orbit(a), b)
}

func contains(boards []entity.Board, board entity.Board) bool {
	for _, b := range boards {
		if b == board {
			return true
		}
	}

	return false
}
