// Package catalog partitions decision positions into symmetry classes and
// summarises the resulting classes by depth.
package catalog

import (
	"context"
	"fmt"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/symmetry"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/tictactoe"
)

// Classes maps a canonical key to the decision positions whose orbit minimum is that key.
//
// Symmetry only moves marks around, so every member of a class has the same number of
// X marks as the key. Depth relies on this and may look at any single member.
type Classes map[entity.Board]tictactoe.BoardSet

// BuildClasses - enumerates the game tree, filters decision positions and groups them
// into canonical classes.
func BuildClasses() (Classes, tictactoe.BoardSet) {
	positions := tictactoe.DecisionPositions(tictactoe.Reachable())

	return BuildClassesFrom(positions), positions
}

// BuildClassesFrom groups positions by canonical form. The key is the minimum over the
// full orbit, whether or not that image is itself one of positions.
func BuildClassesFrom(positions tictactoe.BoardSet) Classes {
	classes := make(Classes)

	for position := range positions {
		classes.Add(position)
	}

	return classes
}

// Add files position under its canonical key and returns the key. Adding a position
// twice keeps a single copy.
func (that Classes) Add(position entity.Board) entity.Board {
	key := symmetry.CanonicalForm(position)

	members, ok := that[key]
	if !ok {
		members = make(tictactoe.BoardSet)
		that[key] = members
	}

	members.Add(position)

	return key
}

// Depth returns the X-count of the class stored under key, or -1 for an unknown key.
func (that Classes) Depth(key entity.Board) int {
	for member := range that[key] {
		return member.Depth()
	}

	return -1
}

// Find returns the key of the class that contains position.
func (that Classes) Find(position entity.Board) (entity.Board, bool) {
	key := symmetry.CanonicalForm(position)

	members, ok := that[key]
	if !ok || !members.Contains(position) {
		return entity.Board{}, false
	}

	return key, true
}

// Positions returns the union of all member sets.
func (that Classes) Positions() tictactoe.BoardSet {
	positions := make(tictactoe.BoardSet)

	for _, members := range that {
		for member := range members {
			positions[member] = struct{}{}
		}
	}

	return positions
}

// Catalog is the complete engine output: the classes, the decision positions they
// partition and the number of boards the traversal reached.
type Catalog struct {
	Classes   Classes
	Positions tictactoe.BoardSet
	Reachable int
}

// Build - runs the whole engine once.
func Build() *Catalog {
	reachable := tictactoe.Reachable()

	return newCatalog(reachable)
}

// BuildParallel - like Build, with the game tree traversal sharded by first move.
func BuildParallel(ctx context.Context) (*Catalog, error) {
	reachable, err := tictactoe.ReachableParallel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	return newCatalog(reachable), nil
}

func newCatalog(reachable tictactoe.BoardSet) *Catalog {
	positions := tictactoe.DecisionPositions(reachable)

	return &Catalog{
		Classes:   BuildClassesFrom(positions),
		Positions: positions,
		Reachable: len(reachable),
	}
}
