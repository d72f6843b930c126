package tictactoe

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
)

// BoardSet is a set of boards keyed by exact value.
type BoardSet map[entity.Board]struct{}

// Add inserts board and reports whether it was new.
func (that BoardSet) Add(board entity.Board) bool {
	if _, ok := that[board]; ok {
		return false
	}

	that[board] = struct{}{}

	return true
}

func (that BoardSet) Contains(board entity.Board) bool {
	_, ok := that[board]
	return ok
}

type state struct {
	board entity.Board
	turn  entity.Cell
}

// Reachable - walks the game tree from the empty board with X to move and returns
// every board reached. Terminal boards are included but never expanded.
func Reachable() BoardSet {
	start := entity.EmptyBoard()

	visited := BoardSet{start: {}}
	expand(context.Background(), state{board: start, turn: entity.CellX}, visited)

	return visited
}

// ReachableParallel - same result as Reachable, with one goroutine per first move.
// Shard results are merged by set union.
func ReachableParallel(ctx context.Context) (BoardSet, error) {
	start := entity.EmptyBoard()

	var (
		mu     sync.Mutex
		merged = BoardSet{start: {}}
	)

	group, groupCtx := errgroup.WithContext(ctx)

	for cell := 0; cell < entity.BoardSize; cell++ {
		cell := cell
		group.Go(func() error {
			first := start.Play(cell, entity.CellX)

			shard := BoardSet{first: {}}
			expand(groupCtx, state{board: first, turn: entity.CellO}, shard)

			// a cancelled walk leaves a partial shard behind
			if err := groupCtx.Err(); err != nil {
				return fmt.Errorf("shard %d: %w", cell, err)
			}

			mu.Lock()
			defer mu.Unlock()

			for board := range shard {
				merged[board] = struct{}{}
			}

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, fmt.Errorf("failed to enumerate game tree: %w", err)
	}

	return merged, nil
}

// expand runs a depth-first traversal from root, recording every reached board in visited.
// A board is pushed only the first time it is seen. The walk stops early once ctx is done,
// callers check ctx.Err to tell a partial result from a complete one.
func expand(ctx context.Context, root state, visited BoardSet) {
	stack := []state{root}

	for len(stack) > 0 {
		if ctx.Err() != nil {
			return
		}

		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		// do not expand finished games
		if current.board.IsTerminal() {
			continue
		}

		next := entity.ToggleMark(current.turn)
		for cell, mark := range current.board {
			if mark != entity.CellEmpty {
				continue
			}

			child := current.board.Play(cell, current.turn)
			if visited.Add(child) {
				stack = append(stack, state{board: child, turn: next})
			}
		}
	}
}

// DecisionPositions - keeps the boards where X is to move on a live board with
// more than one empty square.
func DecisionPositions(reachable BoardSet) BoardSet {
	positions := make(BoardSet)

	for board := range reachable {
		if board.IsDecision() {
			positions[board] = struct{}{}
		}
	}

	return positions
}
