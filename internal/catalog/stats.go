package catalog

import (
	"fmt"
	"sort"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/tictactoe"
)

// ClassSummary is a canonical key with the number of decision positions it stands for.
type ClassSummary struct {
	Key     entity.Board `json:"key"`
	Members int          `json:"members"`
}

// DepthStats counts positions and classes for one X-count.
type DepthStats struct {
	Depth      int `json:"depth"`
	MoveNumber int `json:"move_number"`
	Positions  int `json:"positions"`
	Classes    int `json:"classes"`
}

// DepthGroup lists the classes of one depth in ascending key order.
type DepthGroup struct {
	Depth      int            `json:"depth"`
	MoveNumber int            `json:"move_number"`
	Classes    []ClassSummary `json:"classes"`
}

// MoveNumber returns the ply X is about to play at depth: 1, 3, 5, 7 or 9.
func MoveNumber(depth int) int {
	return 2*depth + 1
}

// ValidateDepth checks that depth is within 0..entity.MaxDepth.
func ValidateDepth(depth int) error {
	if depth < 0 || depth > entity.MaxDepth {
		return fmt.Errorf("%w: %d not in 0..%d", apperror.ErrInvalidDepth, depth, entity.MaxDepth)
	}

	return nil
}

// OrbitSizeDistribution - maps a member count to the number of classes with that many members.
func OrbitSizeDistribution(classes Classes) map[int]int {
	distribution := make(map[int]int)

	for _, members := range classes {
		distribution[len(members)]++
	}

	return distribution
}

// PerDepthStats - counts decision positions and canonical classes for every depth.
func PerDepthStats(classes Classes, positions tictactoe.BoardSet) [entity.MaxDepth + 1]DepthStats {
	var stats [entity.MaxDepth + 1]DepthStats
	for depth := range stats {
		stats[depth] = DepthStats{Depth: depth, MoveNumber: MoveNumber(depth)}
	}

	for position := range positions {
		if depth := position.Depth(); depth <= entity.MaxDepth {
			stats[depth].Positions++
		}
	}

	for key := range classes {
		if depth := classes.Depth(key); depth >= 0 && depth <= entity.MaxDepth {
			stats[depth].Classes++
		}
	}

	return stats
}

// GroupByDepth - returns one group per depth, each holding its class keys sorted ascending.
// Depths without classes are present with an empty list.
func GroupByDepth(classes Classes) []DepthGroup {
	groups := make([]DepthGroup, entity.MaxDepth+1)
	for depth := range groups {
		groups[depth] = DepthGroup{
			Depth:      depth,
			MoveNumber: MoveNumber(depth),
			Classes:    []ClassSummary{},
		}
	}

	for key, members := range classes {
		depth := classes.Depth(key)
		if depth < 0 || depth > entity.MaxDepth {
			continue
		}

		groups[depth].Classes = append(groups[depth].Classes, ClassSummary{Key: key, Members: len(members)})
	}

	for _, group := range groups {
		sort.Slice(group.Classes, func(i, j int) bool {
			return group.Classes[i].Key.Less(group.Classes[j].Key)
		})
	}

	return groups
}

// TopClasses - returns up to limit classes of depth, largest first, ties broken by key.
func TopClasses(classes Classes, depth, limit int) ([]ClassSummary, error) {
	if err := ValidateDepth(depth); err != nil {
		return nil, err
	}

	summaries := make([]ClassSummary, 0)
	for key, members := range classes {
		if classes.Depth(key) == depth {
			summaries = append(summaries, ClassSummary{Key: key, Members: len(members)})
		}
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Members != summaries[j].Members {
			return summaries[i].Members > summaries[j].Members
		}

		return summaries[i].Key.Less(summaries[j].Key)
	})

	if limit >= 0 && len(summaries) > limit {
		summaries = summaries[:limit]
	}

	return summaries, nil
}
