package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/catalog"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/symmetry"
)

const (
	sourceEngine     = "engine"
	sourceRepository = "repository"
)

type catalogRepo interface {
	Save(ctx context.Context, result *catalog.Catalog) error
	Load(ctx context.Context) (*catalog.Catalog, error)
}

type catalogMetrics interface {
	ObserveCatalog(result *catalog.Catalog, source string, elapsed time.Duration)
}

// Stats is the statistics report over the whole catalog.
type Stats struct {
	Reachable    int                  `json:"reachable"`
	Positions    int                  `json:"positions"`
	Classes      int                  `json:"classes"`
	Distribution map[int]int          `json:"orbit_size_distribution"`
	Depths       []catalog.DepthStats `json:"depths"`
}

// Canonical describes where a single board falls in the catalog.
type Canonical struct {
	Board     entity.Board `json:"board"`
	Key       entity.Board `json:"key"`
	Transform string       `json:"transform"`
	Orbit     int          `json:"orbit"`
	Depth     int          `json:"depth"`
	InCatalog bool         `json:"in_catalog"`
}

// ClassDetail lists the members of one class in ascending order.
type ClassDetail struct {
	Key     entity.Board   `json:"key"`
	Depth   int            `json:"depth"`
	Members []entity.Board `json:"members"`
}

type CatalogManager struct {
	logger   *slog.Logger
	repo     catalogRepo
	metrics  catalogMetrics
	parallel bool

	mu     sync.Mutex
	result *catalog.Catalog
}

// NewCatalogManager - repo may be nil, in which case the catalog is always built in memory.
func NewCatalogManager(logger *slog.Logger, repo catalogRepo, metrics catalogMetrics, parallel bool) *CatalogManager {
	return &CatalogManager{
		logger:   logger.With("component", "catalog"),
		repo:     repo,
		metrics:  metrics,
		parallel: parallel,
	}
}

// Catalog - returns the catalog, loading it from the repository or building it on first use.
// Concurrent callers share a single build, which outlives the cancellation of ctx.
func (that *CatalogManager) Catalog(ctx context.Context) (*catalog.Catalog, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.result != nil {
		return that.result, nil
	}

	// the result is shared, a disconnecting caller must not abort it for the others
	ctx = context.WithoutCancel(ctx)

	log := that.logger.With("method", "Catalog")
	started := time.Now()

	source := sourceRepository
	result, err := that.load(ctx)
	if err != nil {
		return nil, err
	}

	if result == nil {
		source = sourceEngine
		if result, err = that.build(ctx); err != nil {
			return nil, err
		}

		that.save(ctx, result)
	}

	elapsed := time.Since(started)
	if that.metrics != nil {
		that.metrics.ObserveCatalog(result, source, elapsed)
	}

	log.Info("catalog ready",
		"source", source,
		"reachable", result.Reachable,
		"positions", len(result.Positions),
		"classes", len(result.Classes),
		"elapsed", elapsed,
	)

	that.result = result

	return result, nil
}

func (that *CatalogManager) load(ctx context.Context) (*catalog.Catalog, error) {
	if that.repo == nil {
		return nil, nil
	}

	result, err := that.repo.Load(ctx)
	if errors.Is(err, apperror.ErrCatalogNotFound) {
		return nil, nil
	}

	if errors.Is(err, apperror.ErrCatalogCorrupt) {
		that.logger.Warn("stored catalog is corrupt, rebuilding", "method", "load", "error", err)
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}

	return result, nil
}

func (that *CatalogManager) build(ctx context.Context) (*catalog.Catalog, error) {
	if !that.parallel {
		return catalog.Build(), nil
	}

	result, err := catalog.BuildParallel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}

	return result, nil
}

// save stores a fresh build. A failed save is logged, the in-memory catalog stays usable.
func (that *CatalogManager) save(ctx context.Context, result *catalog.Catalog) {
	if that.repo == nil {
		return
	}

	if err := that.repo.Save(ctx, result); err != nil {
		that.logger.Error("failed to save catalog", "method", "save", "error", err)
	}
}

// Groups - returns the class keys of every depth, sorted, with member counts.
func (that *CatalogManager) Groups(ctx context.Context) ([]catalog.DepthGroup, error) {
	result, err := that.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	return catalog.GroupByDepth(result.Classes), nil
}

func (that *CatalogManager) Group(ctx context.Context, depth int) (*catalog.DepthGroup, error) {
	if err := catalog.ValidateDepth(depth); err != nil {
		return nil, err
	}

	groups, err := that.Groups(ctx)
	if err != nil {
		return nil, err
	}

	return &groups[depth], nil
}

func (that *CatalogManager) Top(ctx context.Context, depth, limit int) ([]catalog.ClassSummary, error) {
	result, err := that.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	top, err := catalog.TopClasses(result.Classes, depth, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to rank classes: %w", err)
	}

	return top, nil
}

func (that *CatalogManager) Stats(ctx context.Context) (*Stats, error) {
	result, err := that.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	depths := catalog.PerDepthStats(result.Classes, result.Positions)

	return &Stats{
		Reachable:    result.Reachable,
		Positions:    len(result.Positions),
		Classes:      len(result.Classes),
		Distribution: catalog.OrbitSizeDistribution(result.Classes),
		Depths:       depths[:],
	}, nil
}

// Canonicalize - parses raw and reports its canonical key and whether it is a catalogued
// decision position.
func (that *CatalogManager) Canonicalize(ctx context.Context, raw string) (*Canonical, error) {
	board, err := entity.ParseBoard(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}

	result, err := that.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	key, transform := symmetry.CanonicalTransform(board)
	_, inCatalog := result.Classes.Find(board)

	return &Canonical{
		Board:     board,
		Key:       key,
		Transform: transform.Name,
		Orbit:     len(symmetry.Orbit(board)),
		Depth:     board.Depth(),
		InCatalog: inCatalog,
	}, nil
}

// Class - returns the class that contains the decision position raw.
func (that *CatalogManager) Class(ctx context.Context, raw string) (*ClassDetail, error) {
	board, err := entity.ParseBoard(raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse board: %w", err)
	}

	result, err := that.Catalog(ctx)
	if err != nil {
		return nil, err
	}

	key, ok := result.Classes.Find(board)
	if !ok {
		return nil, fmt.Errorf("%w: %q", apperror.ErrNotDecisionPosition, board)
	}

	members := make([]entity.Board, 0, len(result.Classes[key]))
	for member := range result.Classes[key] {
		members = append(members, member)
	}

	sort.Slice(members, func(i, j int) bool {
		return members[i].Less(members[j])
	})

	return &ClassDetail{
		Key:     key,
		Depth:   result.Classes.Depth(key),
		Members: members,
	}, nil
}
