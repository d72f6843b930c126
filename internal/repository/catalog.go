package repository

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-catalog/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/catalog"
	"github.com/rocketscienceinc/tictactoe-catalog/internal/entity"
)

const (
	reachableField = "reachable"
	positionsField = "positions"
	classesField   = "classes"
)

type CatalogRepository interface {
	Save(ctx context.Context, result *catalog.Catalog) error
	Load(ctx context.Context) (*catalog.Catalog, error)
	Delete(ctx context.Context) error
}

// dbCatalog keeps one redis set per class, an index set of class keys and a meta hash
// with the reachable, position and class counts.
// Keys are stored verbatim, spaces included.
type dbCatalog struct {
	client *redis.Client
	prefix string
}

func NewCatalogRepository(client *redis.Client, prefix string) CatalogRepository {
	return &dbCatalog{
		client: client,
		prefix: prefix,
	}
}

func (that *dbCatalog) indexKey() string {
	return that.prefix + ":classes"
}

func (that *dbCatalog) metaKey() string {
	return that.prefix + ":meta"
}

func (that *dbCatalog) classKey(key string) string {
	return that.prefix + ":class:" + key
}

func (that *dbCatalog) Save(ctx context.Context, result *catalog.Catalog) error {
	// the old catalog is dropped inside the same MULTI/EXEC, readers never see a gap
	err := that.client.Watch(ctx, func(tx *redis.Tx) error {
		oldKeys, err := tx.SMembers(ctx, that.indexKey()).Result()
		if err != nil {
			return fmt.Errorf("failed to get class index: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, that.catalogKeys(oldKeys)...)

			for key, members := range result.Classes {
				values := make([]any, 0, len(members))
				for member := range members {
					values = append(values, member.String())
				}

				pipe.SAdd(ctx, that.indexKey(), key.String())
				pipe.SAdd(ctx, that.classKey(key.String()), values...)
			}

			pipe.HSet(ctx, that.metaKey(),
				reachableField, result.Reachable,
				positionsField, len(result.Positions),
				classesField, len(result.Classes),
			)

			return nil
		})

		return err
	}, that.indexKey())
	if err != nil {
		return fmt.Errorf("failed to save catalog: %w", err)
	}

	return nil
}

func (that *dbCatalog) Load(ctx context.Context) (*catalog.Catalog, error) {
	keys, err := that.client.SMembers(ctx, that.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get class index: %w", err)
	}

	if len(keys) == 0 {
		return nil, apperror.ErrCatalogNotFound
	}

	cmds := make(map[string]*redis.StringSliceCmd, len(keys))
	if _, err = that.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, key := range keys {
			cmds[key] = pipe.SMembers(ctx, that.classKey(key))
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to get class members: %w", err)
	}

	classes := make(catalog.Classes, len(keys))
	for key, cmd := range cmds {
		for _, raw := range cmd.Val() {
			member, err := entity.ParseBoard(raw)
			if err != nil {
				return nil, fmt.Errorf("%w: member of class %q: %w", apperror.ErrCatalogCorrupt, key, err)
			}

			if !member.IsDecision() {
				return nil, fmt.Errorf("%w: %w: %q is not a decision position",
					apperror.ErrCatalogCorrupt, apperror.ErrInvalidBoard, raw)
			}

			// keys are recomputed, a stored key that disagrees means the data is corrupt
			if got := classes.Add(member); got.String() != key {
				return nil, fmt.Errorf("%w: %w: member %q belongs to %q, stored under %q",
					apperror.ErrCatalogCorrupt, apperror.ErrInvalidBoard, raw, got, key)
			}
		}
	}

	meta, err := that.loadMeta(ctx)
	if err != nil {
		return nil, err
	}

	result := &catalog.Catalog{
		Classes:   classes,
		Positions: classes.Positions(),
		Reachable: meta[reachableField],
	}

	if len(result.Classes) != meta[classesField] || len(result.Positions) != meta[positionsField] {
		return nil, fmt.Errorf("%w: loaded %d classes and %d positions, saved %d and %d",
			apperror.ErrCatalogCorrupt, len(result.Classes), len(result.Positions),
			meta[classesField], meta[positionsField])
	}

	return result, nil
}

// loadMeta reads the counters written by Save. A missing counter means the catalog was
// never completely saved.
func (that *dbCatalog) loadMeta(ctx context.Context) (map[string]int, error) {
	fields := []string{reachableField, positionsField, classesField}

	values, err := that.client.HMGet(ctx, that.metaKey(), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog metadata: %w", err)
	}

	meta := make(map[string]int, len(fields))
	for i, value := range values {
		raw, ok := value.(string)
		if !ok {
			return nil, fmt.Errorf("%w: missing %q", apperror.ErrCatalogNotFound, fields[i])
		}

		count, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is %q", apperror.ErrCatalogCorrupt, fields[i], raw)
		}

		meta[fields[i]] = count
	}

	return meta, nil
}

func (that *dbCatalog) Delete(ctx context.Context) error {
	keys, err := that.client.SMembers(ctx, that.indexKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to get class index: %w", err)
	}

	if len(keys) == 0 {
		return apperror.ErrCatalogNotFound
	}

	if err = that.client.Del(ctx, that.catalogKeys(keys)...).Err(); err != nil {
		return fmt.Errorf("failed to delete catalog: %w", err)
	}

	return nil
}

// catalogKeys lists every redis key of a catalog whose index holds classKeys.
func (that *dbCatalog) catalogKeys(classKeys []string) []string {
	keys := make([]string, 0, len(classKeys)+2)
	for _, key := range classKeys {
		keys = append(keys, that.classKey(key))
	}

	return append(keys, that.indexKey(), that.metaKey())
}
