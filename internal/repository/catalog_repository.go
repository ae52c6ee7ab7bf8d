package repository

import (
	"context"
	"time"

	"property-service/pkg/cache"
	"property-service/prometheus"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	amenityCatalog   = "amenities"
	houseRuleCatalog = "house_rules"
)

// CatalogRepository resolves amenity and house rule names to ids. The
// vocabularies are read-only here; the cache is optional.
type CatalogRepository struct {
	db    *gorm.DB
	cache *cache.CatalogCache
}

func NewCatalogRepository(db *gorm.DB, c *cache.CatalogCache) *CatalogRepository {
	return &CatalogRepository{db: db, cache: c}
}

// ResolveAmenities returns the ids of the named amenities in input order with
// duplicates dropped, and the names that matched nothing.
func (r *CatalogRepository) ResolveAmenities(ctx context.Context, names []string) ([]uint, []string, error) {
	return r.resolve(ctx, amenityCatalog, names)
}

// ResolveHouseRules is ResolveAmenities for the house rule vocabulary
func (r *CatalogRepository) ResolveHouseRules(ctx context.Context, names []string) ([]uint, []string, error) {
	return r.resolve(ctx, houseRuleCatalog, names)
}

type catalogEntry struct {
	ID   uint
	Name string
}

func (r *CatalogRepository) resolve(ctx context.Context, table string, names []string) ([]uint, []string, error) {
	unique := dedupe(names)
	found := make(map[string]uint, len(unique))

	var uncached []string
	for _, name := range unique {
		if r.cache != nil {
			if id, ok := r.cache.Get(ctx, cache.Key(table, name)); ok {
				prometheus.RecordCatalogLookup(table, true)
				found[name] = id
				continue
			}
			prometheus.RecordCatalogLookup(table, false)
		}
		uncached = append(uncached, name)
	}

	if len(uncached) > 0 {
		defer prometheus.TrackDBOperation("select")(time.Now())

		var entries []catalogEntry
		err := r.db.WithContext(ctx).
			Table(table).
			Select("id", "name").
			Where("name IN ?", uncached).
			Scan(&entries).Error
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to resolve %s", table)
		}

		for _, entry := range entries {
			found[entry.Name] = entry.ID
			if r.cache != nil {
				r.cache.Set(ctx, cache.Key(table, entry.Name), entry.ID)
			}
		}
	}

	ids := make([]uint, 0, len(unique))
	var missing []string
	for _, name := range unique {
		id, ok := found[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		ids = append(ids, id)
	}

	return ids, missing, nil
}

func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
