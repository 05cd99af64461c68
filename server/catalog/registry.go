// Package catalog wires catalogs to their configured metastores and resolves
// (catalog, database, object) identifiers to the catalog serving them.
package catalog

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/hive"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/config"
	"github.com/gear6io/metacat/server/metastore"
	"github.com/gear6io/metacat/server/metastore/memory"
	"github.com/gear6io/metacat/server/metastore/sqlite"
	component "github.com/gear6io/metacat/server/shared"
	"github.com/rs/zerolog"
)

// RegistryComponentType identifies the registry component
const RegistryComponentType = "catalog_registry"

var (
	_ component.Component = (*hive.Catalog)(nil)
	_ component.Component = (*Registry)(nil)
)

// NewMetastore opens the metastore client described by cfg
func NewMetastore(ctx context.Context, cfg *config.MetastoreConfig, logger zerolog.Logger) (metastore.Client, error) {
	switch cfg.Type {
	case config.METASTORE_TYPE_MEMORY:
		return memory.NewStore(cfg.Version), nil
	case config.METASTORE_TYPE_SQLITE:
		store, err := sqlite.Open(ctx, sqlite.Options{Path: cfg.Path, Version: cfg.Version}, logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, errors.New(ErrUnsupportedMetastoreType, "unsupported metastore type", nil).AddContext("metastore_type", cfg.Type)
	}
}

// NewCatalog opens a catalog over the metastore cfg names. The catalog owns
// the metastore client and closes it on Close.
func NewCatalog(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*hive.Catalog, error) {
	client, err := NewMetastore(ctx, &cfg.Metastore, logger)
	if err != nil {
		return nil, err
	}
	cat, err := hive.Open(ctx, hive.Options{
		Name:                 cfg.Catalog.Name,
		DefaultDatabase:      cfg.Catalog.DefaultDatabase,
		DefaultStorageFormat: cfg.Catalog.DefaultStorageFormat,
		Warehouse:            cfg.Catalog.Warehouse,
	}, client, logger)
	if err != nil {
		client.Close()
		return nil, err
	}
	return cat, nil
}

// Registry holds open catalogs by name
type Registry struct {
	mu             sync.RWMutex
	catalogs       map[string]*hive.Catalog
	defaultCatalog string
}

// NewRegistry creates a registry. Identifiers without a catalog part resolve
// to defaultCatalog.
func NewRegistry(defaultCatalog string) *Registry {
	return &Registry{
		catalogs:       make(map[string]*hive.Catalog),
		defaultCatalog: defaultCatalog,
	}
}

func (r *Registry) Register(c *hive.Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.catalogs[c.Name()]; ok {
		return shared.NewCatalogAlreadyExists("catalog", c.Name())
	}
	r.catalogs[c.Name()] = c
	return nil
}

func (r *Registry) Get(name string) (*hive.Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.catalogs[name]
	if !ok {
		return nil, shared.NewCatalogNotFound("catalog", name)
	}
	return c, nil
}

// Names lists registered catalogs, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.catalogs))
	for name := range r.catalogs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve finds the catalog of id and the path inside it
func (r *Registry) Resolve(id model.Identifier) (*hive.Catalog, model.ObjectPath, error) {
	name := id.Catalog
	if name == "" {
		name = r.defaultCatalog
	}
	c, err := r.Get(name)
	if err != nil {
		return nil, model.ObjectPath{}, err
	}
	path := id.ObjectPath
	if path.Database == "" {
		path.Database = c.DefaultDatabase()
	}
	return c, path, nil
}

// ParseIdentifier accepts "object", "database.object" and
// "catalog.database.object". Missing parts are left empty for Resolve.
func ParseIdentifier(s string) (model.Identifier, error) {
	parts := strings.Split(s, ".")
	for _, p := range parts {
		if p == "" {
			return model.Identifier{}, shared.NewCatalogInvalidInput("identifier", "malformed identifier "+s)
		}
	}
	switch len(parts) {
	case 1:
		return model.NewIdentifier("", "", parts[0]), nil
	case 2:
		return model.NewIdentifier("", parts[0], parts[1]), nil
	case 3:
		return model.NewIdentifier(parts[0], parts[1], parts[2]), nil
	default:
		return model.Identifier{}, shared.NewCatalogInvalidInput("identifier", "too many parts in identifier "+s)
	}
}

func (r *Registry) GetType() string {
	return RegistryComponentType
}

// Shutdown shuts every registered catalog down and empties the registry. The
// first failure is returned after all catalogs were visited.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for name, c := range r.catalogs {
		if err := c.Shutdown(ctx); err != nil && first == nil {
			first = err
		}
		delete(r.catalogs, name)
	}
	return first
}

// Close is Shutdown without a deadline
func (r *Registry) Close() error {
	return r.Shutdown(context.Background())
}
