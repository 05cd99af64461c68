// Package hive is the catalog façade over a Hive-style metastore. Every
// operation is a synchronous request against metastore.Client; nothing is
// cached, so each read reflects the metastore at the time of the call.
//
// Alter operations read the stored object, merge the request into it and
// write the result back. The metastore offers no compare-and-swap, so an alter
// racing with another writer between the read and the write can lose that
// writer's update. Callers that need stronger guarantees must serialize their
// alters themselves.
package hive

import (
	"context"
	"strings"
	"time"

	"github.com/gear6io/metacat/pkg/errors"
	"github.com/gear6io/metacat/server/catalog/codec"
	"github.com/gear6io/metacat/server/catalog/model"
	"github.com/gear6io/metacat/server/catalog/shared"
	"github.com/gear6io/metacat/server/catalog/shim"
	"github.com/gear6io/metacat/server/metastore"
	"github.com/gear6io/metacat/server/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ComponentType identifies the catalog component
const ComponentType = "catalog"

// DefaultDatabaseName is used when Options leave the default database empty
const DefaultDatabaseName = "default"

// Options configure a Catalog
type Options struct {
	Name            string
	DefaultDatabase string
	// DefaultStorageFormat applies to native tables that name none
	DefaultStorageFormat string
	// Warehouse is the root of default database and table locations. Empty
	// leaves locations to the metastore.
	Warehouse string
	// Version overrides the version the metastore reports
	Version string
}

// Catalog implements catalog CRUD and statistics against one metastore
type Catalog struct {
	name            string
	defaultDatabase string
	client          metastore.Client
	shim            *shim.Shim
	codec           *codec.Codec
	logger          zerolog.Logger
	sessionID       string
}

// Open detects the metastore version, resolves its capabilities and makes
// sure the default database exists. A version that cannot be detected is
// fatal.
func Open(ctx context.Context, opts Options, client metastore.Client, logger zerolog.Logger) (*Catalog, error) {
	if opts.Name == "" {
		return nil, shared.NewCatalogInvalidInput("name", "catalog name is required")
	}
	if opts.DefaultDatabase == "" {
		opts.DefaultDatabase = DefaultDatabaseName
	}

	version := opts.Version
	if version == "" {
		reported, err := client.Version(ctx)
		if err != nil {
			return nil, shared.NewVersionDetection("", err)
		}
		version = reported
	}
	s, err := shim.Resolve(version)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.NewString()
	c := &Catalog{
		name:            opts.Name,
		defaultDatabase: opts.DefaultDatabase,
		client:          client,
		shim:            s,
		sessionID:       sessionID,
		logger: logger.With().
			Str("component", "catalog").
			Str("catalog", opts.Name).
			Str("session_id", sessionID).
			Logger(),
	}

	codecOpts := codec.Options{
		DefaultStorageFormat: opts.DefaultStorageFormat,
		OnDegrade:            c.onDegrade,
	}
	if opts.Warehouse != "" {
		codecOpts.Paths = shared.NewWarehouse(opts.Warehouse)
	}
	if c.codec, err = codec.New(s, codecOpts); err != nil {
		return nil, err
	}

	if err := c.ensureDefaultDatabase(ctx); err != nil {
		return nil, err
	}

	c.logger.Info().
		Str("metastore_version", s.ReportedVersion()).
		Str("resolved_version", s.Version()).
		Msg("Catalog opened")
	return c, nil
}

func (c *Catalog) ensureDefaultDatabase(ctx context.Context) error {
	_, err := c.client.GetDatabase(ctx, c.defaultDatabase)
	if err == nil {
		return nil
	}
	if !metastore.IsNoSuchObject(err) {
		return c.mapErr("open", err)
	}
	rec := c.codec.EncodeDatabase(c.defaultDatabase, &model.Database{Comment: "Default database"})
	if err := c.client.CreateDatabase(ctx, rec); err != nil && !metastore.IsAlreadyExists(err) {
		return c.mapErr("open", err)
	}
	c.logger.Info().Str("database", c.defaultDatabase).Msg("Created default database")
	return nil
}

func (c *Catalog) Name() string {
	return c.name
}

func (c *Catalog) DefaultDatabase() string {
	return c.defaultDatabase
}

// Capabilities is the resolved capability set of the connected metastore
func (c *Catalog) Capabilities() *shim.Shim {
	return c.shim
}

func (c *Catalog) SessionID() string {
	return c.sessionID
}

// GetType returns the component type identifier
func (c *Catalog) GetType() string {
	return ComponentType
}

// Shutdown closes the metastore client
func (c *Catalog) Shutdown(ctx context.Context) error {
	c.logger.Info().Msg("Shutting down catalog")
	return c.Close()
}

func (c *Catalog) Close() error {
	if err := c.client.Close(); err != nil {
		return shared.NewMetastoreFailure("close", err)
	}
	return nil
}

func (c *Catalog) onDegrade(feature shim.Feature, object string) {
	metrics.RecordDegradation(feature.String())
	c.logger.Warn().
		Str("feature", feature.String()).
		Str("object", object).
		Str("metastore_version", c.shim.Version()).
		Msg("Metastore does not support capability, dropping it")
}

// observe records metrics and a debug line for a finished operation
func (c *Catalog) observe(operation, object string, start time.Time, err error) {
	duration := time.Since(start)
	metrics.RecordOperation(operation, err, duration)
	event := c.logger.Debug()
	if err != nil {
		event = c.logger.Debug().Err(err)
	}
	event.Str("operation", operation).
		Str("object", object).
		Dur("duration", duration).
		Msg("Catalog operation")
}

// mapErr turns a metastore error into a catalog error. Errors that already
// carry a catalog code pass through.
func (c *Catalog) mapErr(operation string, err error) error {
	if err == nil {
		return nil
	}
	if strings.HasPrefix(errors.GetCode(err), "catalog.") {
		return err
	}
	ctx := errors.GetContext(err)
	objectType, name := ctx["object_type"], ctx["name"]
	switch {
	case errors.HasCode(err, metastore.ErrNoSuchObject):
		return shared.NewCatalogNotFound(objectType, name).WithCause(err)
	case errors.HasCode(err, metastore.ErrAlreadyExists):
		return shared.NewCatalogAlreadyExists(objectType, name).WithCause(err)
	case errors.HasCode(err, metastore.ErrNotEmpty):
		return shared.NewCatalogNotEmpty(objectType, name).WithCause(err)
	case errors.HasCode(err, metastore.ErrInvalidObject):
		return shared.NewCatalogInvalidInput(operation, err.Error()).WithCause(err)
	default:
		return shared.NewMetastoreFailure(operation, err)
	}
}

func isNotFound(err error) bool {
	return errors.HasCode(err, shared.CatalogNotFound)
}

func isAlreadyExists(err error) bool {
	return errors.HasCode(err, shared.CatalogAlreadyExists)
}

func requireName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewCatalogInvalidInput(field, field+" must not be empty")
	}
	return nil
}

func requirePath(path model.ObjectPath) error {
	if err := requireName("database", path.Database); err != nil {
		return err
	}
	return requireName("object", path.Object)
}
