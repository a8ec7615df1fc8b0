package container

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"

	"salesdash/adapters/dataset"
	"salesdash/adapters/memory"
	"salesdash/adapters/model"
	"salesdash/adapters/postgres"
	"salesdash/domain/core"
	domaindataset "salesdash/domain/dataset"
	"salesdash/domain/variant"
	"salesdash/internal"
	"salesdash/internal/config"
	"salesdash/internal/errors"
	"salesdash/internal/insights"
	"salesdash/internal/migration"
	"salesdash/internal/pricing"
	"salesdash/internal/testkit"
	"salesdash/ports"
)

// SyntheticDataset selects the generated clothing sales table instead of a file
const SyntheticDataset = "synthetic"

// Dashboard is the immutable state behind one variant's page
type Dashboard struct {
	Variant *variant.Variant
	Model   ports.Model
	Dataset *domaindataset.Table
	Gallery *insights.Gallery
}

// Container holds all application dependencies and manages their lifecycle.
// Everything is built by Bootstrap and read-only afterwards.
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Adapters, replaceable before Bootstrap
	ModelLoader   ports.ModelLoader
	DatasetReader ports.DatasetReader

	// Repositories (data access layer)
	PredictionRepo ports.PredictionRepository

	// Services
	Catalog  *config.Catalog
	Pricing  *pricing.Service
	Renderer *insights.Renderer

	dashboards map[core.VariantName]*Dashboard
	order      []core.VariantName
	datasets   map[string]*domaindataset.Table
}

// New creates a new dependency injection container
func New(cfg *config.Config, logger *internal.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if logger == nil {
		logger = internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	}

	return &Container{
		Config:        cfg,
		Logger:        logger,
		ModelLoader:   model.NewLoader(cfg.Model.OrtLibraryPath, logger),
		DatasetReader: dataset.NewReader(logger),
		Renderer:      insights.NewRenderer(cfg.Display.ChartWidth, cfg.Display.ChartHeight, logger),
		dashboards:    make(map[core.VariantName]*Dashboard),
		datasets:      make(map[string]*domaindataset.Table),
	}, nil
}

// InitWithDatabase backs the prediction log with db and migrates its schema
func (c *Container) InitWithDatabase(ctx context.Context, db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}
	c.DB = db

	if err := db.PingContext(ctx); err != nil {
		return errors.WithCode(errors.CodeDatabaseError, fmt.Errorf("database connection test failed: %w", err))
	}
	if err := migration.NewRunner().Run(ctx, db); err != nil {
		return errors.Wrap(err, "database migration failed")
	}

	c.PredictionRepo = postgres.NewPredictionRepository(db)
	c.Logger.Info("[Container] prediction log stored in %s database", db.DriverName())
	return nil
}

// Bootstrap resolves the active variants, loads their models and datasets,
// validates every schema against its model and pre-renders the insight charts.
func (c *Container) Bootstrap(ctx context.Context) error {
	if c.PredictionRepo == nil {
		c.PredictionRepo = memory.NewPredictionRepository(memory.DefaultCapacity)
		c.Logger.Debug("[Container] DATABASE_URL not set, prediction log kept in memory")
	}
	c.Pricing = pricing.NewService(c.PredictionRepo, c.Logger)

	catalog, err := config.LoadCatalog(c.Config)
	if err != nil {
		return err
	}
	c.Catalog = catalog

	variants, err := catalog.Select(c.Config.Variants.Active)
	if err != nil {
		return errors.Wrap(err, "failed to resolve VARIANTS")
	}

	for i := range variants {
		v := variants[i]
		if err := c.initDashboard(ctx, &v); err != nil {
			return errors.Wrapf(err, "variant %s", v.Name)
		}
	}

	c.Logger.Info("[Container] %d dashboards ready, default %s", len(c.order), c.Config.Variants.Default)
	return nil
}

func (c *Container) initDashboard(ctx context.Context, v *variant.Variant) error {
	m, err := c.ModelLoader.Load(ctx, v.ModelPath)
	if err != nil {
		return errors.ModelError("failed to load model "+v.ModelPath, err)
	}
	if err := c.Pricing.Register(v, m); err != nil {
		_ = m.Close()
		return err
	}

	tbl, err := c.loadDataset(v.DatasetPath)
	if err != nil {
		return err
	}

	gallery, err := c.Renderer.Render(ctx, tbl, v.Guard)
	if err != nil {
		return err
	}
	if gallery.Err != nil {
		c.Logger.Warn("[Container] %s insight panel stopped at %s: %v", v.Name, gallery.Failed, gallery.Err)
	}

	c.dashboards[v.Name] = &Dashboard{Variant: v, Model: m, Dataset: tbl, Gallery: gallery}
	c.order = append(c.order, v.Name)
	return nil
}

// loadDataset reads each distinct path once. A missing default dataset falls
// back to the synthetic table; an explicit DATASET_PATH must exist.
func (c *Container) loadDataset(path string) (*domaindataset.Table, error) {
	if tbl, ok := c.datasets[path]; ok {
		return tbl, nil
	}

	var (
		tbl *domaindataset.Table
		err error
	)
	switch {
	case path == "" || path == SyntheticDataset:
		tbl, err = c.syntheticDataset()
	default:
		tbl, err = c.DatasetReader.Read(path)
		if err != nil && stderrors.Is(err, os.ErrNotExist) && c.Config.Paths.DatasetPath == "" {
			c.Logger.Warn("[Container] dataset %s not found, using synthetic sales data", path)
			tbl, err = c.syntheticDataset()
		}
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load dataset %s", path)
	}

	c.datasets[path] = tbl
	return tbl, nil
}

func (c *Container) syntheticDataset() (*domaindataset.Table, error) {
	return testkit.NewClothingDataGenerator(testkit.DefaultClothingConfig()).Table()
}

// Dashboard returns the state of one active variant
func (c *Container) Dashboard(name core.VariantName) (*Dashboard, error) {
	d, ok := c.dashboards[name]
	if !ok {
		return nil, errors.Wrap(fmt.Errorf("%w %q", core.ErrVariantNotFound, name), "unknown variant")
	}
	return d, nil
}

// Dashboards returns the active dashboards in VARIANTS order
func (c *Container) Dashboards() []*Dashboard {
	out := make([]*Dashboard, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.dashboards[name])
	}
	return out
}

// DefaultVariant is the dashboard served at /
func (c *Container) DefaultVariant() core.VariantName {
	return core.VariantName(c.Config.Variants.Default)
}

// Shutdown closes every model and the prediction log
func (c *Container) Shutdown(ctx context.Context) error {
	var first error
	if c.Pricing != nil {
		first = c.Pricing.Close()
	}
	if c.PredictionRepo != nil {
		if err := c.PredictionRepo.Close(); err != nil && first == nil {
			first = err
		}
	}
	c.Logger.Info("[Container] shut down")
	_ = c.Logger.Sync()
	return first
}
