package workflow

import (
	"fmt"
	"log/slog"

	"github.com/spf13/afero"

	"yoloprep/internal/catalog"
	"yoloprep/internal/config"
	"yoloprep/internal/labels"
	"yoloprep/internal/logging"
	"yoloprep/internal/manifest"
	"yoloprep/internal/pipeline"
	"yoloprep/internal/split"
	"yoloprep/internal/validate"
)

// Pipeline runs dataset preparation stages for one configuration.
type Pipeline struct {
	cfg      *config.Config
	fs       afero.Fs
	store    *labels.Store
	catalog  *catalog.Catalog
	logger   *slog.Logger
	manifest *manifest.Store
}

// Option configures optional Pipeline behavior.
type Option func(*Pipeline)

// WithFs replaces the OS filesystem, mainly for tests.
func WithFs(fsys afero.Fs) Option {
	return func(p *Pipeline) {
		p.fs = fsys
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithManifest attaches a manifest that records runs.
func WithManifest(store *manifest.Store) Option {
	return func(p *Pipeline) {
		p.manifest = store
	}
}

// WithCatalog supplies an already loaded catalog.
func WithCatalog(cat *catalog.Catalog) Option {
	return func(p *Pipeline) {
		p.catalog = cat
	}
}

// New constructs a pipeline for cfg.
func New(cfg *config.Config, opts ...Option) *Pipeline {
	p := &Pipeline{cfg: cfg}
	for _, opt := range opts {
		opt(p)
	}
	if p.fs == nil {
		p.fs = afero.NewOsFs()
	}
	if p.logger == nil {
		p.logger = logging.NewNop()
	}
	p.store = labels.NewStore(p.fs, cfg.Paths.DatasetRoot, cfg.Materialize.ImageExtensions)
	return p
}

// Store returns the label store of the source dataset.
func (p *Pipeline) Store() *labels.Store {
	return p.store
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Catalog loads the class catalog on first use.
func (p *Pipeline) Catalog() (*catalog.Catalog, error) {
	if p.catalog != nil {
		return p.catalog, nil
	}
	cat, err := catalog.Load(p.fs, p.cfg.Paths.CatalogFile)
	if err != nil {
		return nil, pipeline.Wrap(pipeline.ErrConfiguration, "catalog", "load",
			fmt.Sprintf("Class catalog %s could not be loaded", p.cfg.Paths.CatalogFile), err)
	}
	p.catalog = cat
	return cat, nil
}

func (p *Pipeline) splitOptions() split.Options {
	return split.Options{
		ValRatio:  p.cfg.Split.ValRatio,
		TestRatio: p.cfg.Split.TestRatio,
		Seed:      p.cfg.Split.Seed,
	}
}

func (p *Pipeline) validateOptions() validate.Options {
	return validate.Options{
		AbortOnOutOfRange: p.cfg.Checks.AbortOnOutOfRange,
		AbortOnOneBased:   p.cfg.Checks.AbortOnOneBased,
	}
}
