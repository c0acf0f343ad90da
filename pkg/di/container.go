// Package di provides dependency injection container
package di

import (
	"github.com/spf13/afero"

	"github.com/ssargent/procgen/pkg/catalog"
	"github.com/ssargent/procgen/pkg/metrics"
)

// CatalogOpener opens the process catalog stored in dir
type CatalogOpener func(dir string) (*catalog.Catalog, error)

// Container holds all the dependencies for the application
type Container struct {
	fs            afero.Fs
	catalogOpener CatalogOpener
	metrics       *metrics.Metrics
}

// NewContainer creates a new dependency injection container
func NewContainer() *Container {
	return &Container{
		fs: afero.NewOsFs(),
		catalogOpener: func(dir string) (*catalog.Catalog, error) {
			return catalog.Open(dir, catalog.Options{})
		},
	}
}

// GetFs returns the filesystem process files are read from and written to
func (c *Container) GetFs() afero.Fs {
	return c.fs
}

// SetFs allows overriding the filesystem (for testing)
func (c *Container) SetFs(fs afero.Fs) {
	c.fs = fs
}

// OpenCatalog opens the catalog in dir
func (c *Container) OpenCatalog(dir string) (*catalog.Catalog, error) {
	return c.catalogOpener(dir)
}

// SetCatalogOpener allows overriding how the catalog is opened (for testing)
func (c *Container) SetCatalogOpener(opener CatalogOpener) {
	c.catalogOpener = opener
}

// GetMetrics returns the metrics, creating them on a fresh registry on first use
func (c *Container) GetMetrics() *metrics.Metrics {
	if c.metrics == nil {
		c.metrics = metrics.NewMetrics(nil)
	}
	return c.metrics
}

// SetMetrics allows overriding the metrics (for testing)
func (c *Container) SetMetrics(m *metrics.Metrics) {
	c.metrics = m
}
