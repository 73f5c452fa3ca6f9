// Package fixtures provides a small demo economy for the CLI, the server and tests.
package fixtures

import (
	"bytes"
	_ "embed"

	"prun-economy-lab/internal/catalog"
	"prun-economy-lab/internal/ingest"
	"prun-economy-lab/internal/market"
)

var (
	//go:embed demo/catalog.yaml
	catalogYAML []byte

	//go:embed demo/snapshot.yaml
	snapshotYAML []byte
)

// Catalog returns the demo catalog.
func Catalog() (*catalog.Catalog, error) {
	return ingest.ReadCatalog(bytes.NewReader(catalogYAML))
}

// Snapshot returns the demo market snapshot.
func Snapshot() (*market.Snapshot, error) {
	return ingest.ReadSnapshot(bytes.NewReader(snapshotYAML))
}
