package catalog

import _ "embed"

//go:embed default.yaml
var defaultCatalog []byte

// Default returns the catalog bundled into the binary. The bundled file is
// validated by tests, so a parse failure here means a broken build.
func Default() (Catalog, error) {
	return Parse(defaultCatalog)
}

// DefaultBytes returns the raw bundled catalog, for materializing an
// editable copy on disk.
func DefaultBytes() []byte {
	out := make([]byte, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}
