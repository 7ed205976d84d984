package embedded

import (
	_ "embed"
)

// Embed the default style and drum-pattern catalog
//
//go:embed data/catalog.yaml
var CatalogYAML []byte
