package inkpress

import "embed"

// EmbeddedAssets contains static assets shipped with the framework:
// inkpress.css (baseline grid/list layout) and view-toggle.js.
//
//go:embed embedded/*
var EmbeddedAssets embed.FS
