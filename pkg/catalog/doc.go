// Package catalog defines the shared vocabulary of the comparison
// pipeline.
//
// This package contains:
//   - Column and Model, the extracted form of one model file
//   - Inventory, the immutable keyed collection for one repository
//   - Fingerprint, the raw-text content hash
//   - JSON snapshot encoding for saved inventories
//
// The Golden Rule: pkg/catalog imports ONLY stdlib. Extraction,
// discovery, diffing and rendering all depend on catalog, never the
// reverse.
package catalog
