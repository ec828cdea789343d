// Package language normalizes language codes and supplies the per-language
// word lists the cleanup and segmentation stages use as defaults.
package language
