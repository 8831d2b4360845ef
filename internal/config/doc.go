// Package config provides configuration structures and utilities for litfeed.
// It defines the feed language, network settings, source selection, quality
// thresholds and output preferences, and loads per-language overrides from
// the .litfeed YAML file.
package config
