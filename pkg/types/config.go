// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionConfig holds settings for the convert and watch commands.
type ConversionConfig struct {
	// SourceDir is the directory holding .pla sources (default "pla").
	SourceDir string `json:"source_dir" yaml:"source_dir" mapstructure:"source_dir"`

	// DestDir is the directory receiving .blif output (default "blif").
	DestDir string `json:"dest_dir" yaml:"dest_dir" mapstructure:"dest_dir"`

	// Extension selects source files when a whole directory is converted (default ".pla").
	Extension string `json:"extension" yaml:"extension" mapstructure:"extension"`

	// Comment is the text of the header comment line of every BLIF file.
	Comment string `json:"comment" yaml:"comment" mapstructure:"comment"`

	// Force reconverts sources whose output is already up to date.
	Force bool `json:"force" yaml:"force" mapstructure:"force"`

	// FailFast stops scheduling sources after the first failure.
	FailFast bool `json:"fail_fast" yaml:"fail_fast" mapstructure:"fail_fast"`

	// Jobs is the number of sources converted concurrently (default 1).
	Jobs int `json:"jobs" yaml:"jobs" mapstructure:"jobs"`

	// InferNames synthesizes variable names from .i/.o when .ilb/.ob are absent.
	InferNames bool `json:"infer_names" yaml:"infer_names" mapstructure:"infer_names"`
}

// IndexConfig holds settings for the conversion index database.
type IndexConfig struct {
	// Enabled records every convert run in the index (default true).
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Path is the SQLite database file. Empty means <dest_dir>/.index/pla2blif.db.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	// Debounce is how long a file must stay quiet before it is reconverted (default 200ms).
	Debounce time.Duration `json:"debounce" yaml:"debounce" mapstructure:"debounce"`
}

// Config groups all settings read from pla2blif.yaml.
type Config struct {
	Convert ConversionConfig `json:"convert" yaml:"convert" mapstructure:"convert"`
	Index   IndexConfig      `json:"index" yaml:"index" mapstructure:"index"`
	Watch   WatchConfig      `json:"watch" yaml:"watch" mapstructure:"watch"`
}
