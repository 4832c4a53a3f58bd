// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"github.com/tobert/jvm-tools/support/logging"
)

// defaultDynStringCacheSize bounds the rotating dictionary used for thread
// names. The value only affects writer memory and stream size, never the
// wire format.
const defaultDynStringCacheSize = 512

// Config carries the options used when constructing writers and chained
// readers. The zero value selects all defaults.
type Config struct {
	// Version is the format version that NewWriter emits. Zero selects
	// CurrentVersion.
	Version Version

	// DynStringCacheSize bounds the rotating thread-name dictionary. Zero
	// selects defaultDynStringCacheSize.
	DynStringCacheSize int

	// Logger receives skip and close diagnostics. Nil disables logging.
	Logger logging.L
}

func (cfg *Config) version() Version {
	if cfg.Version == 0 {
		return CurrentVersion
	}
	return cfg.Version
}

func (cfg *Config) dynStringCacheSize() int {
	if cfg.DynStringCacheSize <= 0 {
		return defaultDynStringCacheSize
	}
	return cfg.DynStringCacheSize
}

func (cfg *Config) logger() logging.L { return logging.Must(cfg.Logger) }
