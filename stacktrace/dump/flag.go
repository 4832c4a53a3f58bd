// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// VersionFlag is a pflag.Value implementation that stores a dump format
// Version.
type VersionFlag Version

var _ pflag.Value = (*VersionFlag)(nil)

func (vf *VersionFlag) String() string { return Version(*vf).String() }

// Set implements pflag.Value. It accepts either the numeric version ("1",
// "2") or the unpadded magic literal ("TRACEDUMP_1", "TRACEDUMP_2").
func (vf *VersionFlag) Set(v string) error {
	for ver := range versionMagics {
		if v == strconv.Itoa(int(ver)) || strings.EqualFold(v, ver.String()) {
			*vf = VersionFlag(ver)
			return nil
		}
	}
	return errors.Errorf("unknown dump version: %q", v)
}

// Type implements pflag.Value.
func (vf *VersionFlag) Type() string { return "dump.Version" }

// Value returns the Version held by this flag.
func (vf VersionFlag) Value() Version { return Version(vf) }

// VersionFlagValues returns the list of possible values for a VersionFlag.
func VersionFlagValues() string {
	versions := make([]Version, 0, len(versionMagics))
	for v := range versionMagics {
		versions = append(versions, v)
	}
	sort.Slice(versions, func(i, j int) bool { return versions[i] < versions[j] })

	opts := make([]string, len(versions))
	for i, v := range versions {
		opts[i] = v.String()
	}
	return strings.Join(opts, ", ")
}
