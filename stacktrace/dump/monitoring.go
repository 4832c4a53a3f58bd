// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package dump

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	writerSnapshots = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_writer_snapshots",
		Help: "Count of snapshots encoded by dump writers.",
	})

	writerDefinitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stackdump_writer_definitions",
		Help: "Count of dictionary definition records emitted, by table.",
	}, []string{"table"})

	writerDynEvictions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_writer_dyn_evictions",
		Help: "Count of rotating-dictionary evictions on the write side.",
	})

	readerSnapshots = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_reader_snapshots",
		Help: "Count of snapshots decoded by dump readers.",
	})

	readerFormatErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_reader_format_errors",
		Help: "Count of structural decode failures.",
	})

	chainedOpenedSources = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_chained_opened_sources",
		Help: "Count of sources opened by chained readers.",
	})

	chainedSkippedSources = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "stackdump_chained_skipped_sources",
		Help: "Count of unusable sources skipped by chained readers.",
	})
)

// RegisterMonitoring registers all of this package's monitoring metrics.
func RegisterMonitoring(reg prometheus.Registerer) {
	reg.MustRegister(
		// Writer
		writerSnapshots,
		writerDefinitions,
		writerDynEvictions,

		// Reader
		readerSnapshots,
		readerFormatErrors,
		chainedOpenedSources,
		chainedSkippedSources,
	)
}
