package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NamePublishOutcomes = "publish_outcomes_total"
	NamePublishDuration = "publish_duration_seconds"
	NameVariantWarnings = "variant_warnings_total"
	LabelPlatform       = "platform"
	LabelOutcome        = "outcome"
	LabelDryRun         = "dry_run"
)

var PublishOutcomes = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NamePublishOutcomes,
		Help:      "Publish outcomes by platform",
		Namespace: Namespace,
	},
	[]string{LabelPlatform, LabelOutcome, LabelDryRun},
)

var PublishDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      NamePublishDuration,
		Help:      "Duration of the processing of a platform",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelPlatform},
)

var VariantWarnings = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameVariantWarnings,
		Help:      "Transform warnings emitted while building variants",
		Namespace: Namespace,
	},
	[]string{LabelPlatform},
)
