package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	NameCollaboratorCalls    = "collaborator_calls_total"
	NameCollaboratorDuration = "collaborator_call_duration_seconds"
	LabelStatus              = "status"
)

var CollaboratorCalls = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      NameCollaboratorCalls,
		Help:      "Calls to publish collaborators",
		Namespace: Namespace,
	},
	[]string{LabelPlatform, LabelStatus},
)

var CollaboratorDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:      NameCollaboratorDuration,
		Help:      "Duration of the calls to publish collaborators",
		Namespace: Namespace,
		Buckets:   prometheus.DefBuckets,
	},
	[]string{LabelPlatform},
)
