package metrics

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const Namespace = "crosspost"

// WriteTextfile dumps the default registry in the text exposition format,
// to be collected by the node exporter textfile collector.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return errors.Wrapf(err, "could not write metrics to '%s'", path)
	}

	return nil
}
