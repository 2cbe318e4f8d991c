package dict

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// opMetrics counts dictionary operations per segment. Counters are
// registered in the process-global metrics set, so two dictionaries on the
// same segment share counters.
type opMetrics struct {
	gets           *metrics.Counter
	sets           *metrics.Counter
	deletes        *metrics.Counter
	decodeFailures *metrics.Counter
}

func newOpMetrics(segment string) *opMetrics {
	counter := func(op string) *metrics.Counter {
		return metrics.GetOrCreateCounter(
			fmt.Sprintf(`sharedbox_dict_ops_total{op=%q,segment=%q}`, op, segment))
	}
	return &opMetrics{
		gets:    counter("get"),
		sets:    counter("set"),
		deletes: counter("delete"),
		decodeFailures: metrics.GetOrCreateCounter(
			fmt.Sprintf(`sharedbox_dict_decode_failures_total{segment=%q}`, segment)),
	}
}

// WriteMetrics writes all registered metrics in Prometheus text format.
func WriteMetrics(w io.Writer) {
	metrics.WritePrometheus(w, false)
}
