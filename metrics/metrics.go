/*
   Copyright 2025 The DIRPX Authors

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/safecall/call"
)

// DefaultNamespace prefixes metric names when NewObserver is given none.
const DefaultNamespace = "safecall"

// Observer records wrapped calls in Prometheus metrics.
type Observer struct {
	// CallsTotal counts calls by domain, op and result. Result is "ok"
	// or the failure's error code.
	CallsTotal *prometheus.CounterVec

	// CallDuration tracks how long the native functions took.
	CallDuration *prometheus.HistogramVec
}

var _ call.Observer = (*Observer)(nil)

// NewObserver creates the metrics and registers them with reg. Registering
// the same namespace twice with one registry fails.
func NewObserver(reg prometheus.Registerer, namespace string) (*Observer, error) {
	if reg == nil {
		return nil, errors.New("metrics: nil registerer")
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}
	o := &Observer{
		CallsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "calls_total",
				Help:      "Total wrapped native calls by domain, operation and result",
			},
			[]string{"domain", "op", "result"},
		),
		CallDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "call_duration_seconds",
				Help:      "Wrapped native call duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"domain", "op"},
		),
	}
	for _, c := range []prometheus.Collector{o.CallsTotal, o.CallDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// Observe implements call.Observer. A nil Observer records nothing.
func (o *Observer) Observe(ev call.Event) {
	if o == nil {
		return
	}
	domain := string(ev.Op.Domain)
	result := "ok"
	if ev.Failed() {
		result = string(ev.Err.Code)
	}
	o.CallsTotal.WithLabelValues(domain, ev.Op.Name, result).Inc()
	o.CallDuration.WithLabelValues(domain, ev.Op.Name).Observe(ev.Duration.Seconds())
}
