// Package metrics provides Prometheus metrics for colour actuation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Apply results recorded in colornode_led_applies_total.
const (
	ResultOK     = "ok"
	ResultFailed = "failed"
)

var components = [3]string{"red", "green", "blue"}

var (
	ledApplies = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "colornode",
		Subsystem: "led",
		Name:      "applies_total",
		Help:      "Colour applications by result",
	}, []string{"result"})

	ledActuationFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "colornode",
		Subsystem: "led",
		Name:      "actuation_failures_total",
		Help:      "Failed colour applications by output mechanism",
	}, []string{"mechanism"})

	ledColor = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "colornode",
		Subsystem: "led",
		Name:      "color",
		Help:      "Stored colour intensity per component (0-255)",
	}, []string{"component"})

	pwmDuty = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "colornode",
		Subsystem: "pwm",
		Name:      "duty",
		Help:      "Last duty written per PWM channel",
	}, []string{"triple", "component"})
)

// RecordApply counts one successful colour application.
func RecordApply() {
	ledApplies.WithLabelValues(ResultOK).Inc()
}

// RecordActuationFailure counts one failed application on mechanism.
func RecordActuationFailure(mechanism string) {
	ledApplies.WithLabelValues(ResultFailed).Inc()
	ledActuationFailures.WithLabelValues(mechanism).Inc()
}

// SetColor records the stored colour.
func SetColor(r, g, b uint8) {
	for i, v := range [3]uint8{r, g, b} {
		ledColor.WithLabelValues(components[i]).Set(float64(v))
	}
}

// SetDuties records the duties written to a triple, red/green/blue.
func SetDuties(triple string, duties [3]uint32) {
	for i, d := range duties {
		pwmDuty.WithLabelValues(triple, components[i]).Set(float64(d))
	}
}
