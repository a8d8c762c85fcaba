package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dialup"

// Exporter adapts a Collector to prometheus.Collector.  Values are read
// at scrape time, so the hot path stays on plain atomics.
type Exporter struct {
	c *Collector

	sessionsActive *prometheus.Desc
	sessionsTotal  *prometheus.Desc
	logins         *prometheus.Desc
	commands       *prometheus.Desc
	discarded      *prometheus.Desc
	bytes          *prometheus.Desc
	errors         *prometheus.Desc
	uptime         *prometheus.Desc
}

// NewExporter returns an Exporter reading from c.
func NewExporter(c *Collector) *Exporter {
	desc := func(name, help string, labels ...string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, "", name), help, labels, nil)
	}
	return &Exporter{
		c:              c,
		sessionsActive: desc("sessions_active", "Number of live dial-in sessions"),
		sessionsTotal:  desc("sessions_total", "Total dial-in sessions started"),
		logins:         desc("logins_total", "Login attempts by result", "result"),
		commands:       desc("commands_total", "Shell command lines by result", "result"),
		discarded:      desc("inputs_discarded_total", "Input lines that arrived with no transition to take them"),
		bytes:          desc("bytes_total", "Bytes exchanged with participants", "direction"),
		errors:         desc("errors_total", "Transport and session errors"),
		uptime:         desc("uptime_seconds", "Seconds since the collector was created"),
	}
}

// Describe implements prometheus.Collector.
func (e *Exporter) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		e.sessionsActive, e.sessionsTotal, e.logins, e.commands,
		e.discarded, e.bytes, e.errors, e.uptime,
	} {
		ch <- d
	}
}

// Collect implements prometheus.Collector.
func (e *Exporter) Collect(ch chan<- prometheus.Metric) {
	c := e.c
	ok, failed := c.Logins()
	run, unknown := c.Commands()

	ch <- prometheus.MustNewConstMetric(e.sessionsActive, prometheus.GaugeValue, float64(c.ActiveSessions()))
	ch <- prometheus.MustNewConstMetric(e.sessionsTotal, prometheus.CounterValue, float64(c.TotalSessions()))
	ch <- prometheus.MustNewConstMetric(e.logins, prometheus.CounterValue, float64(ok), "ok")
	ch <- prometheus.MustNewConstMetric(e.logins, prometheus.CounterValue, float64(failed), "failed")
	ch <- prometheus.MustNewConstMetric(e.commands, prometheus.CounterValue, float64(run), "run")
	ch <- prometheus.MustNewConstMetric(e.commands, prometheus.CounterValue, float64(unknown), "unknown")
	ch <- prometheus.MustNewConstMetric(e.discarded, prometheus.CounterValue, float64(c.DiscardedInputs()))
	ch <- prometheus.MustNewConstMetric(e.bytes, prometheus.CounterValue, float64(c.TotalBytesIn()), "in")
	ch <- prometheus.MustNewConstMetric(e.bytes, prometheus.CounterValue, float64(c.TotalBytesOut()), "out")
	ch <- prometheus.MustNewConstMetric(e.errors, prometheus.CounterValue, float64(c.ErrorCount()))

	var up float64
	if c != nil {
		up = time.Since(c.startTime).Seconds()
	}
	ch <- prometheus.MustNewConstMetric(e.uptime, prometheus.GaugeValue, up)
}

// Registry returns a fresh prometheus registry holding only e.  A
// private registry keeps tests and multiple servers from colliding on
// the default one.
func (e *Exporter) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(e)
	return reg
}
