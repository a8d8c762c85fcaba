package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// BenchmarkCollector_SessionOpen measures the overhead of recording
// a session open event (atomic operations).
func BenchmarkCollector_SessionOpen(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SessionOpened()
	}
}

// BenchmarkCollector_Snapshot measures the cost of taking a snapshot.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.SessionOpened()
	c.BytesSent(1024)
	c.RecordError("test")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}

// BenchmarkExporter_Collect measures a full scrape.
func BenchmarkExporter_Collect(b *testing.B) {
	e := NewExporter(New())
	ch := make(chan prometheus.Metric, 16)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		e.Collect(ch)
		for len(ch) > 0 {
			<-ch
		}
	}
}

// BenchmarkNilCollector verifies nil-safe no-ops have zero overhead.
func BenchmarkNilCollector(b *testing.B) {
	var c *Collector
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.SessionOpened()
		c.BytesSent(32768)
		c.RecordError("test")
	}
}
