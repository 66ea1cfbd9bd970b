package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

var (
	guestAdmittedTotal     atomic.Uint64
	guestRejectedTotal     atomic.Uint64
	guestLedgerErrorsTotal atomic.Uint64
	guestSweptTotal        atomic.Uint64
	analysisCompletedTotal atomic.Uint64
	analysisFailedTotal    atomic.Uint64
	notAResumeTotal        atomic.Uint64

	providerDuration = newHistogram([]float64{250, 500, 1000, 2000, 5000, 10000, 30000, 60000, 120000})
)

// IncGuestAdmitted counts guests admitted by the quota ledger.
func IncGuestAdmitted() { guestAdmittedTotal.Add(1) }

// IncGuestRejected counts guests turned away, including fail-closed rejections.
func IncGuestRejected() { guestRejectedTotal.Add(1) }

// IncGuestLedgerError counts ledger store failures.
func IncGuestLedgerError() { guestLedgerErrorsTotal.Add(1) }

// AddGuestSwept counts guest records removed by the retention sweep.
func AddGuestSwept(n int64) {
	if n > 0 {
		guestSweptTotal.Add(uint64(n))
	}
}

// IncAnalysisCompleted increments the completed counter.
func IncAnalysisCompleted() { analysisCompletedTotal.Add(1) }

// IncAnalysisFailed increments the failed counter.
func IncAnalysisFailed() { analysisFailedTotal.Add(1) }

// IncNotAResume counts provider verdicts that the input was not a resume.
func IncNotAResume() { notAResumeTotal.Add(1) }

// ObserveProviderDurationMs records a provider call duration in milliseconds.
func ObserveProviderDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	providerDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "guest_admitted_total", "Guest analyses admitted", guestAdmittedTotal.Load())
	writeCounter(&buf, "guest_rejected_total", "Guest analyses rejected", guestRejectedTotal.Load())
	writeCounter(&buf, "guest_ledger_errors_total", "Guest ledger store failures", guestLedgerErrorsTotal.Load())
	writeCounter(&buf, "guest_swept_total", "Guest records removed by retention", guestSweptTotal.Load())
	writeCounter(&buf, "analysis_completed_total", "Provider calls that produced a result", analysisCompletedTotal.Load())
	writeCounter(&buf, "analysis_failed_total", "Provider calls that failed or were malformed", analysisFailedTotal.Load())
	writeCounter(&buf, "analysis_not_a_resume_total", "Inputs the provider rejected as not a resume", notAResumeTotal.Load())
	writeHistogram(&buf, "provider_duration_ms", "Provider call duration in milliseconds", providerDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
			break
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}
