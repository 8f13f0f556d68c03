// Package metrics holds the Prometheus collectors for alignments, reports and
// the HTTP API.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jjtimmons/seqcmp/internal/align"
	"github.com/jjtimmons/seqcmp/internal/report"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Alignments counts pairwise alignments computed.
	Alignments = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seqcmp",
		Name:      "alignments_total",
		Help:      "Total pairwise alignments computed",
	})

	// AlignmentCells counts cells filled in scoring matrices.
	AlignmentCells = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "seqcmp",
		Name:      "alignment_cells_total",
		Help:      "Total scoring matrix cells filled",
	})

	// ReportDuration measures how long reports take to build.
	ReportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "seqcmp",
		Name:      "report_duration_seconds",
		Help:      "Time to build a comparison report in seconds",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
	})

	// HTTPRequests counts API requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seqcmp",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by route and status code",
	}, []string{"route", "code"})
)

// ObserveAlignment records one alignment of sequences with lengths p and t.
func ObserveAlignment(p, t int) {
	Alignments.Inc()
	AlignmentCells.Add(float64(align.Cells(p, t)))
}

// ObserveReport records a built report and the time it took.
func ObserveReport(r *report.Report, took time.Duration) {
	ReportDuration.Observe(took.Seconds())
	if r.Empty() {
		return
	}
	for _, c := range r.Comparisons {
		ObserveAlignment(c.Primary.Len(), c.Test.Len())
	}
}

// Middleware counts each request under its matched route. Unmatched
// requests are counted under "unmatched".
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
