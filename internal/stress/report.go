package stress

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

type Report struct {
	Target          string        `json:"target"`
	ConcurrentUsers int           `json:"concurrent_users"`
	RequestsPerUser int           `json:"requests_per_user"`
	TotalRequests   int           `json:"total_requests"`
	Successful      int           `json:"successful"`
	Failed          int           `json:"failed"`
	SuccessRate     float64       `json:"success_rate"`
	DurationMS      int64         `json:"duration_ms"`
	ThroughputRPS   float64       `json:"throughput_rps"`
	AvgMS           float64       `json:"avg_ms"`
	MinMS           float64       `json:"min_ms"`
	MaxMS           float64       `json:"max_ms"`
	P50MS           float64       `json:"p50_ms"`
	P95MS           float64       `json:"p95_ms"`
	P99MS           float64       `json:"p99_ms"`
	LatencyGrade    Grade         `json:"latency_grade"`
	SuccessGrade    Grade         `json:"success_grade"`
	Errors          []ErrorRecord `json:"errors"`
	Fatal           string        `json:"fatal,omitempty"`
}

func NewReport(cfg Config, sum Summary, fatal error) Report {
	r := Report{
		Target:          cfg.BaseURL,
		ConcurrentUsers: cfg.ConcurrentUsers,
		RequestsPerUser: cfg.RequestsPerUser,
		TotalRequests:   sum.TotalRequests,
		Successful:      sum.Successful,
		Failed:          sum.Failed,
		SuccessRate:     sum.SuccessRate,
		DurationMS:      sum.Elapsed.Milliseconds(),
		ThroughputRPS:   sum.Throughput,
		AvgMS:           millis(sum.Avg),
		MinMS:           millis(sum.Min),
		MaxMS:           millis(sum.Max),
		P50MS:           millis(sum.P50),
		P95MS:           millis(sum.P95),
		P99MS:           millis(sum.P99),
		LatencyGrade:    LatencyGrade(sum.Avg),
		SuccessGrade:    SuccessGrade(sum.SuccessRate),
		Errors:          sum.Errors,
	}

	if fatal != nil {
		r.Fatal = fatal.Error()
	}

	return r
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000.0
}

func (r Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Print writes the human readable summary.
func (r Report) Print(w io.Writer) {
	fmt.Fprintln(w, "--- Stress Test Results ---")
	fmt.Fprintf(w, "Target:            %s\n", r.Target)
	fmt.Fprintf(w, "Total Requests:    %d\n", r.TotalRequests)
	fmt.Fprintf(w, "Successful:        %d\n", r.Successful)
	fmt.Fprintf(w, "Failed:            %d\n", r.Failed)
	fmt.Fprintf(w, "Success Rate:      %.2f%%\n", r.SuccessRate)
	fmt.Fprintf(w, "Total Duration:    %.2fs\n", float64(r.DurationMS)/1000.0)
	fmt.Fprintf(w, "Avg Response Time: %.2fms\n", r.AvgMS)
	fmt.Fprintf(w, "Min Response Time: %.2fms\n", r.MinMS)
	fmt.Fprintf(w, "Max Response Time: %.2fms\n", r.MaxMS)
	fmt.Fprintf(w, "p50/p95/p99:       %.2fms / %.2fms / %.2fms\n", r.P50MS, r.P95MS, r.P99MS)
	fmt.Fprintf(w, "Requests/Second:   %.2f\n", r.ThroughputRPS)

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "\nErrors encountered:")
		for _, e := range r.Errors[:min(len(r.Errors), maxReportedErrors)] {
			fmt.Fprintf(w, "  - %s: %s\n", e.Operation, e.Error)
		}
		if len(r.Errors) > maxReportedErrors {
			fmt.Fprintf(w, "  ... and %d more errors\n", len(r.Errors)-maxReportedErrors)
		}
	}

	if r.Fatal != "" {
		fmt.Fprintf(w, "\nTest suite failed: %s\n", r.Fatal)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Latency:      %s\n", r.LatencyGrade)
	fmt.Fprintf(w, "Success rate: %s\n", r.SuccessGrade)
}

// WriteCSV writes one row per sample.
func WriteCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"idx", "timestamp", "operation", "detail", "status", "duration_ms", "error"}); err != nil {
		return err
	}

	for i, s := range samples {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}

		row := []string{
			strconv.Itoa(i),
			s.Start.Format(time.RFC3339Nano),
			s.Operation,
			s.Detail,
			strconv.Itoa(s.StatusCode),
			fmt.Sprintf("%.3f", millis(s.Duration)),
			errText,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
