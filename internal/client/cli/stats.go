package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	dto "github.com/prometheus/client_model/go"
)

// Stats prints the transport counters collected in this run.
func (a *App) Stats(_ context.Context) error {
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tLABELS\tVALUE")
	for _, mf := range families {
		name := strings.TrimPrefix(mf.GetName(), "campusshop_api_")
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, labelString(m.GetLabel()), metricValue(mf.GetType(), m))
		}
	}
	return tw.Flush()
}

func labelString(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func metricValue(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%.0f", m.GetCounter().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		if h.GetSampleCount() == 0 {
			return "0 samples"
		}
		avg := h.GetSampleSum() / float64(h.GetSampleCount())
		return fmt.Sprintf("%d samples, avg %.3fs", h.GetSampleCount(), avg)
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	}
	return "?"
}
