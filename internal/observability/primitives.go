package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Minimal Prometheus text exposition primitives.

func writeHeader(w io.Writer, name, help, kind string) error {
	if _, err := fmt.Fprintf(w, "# HELP %s %s\n", name, help); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "# TYPE %s %s\n", name, kind)
	return err
}

// sample is a labeled float series shared by counter and gauge vectors.
type sample struct {
	name       string
	help       string
	labelNames []string
	mu         sync.RWMutex
	values     map[string]float64
}

func newSample(name, help string, labels []string) *sample {
	return &sample{name: name, help: help, labelNames: labels, values: map[string]float64{}}
}

func (s *sample) add(v float64, set bool, values []string) {
	lbl := labelString(s.labelNames, values)
	s.mu.Lock()
	if set {
		s.values[lbl] = v
	} else {
		s.values[lbl] += v
	}
	s.mu.Unlock()
}

func (s *sample) get(values []string) float64 {
	lbl := labelString(s.labelNames, values)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[lbl]
}

func (s *sample) write(w io.Writer, kind string) error {
	if err := writeHeader(w, s.name, s.help, kind); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range sortedKeys(s.values) {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.name, k, s.values[k]); err != nil {
			return err
		}
	}
	return nil
}

type CounterVec struct{ s *sample }

func NewCounterVec(name, help string, labels []string) *CounterVec {
	return &CounterVec{s: newSample(name, help, labels)}
}

func (c *CounterVec) Inc(values ...string) {
	if c == nil {
		return
	}
	c.s.add(1, false, values)
}

func (c *CounterVec) Add(v float64, values ...string) {
	if c == nil {
		return
	}
	c.s.add(v, false, values)
}

func (c *CounterVec) Value(values ...string) float64 {
	if c == nil {
		return 0
	}
	return c.s.get(values)
}

func (c *CounterVec) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.s.write(w, "counter")
}

// Counter is an unlabeled CounterVec.
type Counter struct{ v *CounterVec }

func NewCounter(name, help string) *Counter {
	return &Counter{v: NewCounterVec(name, help, nil)}
}

func (c *Counter) Inc() {
	if c == nil {
		return
	}
	c.v.Inc()
}

func (c *Counter) Value() float64 {
	if c == nil {
		return 0
	}
	return c.v.Value()
}

func (c *Counter) WritePrometheus(w io.Writer) error {
	if c == nil {
		return nil
	}
	return c.v.WritePrometheus(w)
}

type GaugeVec struct{ s *sample }

func NewGaugeVec(name, help string, labels []string) *GaugeVec {
	return &GaugeVec{s: newSample(name, help, labels)}
}

func (g *GaugeVec) Set(v float64, values ...string) {
	if g == nil {
		return
	}
	g.s.add(v, true, values)
}

func (g *GaugeVec) Add(v float64, values ...string) {
	if g == nil {
		return
	}
	g.s.add(v, false, values)
}

func (g *GaugeVec) Value(values ...string) float64 {
	if g == nil {
		return 0
	}
	return g.s.get(values)
}

func (g *GaugeVec) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.s.write(w, "gauge")
}

// Gauge is an unlabeled GaugeVec.
type Gauge struct{ v *GaugeVec }

func NewGauge(name, help string) *Gauge {
	return &Gauge{v: NewGaugeVec(name, help, nil)}
}

func (g *Gauge) Set(v float64) {
	if g == nil {
		return
	}
	g.v.Set(v)
}

func (g *Gauge) Inc() {
	if g == nil {
		return
	}
	g.v.Add(1)
}

func (g *Gauge) Dec() {
	if g == nil {
		return
	}
	g.v.Add(-1)
}

func (g *Gauge) Value() float64 {
	if g == nil {
		return 0
	}
	return g.v.Value()
}

func (g *Gauge) WritePrometheus(w io.Writer) error {
	if g == nil {
		return nil
	}
	return g.v.WritePrometheus(w)
}

type HistogramVec struct {
	name       string
	help       string
	labelNames []string
	buckets    []float64
	mu         sync.RWMutex
	values     map[string]*histogram
}

type histogram struct {
	counts []uint64
	sum    float64
	total  uint64
}

var defaultBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

func NewHistogramVec(name, help string, labels []string, buckets []float64) *HistogramVec {
	if len(buckets) == 0 {
		buckets = defaultBuckets
	}
	return &HistogramVec{name: name, help: help, labelNames: labels, buckets: buckets, values: map[string]*histogram{}}
}

func (h *HistogramVec) Observe(v float64, values ...string) {
	if h == nil {
		return
	}
	lbl := labelString(h.labelNames, values)
	h.mu.Lock()
	defer h.mu.Unlock()
	hist, ok := h.values[lbl]
	if !ok {
		hist = &histogram{counts: make([]uint64, len(h.buckets))}
		h.values[lbl] = hist
	}
	hist.sum += v
	hist.total++
	for i, b := range h.buckets {
		if v <= b {
			hist.counts[i]++
		}
	}
}

func (h *HistogramVec) Count(values ...string) uint64 {
	if h == nil {
		return 0
	}
	lbl := labelString(h.labelNames, values)
	h.mu.RLock()
	defer h.mu.RUnlock()
	if hist, ok := h.values[lbl]; ok {
		return hist.total
	}
	return 0
}

func (h *HistogramVec) WritePrometheus(w io.Writer) error {
	if h == nil {
		return nil
	}
	if err := writeHeader(w, h.name, h.help, "histogram"); err != nil {
		return err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, k := range sortedKeys(h.values) {
		hist := h.values[k]
		for i, b := range h.buckets {
			if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, fmt.Sprintf("%g", b)), hist.counts[i]); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%s_bucket%s %d\n", h.name, withLe(k, "+Inf"), hist.total); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "%s_sum%s %g\n%s_count%s %d\n", h.name, k, hist.sum, h.name, k, hist.total); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func labelString(names []string, values []string) string {
	if len(names) == 0 {
		return ""
	}
	parts := make([]string, 0, len(names))
	for i, name := range names {
		val := "unknown"
		if i < len(values) && values[i] != "" {
			val = values[i]
		}
		parts = append(parts, name+"=\""+escapeLabel(val)+"\"")
	}
	return "{" + strings.Join(parts, ",") + "}"
}

var labelEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

func escapeLabel(v string) string {
	return labelEscaper.Replace(v)
}

func withLe(labels string, le string) string {
	le = escapeLabel(le)
	if labels == "" {
		return "{le=\"" + le + "\"}"
	}
	return strings.TrimSuffix(labels, "}") + ",le=\"" + le + "\"}"
}
