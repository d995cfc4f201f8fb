// profile.go — the call profiler behind the shell's :profile command.
package stencil

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FunctionProfile aggregates the calls of one named function.
type FunctionProfile struct {
	Name  string
	Calls int
	Total time.Duration
}

// Avg is the mean duration per call.
func (p FunctionProfile) Avg() time.Duration {
	if p.Calls == 0 {
		return 0
	}
	return p.Total / time.Duration(p.Calls)
}

// Profiler accumulates per-function call statistics. Attach one with
// WithProfiler; the evaluator records every named call into it. Like the
// Context it belongs to, a Profiler is single-goroutine.
type Profiler struct {
	stats map[string]*FunctionProfile
}

// NewProfiler returns an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{stats: map[string]*FunctionProfile{}}
}

// Record adds one call of name taking d.
func (p *Profiler) Record(name string, d time.Duration) {
	s, ok := p.stats[name]
	if !ok {
		s = &FunctionProfile{Name: name}
		p.stats[name] = s
	}
	s.Calls++
	s.Total += d
}

// Reset discards all recorded calls.
func (p *Profiler) Reset() {
	p.stats = map[string]*FunctionProfile{}
}

// Profiles returns the aggregates sorted by total time, biggest first.
func (p *Profiler) Profiles() []FunctionProfile {
	out := make([]FunctionProfile, 0, len(p.stats))
	for _, s := range p.stats {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Report renders the classic profile table.
func (p *Profiler) Report() string {
	var b strings.Builder
	b.WriteString("Time (s)  Avg (ms)  Calls   Function\n")
	for _, s := range p.Profiles() {
		fmt.Fprintf(&b, "%8.3f  %8.3f  %6d  %s\n",
			s.Total.Seconds(), float64(s.Avg().Microseconds())/1000, s.Calls, s.Name)
	}
	return b.String()
}
