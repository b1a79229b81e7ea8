package llm

import (
	"encoding/json"
	"os"
	"sort"
	"sync"
	"time"
)

// meterRetentionDays bounds the usage file to the trailing window.
const meterRetentionDays = 8

// Pricing is the per-1M-token price of a provider's models.
type Pricing struct {
	InputPerM  float64 `yaml:"input_per_m"`
	OutputPerM float64 `yaml:"output_per_m"`
}

// DayUsage is one provider's totals for one day.
type DayUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	Requests         int `json:"requests"`
}

// Meter aggregates token usage per provider per day, persisting the last
// eight days to token_usage.json.
type Meter struct {
	path    string
	pricing map[string]Pricing

	mu sync.Mutex
	// days maps "YYYY-MM-DD" -> provider -> usage.
	days map[string]map[string]*DayUsage
}

// NewMeter opens (or creates) the usage file at path. pricing may be nil.
func NewMeter(path string, pricing map[string]Pricing) (*Meter, error) {
	m := &Meter{
		path:    path,
		pricing: pricing,
		days:    make(map[string]map[string]*DayUsage),
	}
	raw, err := os.ReadFile(path)
	if err == nil {
		// A corrupt usage file starts over; metering is not load-bearing.
		_ = json.Unmarshal(raw, &m.days)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	return m, nil
}

// Record adds one response's usage to today's totals.
func (m *Meter) Record(provider string, u Usage) {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := time.Now().Format("2006-01-02")
	if m.days[day] == nil {
		m.days[day] = make(map[string]*DayUsage)
	}
	d := m.days[day][provider]
	if d == nil {
		d = &DayUsage{}
		m.days[day][provider] = d
	}
	d.PromptTokens += u.PromptTokens
	d.CompletionTokens += u.CompletionTokens
	d.Requests++

	m.pruneLocked()
	m.flushLocked()
}

// CostToday returns today's estimated spend across providers, in the pricing
// currency. Providers without pricing contribute zero.
func (m *Meter) CostToday() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	day := time.Now().Format("2006-01-02")
	total := 0.0
	for provider, d := range m.days[day] {
		p, ok := m.pricing[provider]
		if !ok {
			continue
		}
		total += float64(d.PromptTokens)/1e6*p.InputPerM +
			float64(d.CompletionTokens)/1e6*p.OutputPerM
	}
	return total
}

// Totals returns a copy of the retained per-day usage.
func (m *Meter) Totals() map[string]map[string]DayUsage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]map[string]DayUsage, len(m.days))
	for day, providers := range m.days {
		out[day] = make(map[string]DayUsage, len(providers))
		for p, d := range providers {
			out[day][p] = *d
		}
	}
	return out
}

func (m *Meter) pruneLocked() {
	if len(m.days) <= meterRetentionDays {
		return
	}
	days := make([]string, 0, len(m.days))
	for d := range m.days {
		days = append(days, d)
	}
	sort.Strings(days)
	for _, d := range days[:len(days)-meterRetentionDays] {
		delete(m.days, d)
	}
}

func (m *Meter) flushLocked() {
	raw, err := json.MarshalIndent(m.days, "", "  ")
	if err != nil {
		return
	}
	tmp := m.path + ".tmp"
	if os.WriteFile(tmp, raw, 0o644) == nil {
		os.Rename(tmp, m.path)
	}
}
