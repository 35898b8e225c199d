package plsc

import "sync"

// WarningCode represents structured warning types
type WarningCode string

const (
	// WarnDegenerateColumn flags a zero-variance column encountered during
	// normalization. Downstream SVD and correlations are statistically
	// meaningless for that variable.
	WarnDegenerateColumn WarningCode = "DEGENERATE_COLUMN"
	// WarnDegenerateResample flags a bootstrap draw whose resampled data
	// contained a zero-variance column or a single-subject group.
	WarnDegenerateResample WarningCode = "DEGENERATE_RESAMPLE"
	// WarnDegenerateCorrelation flags a loading computed against a
	// zero-variance variable; the loading is reported as 0.
	WarnDegenerateCorrelation WarningCode = "DEGENERATE_CORRELATION"
)

// Warning is a non-fatal degeneracy surfaced to the caller. Count records how
// many times the same condition occurred (e.g. across bootstrap draws).
type Warning struct {
	Code   WarningCode `json:"code"`
	Detail string      `json:"detail"`
	Count  int         `json:"count"`
}

// WarningSet aggregates warnings, deduplicating by code and detail so that a
// ten-thousand-draw bootstrap cannot flood the result bundle. Safe for
// concurrent use.
type WarningSet struct {
	mu    sync.Mutex
	order []string
	byKey map[string]*Warning
}

// NewWarningSet creates an empty warning set
func NewWarningSet() *WarningSet {
	return &WarningSet{byKey: make(map[string]*Warning)}
}

// Add records one occurrence of a warning
func (ws *WarningSet) Add(code WarningCode, detail string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	key := string(code) + "|" + detail
	if w, ok := ws.byKey[key]; ok {
		w.Count++
		return
	}
	ws.byKey[key] = &Warning{Code: code, Detail: detail, Count: 1}
	ws.order = append(ws.order, key)
}

// Merge folds another warning set into this one
func (ws *WarningSet) Merge(other *WarningSet) {
	for _, w := range other.Warnings() {
		ws.mu.Lock()
		key := string(w.Code) + "|" + w.Detail
		if existing, ok := ws.byKey[key]; ok {
			existing.Count += w.Count
		} else {
			cp := w
			ws.byKey[key] = &cp
			ws.order = append(ws.order, key)
		}
		ws.mu.Unlock()
	}
}

// Warnings returns the accumulated warnings in first-seen order
func (ws *WarningSet) Warnings() []Warning {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	out := make([]Warning, 0, len(ws.order))
	for _, key := range ws.order {
		out = append(out, *ws.byKey[key])
	}
	return out
}

// Has reports whether any warning with the given code was recorded
func (ws *WarningSet) Has(code WarningCode) bool {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	for _, w := range ws.byKey {
		if w.Code == code {
			return true
		}
	}
	return false
}
