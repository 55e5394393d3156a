package dispatch

import (
	"sync"

	"github.com/hookflow/hookflow/pkg/models"
)

// DefaultHistoryCap bounds the dispatch result history.
const DefaultHistoryCap = 1000

// History is a bounded ring buffer of dispatch results. Once full, the
// oldest entry is evicted for each append.
type History struct {
	mu      sync.Mutex
	results []*models.ExecutionResult
	cap     int
}

// NewHistory creates a history with the given capacity, defaulting when
// capacity is not positive.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistoryCap
	}

	return &History{
		results: make([]*models.ExecutionResult, 0, capacity),
		cap:     capacity,
	}
}

// Append records one dispatch result, evicting the oldest past capacity.
func (h *History) Append(result *models.ExecutionResult) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.results) == h.cap {
		copy(h.results, h.results[1:])
		h.results[len(h.results)-1] = result

		return
	}

	h.results = append(h.results, result)
}

// Snapshot returns a copy of the history, oldest first.
func (h *History) Snapshot() []*models.ExecutionResult {
	h.mu.Lock()
	defer h.mu.Unlock()

	snapshot := make([]*models.ExecutionResult, len(h.results))
	copy(snapshot, h.results)

	return snapshot
}

// Len reports how many results are retained.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.results)
}
