package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Health records the result of the last notification sent to each webhook and reports it over HTTP.
type Health struct {
	Webhooks func() []string
	results  map[string]Result
	lock     sync.RWMutex
}

type Result struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error,omitempty"`
}

type report struct {
	Webhooks map[string]*Result `json:"webhooks"`
}

func New(webhooks func() []string) *Health {
	return &Health{
		Webhooks: webhooks,
		results:  make(map[string]Result),
	}
}

// Record stores the result of a notification sent to webhook.
func (h *Health) Record(webhook string, err error) {
	r := Result{Timestamp: time.Now()}
	if err != nil {
		r.Error = err.Error()
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	h.results[webhook] = r
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.lock.RLock()
	defer h.lock.RUnlock()

	rep := report{Webhooks: make(map[string]*Result)}
	for _, name := range h.Webhooks() {
		var result *Result
		if r, ok := h.results[name]; ok {
			result = &r
		}
		rep.Webhooks[name] = result
	}

	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(rep); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
