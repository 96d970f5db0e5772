package httpapi

import (
	"fmt"
	"net/http"
)

// TipProvider reports the synchronizer's most recently observed tip and
// whether the last RPC round trip succeeded, for the health endpoint.
type TipProvider interface {
	LastTip() uint64
	Healthy() bool
}

// NewHealthHandler returns a handler for a standalone health-check server,
// mirroring the teacher's separate health.address listener: 200 when the
// synchronizer's last cycle succeeded, 503 otherwise.
func NewHealthHandler(t TipProvider, queueDepth func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !t.Healthy() {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "unhealthy")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "healthy\ntip: %d\nqueue_depth: %d\n", t.LastTip(), queueDepth())
	}
}
