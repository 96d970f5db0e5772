// Package httpapi implements the HTTP Adapter: GET /isSlotConfirmed/:slot
// mapped onto the Application Logic's IsConfirmed operation.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"

	"github.com/0xkanth/solana-confirmation-service/internal/app"
)

// IsConfirmedChecker is the subset of *app.App the handler depends on.
type IsConfirmedChecker interface {
	IsConfirmed(ctx context.Context, slot uint64) (app.Status, error)
}

// NewRouter builds the HTTP Adapter's routes.
//
// - 200, empty body: slot is confirmed.
// - 404: a successful RPC lookup found the slot not confirmed.
// - 500: RPC failure or a malformed {slot} path parameter. Per spec.md's
//   Open Questions, a malformed parameter is preserved as 500 rather than
//   the more conventional 400, matching observed legacy behavior.
func NewRouter(a IsConfirmedChecker, logger zerolog.Logger) http.Handler {
	r := httprouter.New()
	r.GET("/isSlotConfirmed/:slot", handleIsSlotConfirmed(a, logger))
	return r
}

func handleIsSlotConfirmed(a IsConfirmedChecker, logger zerolog.Logger) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		slot, err := strconv.ParseUint(ps.ByName("slot"), 10, 64)
		if err != nil {
			logger.Error().Err(err).Str("slot", ps.ByName("slot")).Msg("invalid slot path parameter")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		status, err := a.IsConfirmed(r.Context(), slot)
		if err != nil && !errors.Is(err, app.ErrRPCFailure) {
			logger.Error().Err(err).Uint64("slot", slot).Msg("unexpected error checking slot")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		switch status {
		case app.Confirmed:
			w.WriteHeader(http.StatusOK)
		case app.NotConfirmed:
			w.WriteHeader(http.StatusNotFound)
		case app.RPCFailure:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}
}
