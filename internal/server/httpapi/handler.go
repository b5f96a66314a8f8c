package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/kinganjia/backend/internal/logging"
	"github.com/kinganjia/backend/internal/server/services"
	"github.com/kinganjia/backend/internal/timex"
)

// Deps are the collaborators the router dispatches to. Stream, Ready and
// Metrics are optional.
type Deps struct {
	Auth   *services.AuthService
	Users  *services.UserService
	Claims *services.ClaimService
	Images *services.ImageService

	// Stream serves claim events over WebSocket at /api/v1/claims/stream.
	Stream http.Handler
	// Ready backs /readyz, usually a database ping.
	Ready   func(ctx context.Context) error
	Metrics *Metrics

	Now timex.Clock
	Log logging.Logger
}

// Handler holds the gin handlers for every route.
type Handler struct {
	auth   *services.AuthService
	users  *services.UserService
	claims *services.ClaimService
	images *services.ImageService
	stream http.Handler
	ready  func(ctx context.Context) error
	now    timex.Clock
	log    logging.Logger
}

func NewHandler(d Deps) *Handler {
	h := &Handler{
		auth:   d.Auth,
		users:  d.Users,
		claims: d.Claims,
		images: d.Images,
		stream: d.Stream,
		ready:  d.Ready,
		now:    d.Now,
		log:    d.Log,
	}
	if h.now == nil {
		h.now = time.Now
	}
	if h.log == nil {
		h.log = logging.Nop{}
	}
	h.log = h.log.With("module", "httpapi")
	useJSONNames()
	return h
}
