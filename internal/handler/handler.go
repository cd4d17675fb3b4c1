package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"transcendent/backend/internal/auth"
	"transcendent/backend/internal/hub"
	"transcendent/backend/internal/lobby"
	"transcendent/backend/internal/matchmaking"
	"transcendent/backend/internal/models"
	"transcendent/backend/internal/session"
	"transcendent/backend/internal/user"
	"transcendent/backend/pkg/npid"
)

// Options switch between compatibility behaviours.
type Options struct {
	// LegacyErrorBodies answers unexpected failures and malformed ids with 200.
	LegacyErrorBodies bool
	// StrictMigration refuses migrations requested by anyone but the host.
	StrictMigration bool
}

// Handler serves the game client API.
type Handler struct {
	users    *user.Store
	sessions *session.Store
	lobbies  *lobby.Registry
	finder   *matchmaking.Finder
	hub      *hub.Hub
	log      *zap.Logger
	opts     Options
}

func New(users *user.Store, sessions *session.Store, lobbies *lobby.Registry, finder *matchmaking.Finder, events *hub.Hub, log *zap.Logger, opts Options) *Handler {
	return &Handler{
		users:    users,
		sessions: sessions,
		lobbies:  lobbies,
		finder:   finder,
		hub:      events,
		log:      log,
		opts:     opts,
	}
}

// region --- DTOs ---

// StatusResponse is the body of every non-listing endpoint.
type StatusResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message,omitempty" example:"Lobby not found"`
}

// endregion

// region --- Error handling ---

// Wrap turns a handler that returns an error into a gin handler. Every error
// ends up as a {success:false, message} body.
func (h *Handler) Wrap(fn func(*gin.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := fn(c); err != nil {
			h.Fail(c, err)
		}
	}
}

// Fail aborts the request with the status and body for err.
func (h *Handler) Fail(c *gin.Context, err error) {
	status := h.statusFor(err)
	message := err.Error()
	if status >= http.StatusInternalServerError {
		h.log.Error("Request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		message = "Internal server error"
	}
	if h.opts.LegacyErrorBodies && status >= http.StatusInternalServerError {
		status = http.StatusOK
		message = err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, StatusResponse{Success: false, Message: message})
}

func (h *Handler) statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, npid.ErrInvalidIdentifier):
		if h.opts.LegacyErrorBodies {
			return http.StatusOK
		}
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Recover reports a panic the same way as any other unexpected failure.
func (h *Handler) Recover(c *gin.Context, recovered any) {
	h.Fail(c, fmt.Errorf("panic: %v", recovered))
}

// MethodNotAllowed answers requests using a method the route does not accept.
func (h *Handler) MethodNotAllowed(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusMethodNotAllowed, StatusResponse{Success: false, Message: "Method not allowed"})
}

// endregion

// region --- Helpers ---

// param reads a request value from the query string or the form body.
func param(c *gin.Context, name string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.PostForm(name)
}

func missingParam(name string) error {
	return fmt.Errorf("%w: missing parameter %q", models.ErrInvalidArgument, name)
}

func currentSession(c *gin.Context) (*models.Session, error) {
	s, ok := auth.CurrentSession(c)
	if !ok {
		return nil, models.ErrUnauthorized
	}
	return s, nil
}

// endregion
