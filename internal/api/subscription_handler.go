package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/ignite/newsletter/internal/domain"
	"github.com/ignite/newsletter/internal/pkg/httputil"
	"github.com/ignite/newsletter/internal/pkg/logger"
)

// Subscriber runs the intake pipeline for one form submission.
type Subscriber interface {
	Subscribe(ctx context.Context, form domain.SubscriptionForm) error
}

// SubscriptionHandler serves the /subscriptions routes.
type SubscriptionHandler struct {
	svc Subscriber
}

// NewSubscriptionHandler creates a handler backed by svc.
func NewSubscriptionHandler(svc Subscriber) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc}
}

// HandleSubscribe accepts a form-urlencoded body with name and email.
// Responses carry no body: 200 on success, 400 for malformed or invalid
// input, 500 when the subscription could not be stored.
//
//	POST /subscriptions
func (h *SubscriptionHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.From(r).Info().Err(err).Msg("unparsable subscription form")
		httputil.BadRequest(w)
		return
	}
	if !r.PostForm.Has("name") || !r.PostForm.Has("email") {
		logger.From(r).Info().Msg("subscription form missing fields")
		httputil.BadRequest(w)
		return
	}

	form := domain.SubscriptionForm{
		Name:  r.PostForm.Get("name"),
		Email: r.PostForm.Get("email"),
	}
	err := h.svc.Subscribe(r.Context(), form)
	switch {
	case err == nil:
		httputil.OK(w)
	case errors.Is(err, domain.ErrValidation):
		httputil.BadRequest(w)
	default:
		httputil.InternalError(w, r, err)
	}
}

// HandleConfirm is the landing target of the link in the welcome email.
//
//	GET /subscriptions/confirm
func (h *SubscriptionHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w)
}
