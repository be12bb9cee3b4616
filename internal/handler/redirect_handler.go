package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sdarshil6/url-shortener/internal/redirect"
)

type Redirector interface {
	Handle(ctx context.Context, req redirect.Request) (string, error)
}

type RedirectHandler struct {
	redirector Redirector
}

func NewRedirectHandler(redirector Redirector) *RedirectHandler {
	return &RedirectHandler{redirector: redirector}
}

// Redirect answers GET /:key with a 302 to the target URL.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	target, err := h.redirector.Handle(c.Request.Context(), redirect.Request{
		Key:       c.Param("key"),
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.Redirect(http.StatusFound, target)
}
