package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sdarshil6/url-shortener/internal/middleware"
	"github.com/sdarshil6/url-shortener/pkg/response"
)

func (h *LinkHandler) Analytics(c *gin.Context) {
	days := 0
	if raw := c.Query("days"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 365 {
			response.BadRequest(c, "days must be between 1 and 365")
			return
		}
		days = v
	}

	analytics, err := h.links.Analytics(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret"), days)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "", analytics)
}

func (h *LinkHandler) ClickHistory(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	history, err := h.links.ClickHistory(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret"), page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "", history)
}
