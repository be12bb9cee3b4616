package handler

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/internal/middleware"
	"github.com/sdarshil6/url-shortener/pkg/response"
	"github.com/sdarshil6/url-shortener/pkg/validator"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// maxPage keeps the (page-1)*pageSize offset from overflowing.
const maxPage = math.MaxInt32 / maxPageSize

type LinkManager interface {
	Create(ctx context.Context, user *domain.User, req *domain.CreateLinkRequest) (*domain.LinkInfo, error)
	Get(ctx context.Context, user *domain.User, secret string) (*domain.LinkInfo, error)
	Update(ctx context.Context, user *domain.User, secret string, req *domain.UpdateLinkRequest) (*domain.LinkInfo, error)
	Deactivate(ctx context.Context, user *domain.User, secret string) error
	List(ctx context.Context, user *domain.User, filter domain.LinkFilter, page, pageSize int) (*domain.LinkList, error)
	Analytics(ctx context.Context, user *domain.User, secret string, days int) (*domain.LinkAnalytics, error)
	ClickHistory(ctx context.Context, user *domain.User, secret string, page, pageSize int) (*domain.ClickHistory, error)
	QRCode(ctx context.Context, user *domain.User, secret, level string, size int) ([]byte, error)
}

type LinkHandler struct {
	links LinkManager
}

func NewLinkHandler(links LinkManager) *LinkHandler {
	return &LinkHandler{links: links}
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req domain.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	info, err := h.links.Create(c.Request.Context(), middleware.CurrentUser(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.Created(c, "URL created", info)
}

func (h *LinkHandler) List(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	filter := domain.LinkFilter{
		ActiveOnly: c.Query("active") == "true",
		Search:     c.Query("search"),
	}

	list, err := h.links.List(c.Request.Context(), middleware.CurrentUser(c), filter, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "", list)
}

func (h *LinkHandler) Get(c *gin.Context) {
	info, err := h.links.Get(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret"))
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "", info)
}

func (h *LinkHandler) Update(c *gin.Context) {
	var req domain.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if errs := validator.Validate(req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	info, err := h.links.Update(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret"), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "URL updated", info)
}

func (h *LinkHandler) Delete(c *gin.Context) {
	if err := h.links.Deactivate(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret")); err != nil {
		respondError(c, err)
		return
	}

	response.OK(c, "URL deactivated", nil)
}

func (h *LinkHandler) QRCode(c *gin.Context) {
	size := 0
	if raw := c.Query("size"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "size must be a number")
			return
		}
		size = parsed
	}

	png, err := h.links.QRCode(c.Request.Context(), middleware.CurrentUser(c), c.Param("secret"), c.Query("level"), size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

// pagination reads page and page_size, writing a 400 when either is bad.
func pagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, pageSize = 1, defaultPageSize

	if raw := c.Query("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPage {
			response.BadRequest(c, fmt.Sprintf("page must be between 1 and %d", maxPage))
			return 0, 0, false
		}
		page = v
	}

	if raw := c.Query("page_size"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > maxPageSize {
			response.BadRequest(c, "page_size must be between 1 and 100")
			return 0, 0, false
		}
		pageSize = v
	}

	return page, pageSize, true
}
