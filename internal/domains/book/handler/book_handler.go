package handler

import (
	"errors"
	"net/http"

	"bookshelf-api/internal/domains/book/model"
	"bookshelf-api/internal/domains/book/service"
	"bookshelf-api/internal/shared/middleware"
	"bookshelf-api/internal/shared/response"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/rs/zerolog/log"
)

// BasePath is where the book routes are mounted; used to build Location headers.
const BasePath = "/api/v1/books"

// Handler - HTTP handler for the book resource
type Handler struct {
	service service.ServiceInterface
}

// NewHandler - Constructor with DI
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the book routes on rg.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	books := rg.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.GET("/search", h.SearchBooks)
		books.GET("/:id", h.GetBook)
		books.POST("", h.CreateBook)
		books.PUT("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}
}

// ListBooks - GET /api/v1/books
// Query params: page, linesPerPage, direction, orderBy
func (h *Handler) ListBooks(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.ListBooks(c.Request.Context(), page)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// SearchBooks - GET /api/v1/books/search
// Query params: query, min_price, max_price plus the paging params
func (h *Handler) SearchBooks(c *gin.Context) {
	page, err := parsePageRequest(c)
	if err != nil {
		h.handleError(c, err)
		return
	}

	filter, err := model.ParseBookFilter(c.Query("query"), c.Query("min_price"), c.Query("max_price"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	result, err := h.service.SearchBooks(c.Request.Context(), page, filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, result)
}

// GetBook - GET /api/v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	book, err := h.service.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// CreateBook - POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Created(c, BasePath+"/"+book.ID, book)
}

// UpdateBook - PUT /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	req, ok := bindBookRequest(c)
	if !ok {
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, book)
}

// DeleteBook - DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	if err := h.service.DeleteBook(c.Request.Context(), c.Param("id")); err != nil {
		h.handleError(c, err)
		return
	}

	response.NoContent(c)
}

func parsePageRequest(c *gin.Context) (model.PageRequest, error) {
	return model.ParsePageRequest(
		c.Query("page"),
		c.Query("linesPerPage"),
		c.Query("direction"),
		c.Query("orderBy"),
	)
}

// bindBookRequest decodes and validates the body, writing a 400 on failure.
func bindBookRequest(c *gin.Context) (model.BookRequest, bool) {
	var req model.BookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return req, false
	}

	if err := req.Validate(); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", verrs)
			return req, false
		}
		response.BadRequest(c, err.Error())
		return req, false
	}
	return req, true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	status := model.ToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(c)).
			Str("path", c.Request.URL.Path).
			Msg("[BookHandler] Request failed")
		response.InternalServerError(c, "Internal server error")
		return
	}

	response.ErrorResponse(c, status, model.ToErrorCode(err), err.Error())
}
