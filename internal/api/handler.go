package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/localmeet/localmeet-server/internal/logging"
	"github.com/localmeet/localmeet-server/internal/models"
	"github.com/localmeet/localmeet-server/internal/repository"
	"github.com/localmeet/localmeet-server/internal/service"
)

// Handler wires the service into the gin router.
type Handler struct {
	svc service.Service
	log logging.Logger
}

// NewHandler creates a new API handler
func NewHandler(svc service.Service, log logging.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// SetupRoutes registers all API routes on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/username-exists", h.UsernameExists)
		api.POST("/auth/signup", h.SignUp)
		api.POST("/auth/login", h.Login)

		api.GET("/events", h.ListEvents)
		api.GET("/tags/category", h.CategoryTags)
		api.GET("/tags/group", h.GroupTags)

		authed := api.Group("", AuthMiddleware())
		{
			authed.POST("/events", h.CreateEvent)
			authed.GET("/events/most-recent", h.MostRecentEvent)
		}
	}
}

func (h *Handler) UsernameExists(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Missing username",
		})
		return
	}

	exists, err := h.svc.UsernameExists(c.Request.Context(), username)
	if err != nil {
		h.internalError(c, "error checking username", err)
		return
	}
	c.JSON(http.StatusOK, models.UsernameExistsResponse{Exists: exists})
}

func (h *Handler) SignUp(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.svc.SignUp(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Invalid request body",
		})
		return
	}

	resp, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ListEvents(c *gin.Context) {
	var q models.ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Invalid query parameters",
		})
		return
	}

	events, err := h.svc.ListEvents(c.Request.Context(), q)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.EventListResponse{Status: "success", Events: events})
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req models.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Status:  "error",
			Code:    "INVALID_REQUEST",
			Message: "Invalid request body",
		})
		return
	}

	userID := c.MustGet("userId").(int64)
	event, err := h.svc.CreateEvent(c.Request.Context(), userID, req)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.EventResponse{Status: "success", Event: event})
}

func (h *Handler) MostRecentEvent(c *gin.Context) {
	userID := c.MustGet("userId").(int64)
	event, err := h.svc.MostRecentEvent(c.Request.Context(), userID)
	if err != nil {
		h.serviceError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.EventResponse{Status: "success", Event: event})
}

func (h *Handler) CategoryTags(c *gin.Context) {
	tags, err := h.svc.CategoryTags(c.Request.Context())
	if err != nil {
		h.internalError(c, "error fetching category tags", err)
		return
	}
	c.JSON(http.StatusOK, models.TagListResponse{Status: "success", Tags: tags})
}

func (h *Handler) GroupTags(c *gin.Context) {
	tags, err := h.svc.GroupTags(c.Request.Context())
	if err != nil {
		h.internalError(c, "error fetching group tags", err)
		return
	}
	c.JSON(http.StatusOK, models.TagListResponse{Status: "success", Tags: tags})
}

// serviceError maps service and repository errors onto HTTP statuses.
// Validation and conflict failures keep distinguishable codes; anything
// else becomes a generic 500 so filesystem detail never reaches clients.
func (h *Handler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidUsername):
		h.reject(c, http.StatusBadRequest, "INVALID_USERNAME", err)
	case errors.Is(err, repository.ErrWeakPassword):
		h.reject(c, http.StatusBadRequest, "WEAK_PASSWORD", err)
	case errors.Is(err, repository.ErrInvalidEvent), errors.Is(err, service.ErrInvalidDate):
		h.reject(c, http.StatusBadRequest, "INVALID_EVENT", err)
	case errors.Is(err, repository.ErrUsernameTaken):
		h.reject(c, http.StatusConflict, "USERNAME_TAKEN", err)
	case errors.Is(err, repository.ErrEventCollision):
		h.reject(c, http.StatusConflict, "EVENT_COLLISION", err)
	case errors.Is(err, service.ErrInvalidCredentials):
		h.reject(c, http.StatusUnauthorized, "UNAUTHORIZED", err)
	case errors.Is(err, service.ErrForbidden):
		h.reject(c, http.StatusForbidden, "FORBIDDEN", err)
	case errors.Is(err, service.ErrUserNotFound):
		h.reject(c, http.StatusNotFound, "NOT_FOUND", err)
	default:
		h.internalError(c, "request failed", err)
	}
}

func (h *Handler) reject(c *gin.Context, status int, code string, err error) {
	c.JSON(status, models.ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: err.Error(),
	})
}

func (h *Handler) internalError(c *gin.Context, msg string, err error) {
	h.log.Error(c.Request.Context(), msg, "error", err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Status:  "error",
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error",
	})
}
