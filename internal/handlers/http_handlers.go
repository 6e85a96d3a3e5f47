package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/logger"

	"lotpool/internal/errcode"
	"lotpool/internal/models"
	"lotpool/internal/services"
)

// HTTPHandler exposes the lottery engine as a JSON API.
type HTTPHandler struct {
	registry *services.Registry
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(registry *services.Registry) *HTTPHandler {
	return &HTTPHandler{registry: registry}
}

// RegisterRoutes registers all the application routes.
func (h *HTTPHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/rounds", h.CreateRound)
	router.GET("/rounds", h.ListRounds)
	router.GET("/rounds/:id", h.GetDetails)
	router.GET("/rounds/:id/participants", h.GetParticipants)
	router.GET("/rounds/:id/can-draw", h.CanDraw)
	router.GET("/rounds/:id/events", h.GetEvents)
	router.POST("/rounds/:id/enter", h.Enter)
	router.POST("/rounds/:id/sponsor", h.Sponsor)
	router.POST("/rounds/:id/draw", h.Draw)
	router.POST("/rounds/:id/claim", h.Claim)
	router.POST("/rounds/:id/draw-time", h.SetDrawTime)
	router.POST("/rounds/:id/reset", h.Reset)
}

type createRoundRequest struct {
	ID             string    `json:"id" binding:"required"`
	Name           string    `json:"name"`
	EntryFee       int64     `json:"entryFee"`
	DrawTime       time.Time `json:"drawTime" binding:"required"`
	Caller         string    `json:"caller" binding:"required"`
	InitialFunding int64     `json:"initialFunding"`
}

// CreateRound handles round creation.
func (h *HTTPHandler) CreateRound(c *gin.Context) {
	var req createRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.CreateRound(c.Request.Context(), req.ID, req.Name,
		req.EntryFee, req.DrawTime, models.Principal(req.Caller), req.InitialFunding)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

// ListRounds returns all round ids in creation order.
func (h *HTTPHandler) ListRounds(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.registry.ListRoundIDs()})
}

// GetDetails returns a snapshot of one round.
func (h *HTTPHandler) GetDetails(c *gin.Context) {
	details, err := h.registry.GetDetails(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// GetParticipants returns a round's participants in entry order.
func (h *HTTPHandler) GetParticipants(c *gin.Context) {
	participants, err := h.registry.GetParticipants(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": participants})
}

// CanDraw reports whether a draw on the round would currently succeed.
func (h *HTTPHandler) CanDraw(c *gin.Context) {
	ok, err := h.registry.CanDraw(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"canDraw": ok})
}

// GetEvents returns a round's event journal in sequence order.
func (h *HTTPHandler) GetEvents(c *gin.Context) {
	events, err := h.registry.Events(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type enterRequest struct {
	Caller  string `json:"caller" binding:"required"`
	Payment int64  `json:"payment"`
}

// Enter handles an entry command.
func (h *HTTPHandler) Enter(c *gin.Context) {
	var req enterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.Enter(c.Request.Context(), c.Param("id"),
		models.Principal(req.Caller), req.Payment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type sponsorRequest struct {
	Caller string `json:"caller" binding:"required"`
	Amount int64  `json:"amount"`
}

// Sponsor handles a sponsorship command.
func (h *HTTPHandler) Sponsor(c *gin.Context) {
	var req sponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.Sponsor(c.Request.Context(), c.Param("id"),
		models.Principal(req.Caller), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

type callerRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// Draw handles a draw command.
func (h *HTTPHandler) Draw(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.Draw(c.Request.Context(), c.Param("id"), models.Principal(req.Caller))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Claim pays the pool out to the winner.
func (h *HTTPHandler) Claim(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	amount, details, err := h.registry.Claim(c.Request.Context(), c.Param("id"), models.Principal(req.Caller))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paid": amount, "round": details})
}

type setDrawTimeRequest struct {
	Caller   string    `json:"caller" binding:"required"`
	DrawTime time.Time `json:"drawTime" binding:"required"`
}

// SetDrawTime handles a deadline edit command.
func (h *HTTPHandler) SetDrawTime(c *gin.Context) {
	var req setDrawTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.SetDrawTime(c.Request.Context(), c.Param("id"),
		models.Principal(req.Caller), req.DrawTime)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Reset handles a reset command.
func (h *HTTPHandler) Reset(c *gin.Context) {
	var req callerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	details, err := h.registry.Reset(c.Request.Context(), c.Param("id"), models.Principal(req.Caller))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": gin.H{"code": "BAD_REQUEST", "message": err.Error()},
	})
}

func writeError(c *gin.Context, err error) {
	code := errcode.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	message := err.Error()
	var domainErr *errcode.Error
	if errors.As(err, &domainErr) {
		message = domainErr.Message
	}
	c.JSON(status, gin.H{"error": gin.H{"code": code, "message": message}})
}
