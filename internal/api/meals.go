package api

import (
	"encoding/base64"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/service"
)

// MealsHandler drives the photo-to-entry flow: identify, review edits,
// calculate and save.
type MealsHandler struct {
	authService *service.AuthService
	settings    *service.SettingsService
	entries     *service.EntryService
	pipelines   *service.PipelineManager
	prep        *service.ImagePrepService
	limiter     *middleware.RateLimiter

	// visionURL and visionClient override the provider endpoint in tests.
	visionURL    string
	visionClient *http.Client
}

func NewMealsHandler(authService *service.AuthService, settings *service.SettingsService, entries *service.EntryService, pipelines *service.PipelineManager, prep *service.ImagePrepService, limiter *middleware.RateLimiter) *MealsHandler {
	return &MealsHandler{
		authService: authService,
		settings:    settings,
		entries:     entries,
		pipelines:   pipelines,
		prep:        prep,
		limiter:     limiter,
	}
}

func (h *MealsHandler) RegisterRoutes(router *gin.RouterGroup) {
	meals := router.Group("/meals")
	meals.Use(middleware.AuthMiddleware(h.authService))

	// Provider-backed calls burn user quota and get their own ceiling.
	analysis := meals.Group("")
	if h.limiter != nil {
		analysis.Use(h.limiter.RateLimitMiddleware())
	}
	analysis.POST("/identify", h.Identify)
	analysis.POST("/calculate", h.Calculate)

	{
		meals.GET("/state", h.State)
		meals.GET("/review", h.Review)
		meals.POST("/review/items", h.AddItem)
		meals.PUT("/review/items/:index", h.UpdateItem)
		meals.DELETE("/review/items/:index", h.RemoveItem)
		meals.POST("/review/items/:index/adjust", h.AdjustItem)
		meals.POST("/retry", h.Retry)
		meals.POST("/abandon", h.Abandon)
	}
}

// gateway builds a provider client bound to the user's stored credential.
// An empty key is allowed here; identification degrades and calculation
// reports the missing key itself.
func (h *MealsHandler) gateway(c *gin.Context, userID uuid.UUID) (*service.VisionService, error) {
	key, err := h.settings.VisionKey(c.Request.Context(), userID)
	if err != nil {
		return nil, err
	}
	return service.NewVisionService(key, h.visionURL, h.visionClient), nil
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return uuid.Nil, false
	}
	return userID.(uuid.UUID), true
}

func (h *MealsHandler) Identify(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	encoded := req.Image
	if raw, err := base64.StdEncoding.DecodeString(req.Image); err == nil {
		encoded = h.prep.PrepareBytes(raw)
	}

	gateway, err := h.gateway(c, userID)
	if err != nil {
		log.Printf("[MealsHandler] failed to load credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load credentials"})
		return
	}

	result, err := h.pipelines.Get(userID).Identify(c.Request.Context(), gateway, encoded)
	if err != nil {
		if errors.Is(err, service.ErrAnalysisInFlight) {
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "identification failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *MealsHandler) State(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.pipelines.Get(userID).State()})
}

func (h *MealsHandler) Review(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	pipeline := h.pipelines.Get(userID)
	session := pipeline.Session()
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no review in progress"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":       pipeline.State(),
		"items":       session.Items(),
		"can_proceed": session.CanProceed(),
	})
}

func (h *MealsHandler) AddItem(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session := h.pipelines.Get(userID).Session()
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no review in progress"})
		return
	}

	index := session.AddItem()
	c.JSON(http.StatusCreated, gin.H{"index": index, "items": session.Items()})
}

func (h *MealsHandler) reviewItemIndex(c *gin.Context) (*service.ReviewSession, int, bool) {
	userID, ok := currentUserID(c)
	if !ok {
		return nil, 0, false
	}

	session := h.pipelines.Get(userID).Session()
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no review in progress"})
		return nil, 0, false
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil || index < 0 || index >= session.Len() {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return nil, 0, false
	}
	return session, index, true
}

func (h *MealsHandler) UpdateItem(c *gin.Context) {
	session, index, ok := h.reviewItemIndex(c)
	if !ok {
		return
	}

	var req ReviewItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	if req.Name != "" {
		session.UpdateName(index, req.Name)
	}
	if req.Quantity != "" {
		session.UpdateQuantity(index, req.Quantity)
	}
	if req.EstimatedSize != "" {
		session.UpdateEstimatedSize(index, req.EstimatedSize)
	}

	c.JSON(http.StatusOK, gin.H{"items": session.Items()})
}

func (h *MealsHandler) RemoveItem(c *gin.Context) {
	session, index, ok := h.reviewItemIndex(c)
	if !ok {
		return
	}

	session.RemoveItem(index)
	c.JSON(http.StatusOK, gin.H{"items": session.Items(), "can_proceed": session.CanProceed()})
}

func (h *MealsHandler) AdjustItem(c *gin.Context) {
	session, index, ok := h.reviewItemIndex(c)
	if !ok {
		return
	}

	var req AdjustQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session.AdjustQuantity(index, req.Delta)
	c.JSON(http.StatusOK, gin.H{"items": session.Items()})
}

func (h *MealsHandler) Calculate(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	gateway, err := h.gateway(c, userID)
	if err != nil {
		log.Printf("[MealsHandler] failed to load credential: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load credentials"})
		return
	}

	entry, err := h.pipelines.Get(userID).Calculate(c.Request.Context(), gateway, h.entries, userID, service.CalculateParams{
		ImageURI:  req.ImageURI,
		Timestamp: req.Timestamp,
		MealType:  req.MealType,
		Notes:     req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoAPIKey):
			c.JSON(http.StatusPreconditionFailed, gin.H{"error": "vision provider API key not configured"})
		case errors.Is(err, service.ErrAnalysisInFlight):
			c.JSON(http.StatusConflict, gin.H{"error": "analysis already in progress"})
		case errors.Is(err, service.ErrNoItems):
			c.JSON(http.StatusBadRequest, gin.H{"error": "at least one food item is required"})
		case errors.Is(err, service.ErrInvalidState):
			c.JSON(http.StatusConflict, gin.H{"error": "no confirmed review to calculate"})
		default:
			log.Printf("[MealsHandler] calculate failed for user %s: %v", userID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save entry"})
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

func (h *MealsHandler) Retry(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := h.pipelines.Get(userID).Retry(); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "nothing to retry"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": h.pipelines.Get(userID).State()})
}

func (h *MealsHandler) Abandon(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	h.pipelines.Get(userID).Abandon()
	c.JSON(http.StatusOK, gin.H{"state": h.pipelines.Get(userID).State()})
}
