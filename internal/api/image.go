package api

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mealsnap/backend/internal/middleware"
	"github.com/mealsnap/backend/internal/service"
)

// 10MB covers any phone camera JPEG after client-side capture.
const maxUploadBytes = 10 << 20

type ImageHandler struct {
	authService  *service.AuthService
	imageService *service.ImageService
}

func NewImageHandler(authService *service.AuthService, imageService *service.ImageService) *ImageHandler {
	return &ImageHandler{
		authService:  authService,
		imageService: imageService,
	}
}

func (h *ImageHandler) RegisterRoutes(router *gin.RouterGroup) {
	images := router.Group("/images")
	images.Use(middleware.AuthMiddleware(h.authService))
	{
		images.POST("", h.Upload)
	}
}

// Upload stores a captured meal photo and returns its durable URL for use as
// an entry's image_uri.
func (h *ImageHandler) Upload(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	if h.imageService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "image storage not configured"})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read image"})
		return
	}
	if len(data) > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image too large"})
		return
	}

	url, err := h.imageService.UploadMealPhoto(c.Request.Context(), userID, data)
	if err != nil {
		log.Printf("[ImageHandler] upload failed for user %s: %v", userID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store image"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image_uri": url})
}
