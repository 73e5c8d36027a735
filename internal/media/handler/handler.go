// Package handler exposes the media service over HTTP.
package handler

import (
	"context"
	"net/http"

	"property_portal_backend/internal/media/transport"
	"property_portal_backend/platform/httpkit"
	"property_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Service is the media behaviour the handler depends on.
type Service interface {
	RequestPhotoUpload(ctx context.Context, tenantID uuid.UUID, req transport.PhotoUploadURLRequest) (transport.UploadURLResponse, error)
	ConfirmPhoto(ctx context.Context, tenantID uuid.UUID, req transport.ConfirmPhotoRequest) (transport.PhotoResponse, error)
	ListPhotos(ctx context.Context, tenantID uuid.UUID, req transport.ListPhotosRequest) ([]transport.PhotoResponse, error)
	PhotoDownloadURLs(ctx context.Context, tenantID, photoID uuid.UUID) (transport.DownloadURLResponse, error)
	DeletePhoto(ctx context.Context, tenantID, photoID uuid.UUID) error
	RequestReceiptUpload(ctx context.Context, tenantID uuid.UUID, req transport.ReceiptUploadURLRequest) (transport.UploadURLResponse, error)
	ConfirmReceipt(ctx context.Context, tenantID uuid.UUID, req transport.ConfirmReceiptRequest) (transport.ReceiptResponse, error)
	ReceiptDownloadURLs(ctx context.Context, tenantID, receiptID uuid.UUID) (transport.DownloadURLResponse, error)
}

// Handler handles HTTP requests for photos and receipts.
type Handler struct {
	svc Service
	val *validator.Validator
}

// New creates a new media handler.
func New(svc Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

// RegisterRoutes registers media routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	photos := rg.Group("/photos")
	photos.GET("", h.ListPhotos)
	photos.POST("/upload-url", h.PhotoUploadURL)
	photos.POST("/confirm", h.ConfirmPhoto)
	photos.GET("/:id/download-url", h.PhotoDownloadURL)
	photos.DELETE("/:id", h.DeletePhoto)

	receipts := rg.Group("/receipts")
	receipts.POST("/upload-url", h.ReceiptUploadURL)
	receipts.POST("/confirm", h.ConfirmReceipt)
	receipts.GET("/:id/download-url", h.ReceiptDownloadURL)
}

func (h *Handler) PhotoUploadURL(c *gin.Context) {
	var req transport.PhotoUploadURLRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.RequestPhotoUpload(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ConfirmPhoto(c *gin.Context) {
	var req transport.ConfirmPhotoRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ConfirmPhoto(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ListPhotos(c *gin.Context) {
	var req transport.ListPhotosRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ListPhotos(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"items": result})
}

func (h *Handler) PhotoDownloadURL(c *gin.Context) {
	id, tenantID, ok := h.idAndTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.PhotoDownloadURLs(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) DeletePhoto(c *gin.Context) {
	id, tenantID, ok := h.idAndTenant(c)
	if !ok {
		return
	}

	if err := h.svc.DeletePhoto(c.Request.Context(), tenantID, id); httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"message": "photo deleted"})
}

func (h *Handler) ReceiptUploadURL(c *gin.Context) {
	var req transport.ReceiptUploadURLRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.RequestReceiptUpload(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) ConfirmReceipt(c *gin.Context) {
	var req transport.ConfirmReceiptRequest
	if !h.bindJSON(c, &req) {
		return
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return
	}

	result, err := h.svc.ConfirmReceipt(c.Request.Context(), tenantID, req)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.JSON(c, http.StatusCreated, result)
}

func (h *Handler) ReceiptDownloadURL(c *gin.Context) {
	id, tenantID, ok := h.idAndTenant(c)
	if !ok {
		return
	}

	result, err := h.svc.ReceiptDownloadURLs(c.Request.Context(), tenantID, id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

func (h *Handler) bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, validator.Fields(err))
		return false
	}
	return true
}

func (h *Handler) idAndTenant(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return uuid.Nil, uuid.Nil, false
	}
	tenantID, ok := httpkit.MustGetTenantID(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return id, tenantID, true
}
