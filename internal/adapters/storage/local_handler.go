package storage

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"property_portal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// LocalHandler serves the local store's presigned GET and PUT URLs.
// The signature is the credential, so these routes sit outside auth.
type LocalHandler struct {
	store *LocalStore
}

// NewLocalHandler creates the handler for a LocalStore.
func NewLocalHandler(store *LocalStore) *LocalHandler {
	return &LocalHandler{store: store}
}

// RegisterRoutes mounts GET/PUT under LocalObjectsPath.
func (h *LocalHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET(LocalObjectsPath+"/*key", h.Get)
	r.PUT(LocalObjectsPath+"/*key", h.Put)
}

// Get streams an object after checking the signature.
func (h *LocalHandler) Get(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if _, _, err := h.store.verify(http.MethodGet, key, c.Request.URL.Query()); err != nil {
		httpkit.Error(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	f, contentType, err := h.store.open(key)
	if errors.Is(err, os.ErrNotExist) {
		httpkit.Error(c, http.StatusNotFound, "object not found", nil)
		return
	}
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, err.Error(), nil)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		httpkit.Error(c, http.StatusInternalServerError, "stat object", nil)
		return
	}
	c.DataFromReader(http.StatusOK, info.Size(), contentType, f, nil)
}

// Put stores an object. The Content-Type header must equal the signed one.
func (h *LocalHandler) Put(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")
	signedType, signedSize, err := h.store.verify(http.MethodPut, key, c.Request.URL.Query())
	if err != nil {
		httpkit.Error(c, http.StatusForbidden, err.Error(), nil)
		return
	}

	if NormalizeContentType(c.GetHeader("Content-Type")) != signedType {
		httpkit.Error(c, http.StatusForbidden, "content type does not match signed content type", nil)
		return
	}

	if _, err := h.store.write(key, signedType, c.Request.Body, signedSize); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			httpkit.Error(c, http.StatusRequestEntityTooLarge, err.Error(), nil)
			return
		}
		httpkit.Error(c, http.StatusInternalServerError, "store object", nil)
		return
	}

	c.Status(http.StatusOK)
}
