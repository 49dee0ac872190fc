package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/pacs-worklist-api/internal/models"
	"github.com/noah-isme/pacs-worklist-api/internal/service"
	appErrors "github.com/noah-isme/pacs-worklist-api/pkg/errors"
	"github.com/noah-isme/pacs-worklist-api/pkg/response"
)

type dicomUploader interface {
	Enabled() bool
	Submit(ctx context.Context, sessionID string, files []service.UploadedFile) (*models.UploadBatch, error)
}

// UploadHandler accepts DICOM Part 10 files for the archive.
type UploadHandler struct {
	service  dicomUploader
	maxBytes int64
}

// NewUploadHandler builds a new handler. maxBytes caps the whole multipart body.
func NewUploadHandler(service dicomUploader, maxBytes int64) *UploadHandler {
	if maxBytes <= 0 {
		maxBytes = 512 << 20
	}
	return &UploadHandler{service: service, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload DICOM files
// @Description Files are stored one at a time in the background; progress arrives as session notifications.
// @Tags DICOM
// @Accept multipart/form-data
// @Produce json
// @Param files formData file true "DICOM Part 10 files"
// @Success 202 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /dicom/upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if !h.service.Enabled() {
		response.Error(c, appErrors.ErrUploadDisabled)
		return
	}
	sessionID, err := sessionFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.ErrPayloadTooLarge)
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid multipart payload"))
		return
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "files are required"))
		return
	}

	files := make([]service.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		src, err := fh.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open file"))
			return
		}
		data, err := io.ReadAll(src)
		src.Close() //nolint:errcheck
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to buffer file"))
			return
		}
		files = append(files, service.UploadedFile{Name: fh.Filename, Data: data})
	}

	batch, err := h.service.Submit(c.Request.Context(), sessionID, files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, batch)
}
