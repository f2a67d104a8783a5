package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	appsvc "pettech-backend/internal/app"
	"pettech-backend/internal/errs"
	"pettech-backend/internal/transport/http/response"
	"pettech-backend/internal/vision"
)

const uploadField = "file"

type UploadHandler struct {
	classifier *vision.Classifier
	imageURL   func(name string) string
	maxBytes   int64
}

// NewUploadHandler serves uploads through classifier. imageURL turns a stored
// name into the public URL of the static file route.
func NewUploadHandler(classifier *vision.Classifier, imageURL func(string) string, maxBytes int64) *UploadHandler {
	return &UploadHandler{classifier: classifier, imageURL: imageURL, maxBytes: maxBytes}
}

func (h *UploadHandler) Upload(c *gin.Context) {
	if h.maxBytes > 0 {
		// Multipart framing needs headroom beyond the file itself.
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+1<<20)
	}

	file, err := c.FormFile(uploadField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, appsvc.NewValidationError(uploadField, fmt.Sprintf("must be at most %d bytes", h.maxBytes)))
			return
		}
		response.Fail(c, appsvc.NewValidationError(uploadField, "is required"))
		return
	}
	if h.maxBytes > 0 && file.Size > h.maxBytes {
		response.Fail(c, appsvc.NewValidationError(uploadField, fmt.Sprintf("must be at most %d bytes", h.maxBytes)))
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Fail(c, errs.Wrap(err, "open uploaded file"))
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Fail(c, errs.Wrap(err, "read uploaded file"))
		return
	}

	result, err := h.classifier.Classify(c.Request.Context(), data, file.Filename)
	if err != nil {
		if errors.Is(err, vision.ErrInvalidName) {
			response.Fail(c, appsvc.NewValidationError(uploadField, "must have a usable filename"))
			return
		}
		response.Fail(c, err)
		return
	}

	response.Logger(c).Info("image classified",
		"stored_name", result.StoredName,
		"label", result.Label,
		"confidence", result.Confidence,
		"cached", result.Cached,
	)

	response.OK(c, gin.H{
		"message":     "Upload successful! Prediction complete.",
		"disease":     result.Label,
		"confidence":  result.Confidence,
		"image_path":  h.imageURL(result.StoredName),
		"explanation": fmt.Sprintf("The model detected '%s' with %s%% confidence.", result.Label, formatConfidence(result.Confidence)),
	})
}

// formatConfidence prints the shortest exact form and keeps one decimal for
// whole numbers, so 87 reads "87.0" and 87.25 reads "87.25".
func formatConfidence(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
