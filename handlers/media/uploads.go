package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/igtharvillage/thar-api/services"
	"github.com/igtharvillage/thar-api/services/spaces"
	"github.com/igtharvillage/thar-api/utils/response"
	"go.uber.org/zap"
)

const (
	maxFileSize   = 10 * 1024 * 1024 // 10MB
	maxBatchSize  = 20
	defaultFolder = "uploads"

	// BodyLimit is the request size the server must accept for uploads
	BodyLimit = 64 * 1024 * 1024
)

var allowedTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/webp":    true,
	"image/gif":     true,
	"image/svg+xml": true,
}

var folderPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*(/[a-z0-9][a-z0-9_-]*)*$`)

// Uploader stores and removes uploaded images
type Uploader interface {
	UploadMany(ctx context.Context, files []services.File, basePath string) ([]string, error)
	Delete(ctx context.Context, url string) error
}

// MediaHandler handles admin image uploads
type MediaHandler struct {
	uploader Uploader
}

func NewMediaHandler(uploader Uploader) *MediaHandler {
	return &MediaHandler{uploader: uploader}
}

// Upload handles POST /api/v1/admin/uploads (multipart "files" and "folder")
func (h *MediaHandler) Upload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, "Invalid multipart form")
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		return response.BadRequest(c, "No files provided")
	}
	if len(headers) > maxBatchSize {
		return response.BadRequest(c, fmt.Sprintf("At most %d files can be uploaded at once", maxBatchSize))
	}

	folder := defaultFolder
	if values := form.Value["folder"]; len(values) > 0 && strings.TrimSpace(values[0]) != "" {
		folder = strings.Trim(strings.ToLower(strings.TrimSpace(values[0])), "/")
	}
	if !folderPattern.MatchString(folder) {
		return response.BadRequest(c, "Invalid folder")
	}

	files := make([]services.File, 0, len(headers))
	for _, header := range headers {
		file, msg := readFile(header)
		if msg != "" {
			return response.BadRequest(c, msg)
		}
		files = append(files, file)
	}

	urls, err := h.uploader.UploadMany(c.UserContext(), files, folder)
	if err != nil {
		zap.S().Errorf("[MEDIA] upload of %d files to %s failed: %v", len(files), folder, err)
		return response.InternalServerError(c, "Failed to upload files")
	}

	return response.Created(c, fiber.Map{"urls": urls})
}

// readFile validates and reads one upload; a non-empty message is the
// reason it was rejected
func readFile(header *multipart.FileHeader) (services.File, string) {
	contentType := spaces.ContentType(header.Filename)
	if !allowedTypes[contentType] {
		return services.File{}, "Invalid file type: " + header.Filename + ". Supported: JPEG, PNG, WEBP, GIF, SVG"
	}
	if header.Size > maxFileSize {
		return services.File{}, "File " + header.Filename + " exceeds the 10MB limit"
	}

	src, err := header.Open()
	if err != nil {
		return services.File{}, "Failed to read " + header.Filename
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxFileSize+1))
	if err != nil {
		return services.File{}, "Failed to read " + header.Filename
	}
	if len(data) > maxFileSize {
		return services.File{}, "File " + header.Filename + " exceeds the 10MB limit"
	}

	return services.File{Name: header.Filename, ContentType: contentType, Data: data}, ""
}

// Delete handles DELETE /api/v1/admin/uploads?url=
func (h *MediaHandler) Delete(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return response.BadRequest(c, "Query parameter url is required")
	}

	if err := h.uploader.Delete(c.UserContext(), url); err != nil {
		if errors.Is(err, spaces.ErrForeignURL) {
			return response.BadRequest(c, "URL does not belong to the media store")
		}
		zap.S().Errorf("[MEDIA] delete of %s failed: %v", url, err)
		return response.InternalServerError(c, "Failed to delete file")
	}

	return response.SuccessWithMessage(c, "File deleted successfully", fiber.Map{"url": url})
}
