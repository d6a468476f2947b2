package server

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxImageBytes = 8 << 20

// formImage reads the multipart "image" part and resolves its mime type,
// sniffing the content when the part carries no Content-Type.
func formImage(c *gin.Context) ([]byte, string, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, "", newValidationError("image", "image_required", "image file is required")
	}
	if file.Size > maxImageBytes {
		return nil, "", newValidationError("image", "image_too_large", "image exceeds the size limit")
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, "", err
	}

	mimeType := strings.TrimSpace(file.Header.Get("Content-Type"))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}
