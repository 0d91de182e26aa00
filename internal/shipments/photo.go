package shipments

import (
	"fmt"
	"io"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

var photoExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
}

// Photo is an optional proof-of-delivery image attached to a shipment event.
type Photo struct {
	Body        io.Reader
	Filename    string
	ContentType string
}

func photoMediaType(value string) (string, error) {
	clean := strings.TrimSpace(value)
	if clean == "" {
		return "", fmt.Errorf("content type required")
	}
	mediaType, _, err := mime.ParseMediaType(clean)
	if err != nil {
		return "", fmt.Errorf("content type invalid: %w", err)
	}
	mediaType = strings.ToLower(mediaType)
	if _, ok := photoExtensions[mediaType]; !ok {
		return "", fmt.Errorf("content type %q is not an accepted image", mediaType)
	}
	return mediaType, nil
}

// photoObjectName places proofs under shipments/<order id>/ with a random name.
// The extension comes from the filename when it has one, else from the type.
func photoObjectName(orderID uint64, filename, mediaType string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(filename)))
	if ext == "" || len(ext) > 6 {
		ext = photoExtensions[mediaType]
	}
	return fmt.Sprintf("shipments/%d/%s%s", orderID, uuid.NewString(), ext)
}
