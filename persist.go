package coverpick

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Header images are normalized to this size.
const (
	HeaderWidth  = 1600
	HeaderHeight = 900

	headerJPEGQuality = 88
	persistTimeout    = 30 * time.Second
	persistMaxBytes   = 20 << 20 // 20MB
)

// PersistedImage is an accepted image saved locally.
type PersistedImage struct {
	Path   string          `json:"path"`
	Width  int             `json:"width"`
	Height int             `json:"height"`
	Rights *RightsMetadata `json:"rights,omitempty"`
}

// Persist downloads the image at rawURL (http(s) or data:), center-crops and
// scales it to HeaderWidth x HeaderHeight, and writes it as a JPEG into dir.
func Persist(ctx context.Context, client *http.Client, rawURL, dir string) (*PersistedImage, error) {
	r, err := Download(ctx, client, rawURL, DownloadOpts{
		MaxBytes: persistMaxBytes,
		Timeout:  persistTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	img, err := decodeImage(r.Data)
	if err != nil {
		return nil, fmt.Errorf("persist: decode %s: %w", r.MIMEType, err)
	}
	data, err := encodeJPEG(fitAspect(img, HeaderWidth, HeaderHeight), headerJPEGQuality)
	if err != nil {
		return nil, fmt.Errorf("persist: encode: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".jpg")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("persist: %w", err)
	}

	return &PersistedImage{
		Path:   path,
		Width:  HeaderWidth,
		Height: HeaderHeight,
		Rights: ExtractRightsMetadata(r.Data),
	}, nil
}
