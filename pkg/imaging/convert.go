package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image/png"
	"net/http"
	"strings"

	"github.com/kolesa-team/go-webp/decoder"
	"github.com/kolesa-team/go-webp/webp"
)

const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEWebP = "image/webp"
)

// ErrUnsupportedFormat indicates an upload the gateway cannot convert.
var ErrUnsupportedFormat = errors.New("imaging: unsupported image format")

// DetectMIME trusts the declared content type when it is specific and falls
// back to sniffing the payload otherwise.
func DetectMIME(data []byte, declared string) string {
	declared = strings.TrimSpace(strings.ToLower(declared))
	if i := strings.Index(declared, ";"); i >= 0 {
		declared = strings.TrimSpace(declared[:i])
	}
	if declared != "" && declared != "application/octet-stream" {
		return declared
	}
	return http.DetectContentType(data)
}

// EnsureRenderable converts an upload into a format the render service's
// image-to-image endpoint accepts. PNG and JPEG pass through untouched; WebP
// is decoded and re-encoded as PNG.
func EnsureRenderable(data []byte, mime string) ([]byte, string, error) {
	switch mime {
	case MIMEPNG, MIMEJPEG:
		return data, mime, nil
	case MIMEWebP:
		img, err := webp.Decode(bytes.NewReader(data), &decoder.Options{})
		if err != nil {
			return nil, "", fmt.Errorf("imaging: decode webp: %w", err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("imaging: encode png: %w", err)
		}
		return buf.Bytes(), MIMEPNG, nil
	default:
		return nil, "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}
}

// DataURL inlines an image for providers that accept data URLs instead of
// hosted sources.
func DataURL(data []byte, mime string) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
