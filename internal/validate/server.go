package validate

import (
	"bytes"
	"image"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/security"
)

// maxPixelDimension caps decoded image width and height.
const maxPixelDimension = 10000

// Server runs the relay-side validation pass over the raw bytes. Unlike the
// client pass it does not trust the declared type and it collects every
// failure instead of stopping at the first one, so the caller can report
// them all at once.
func Server(data []byte) []string {
	var errs []string

	if len(data) == 0 {
		errs = append(errs, "file is empty")
	}

	if security.ContainsMaliciousContent(data) {
		errs = append(errs, "file contains potentially malicious content")
	}

	if len(data) > 0 {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			errs = append(errs, "unable to read image data")
		} else if cfg.Width > maxPixelDimension || cfg.Height > maxPixelDimension {
			errs = append(errs, "image dimensions too large")
		}
	}

	return errs
}

// SniffType re-derives the MIME type from content, ignoring whatever the
// client declared. The returned type is stripped of parameters.
func SniffType(data []byte) string {
	t := mimetype.Detect(data).String()
	if i := strings.IndexByte(t, ';'); i != -1 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// SniffOK checks the content-derived type against the allowed set, against
// the declared type when one was sent, and, where a signature is known for
// the derived type, against the leading bytes.
func SniffOK(declared string, data []byte, cfg domain.UploadConfig) (string, bool) {
	detected := SniffType(data)
	if !cfg.Allowed(detected) {
		return detected, false
	}
	if declared != "" && declared != detected {
		return detected, false
	}
	sig, known := signatures[detected]
	if !known {
		return detected, true
	}
	if !bytes.HasPrefix(data, sig.prefix) {
		return detected, false
	}
	if sig.riff && !hasWebPMarker(data) {
		return detected, false
	}
	return detected, true
}
