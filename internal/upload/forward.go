package upload

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pasteimg/pasteimg-go/internal/domain"
)

// Version identifies this relay on the proxy leg.
const Version = "0.1.0"

const userAgent = "PasteImg-Relay/" + Version

// DefaultForwardTimeout bounds the proxy request to the external host.
const DefaultForwardTimeout = 30 * time.Second

// ForwardResult is the normalized outcome of a proxied upload.
type ForwardResult struct {
	URL      string
	Filename string
}

// Forwarder pushes validated file bytes to the external image host.
type Forwarder interface {
	Forward(ctx context.Context, file domain.PastedFile) (ForwardResult, error)
}

// HTTPForwarder proxies uploads as multipart POSTs with certificate
// verification left on and a bounded timeout.
type HTTPForwarder struct {
	httpClient *http.Client
	endpoint   string
}

func NewForwarder(endpoint string, timeout time.Duration) *HTTPForwarder {
	if timeout <= 0 {
		timeout = DefaultForwardTimeout
	}
	return &HTTPForwarder{
		httpClient: &http.Client{Timeout: timeout},
		endpoint:   endpoint,
	}
}

func (f *HTTPForwarder) Forward(ctx context.Context, file domain.PastedFile) (ForwardResult, error) {
	name := SanitizeFilename(file.Name)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", name)
	if err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}
	if _, err := part.Write(file.Data); err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}
	if err := w.Close(); err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, &buf)
	if err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure,
			"upload request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonTransportFailure,
			"upload request failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return ForwardResult{}, domain.NewUploadError(domain.ReasonNonSuccessStatus,
			"upload failed with HTTP status %d", resp.StatusCode)
	}

	url, err := ParseResponse(payload)
	if err != nil {
		return ForwardResult{}, err
	}

	return ForwardResult{URL: url, Filename: name}, nil
}

// SanitizeFilename strips path components and control characters from a
// client-supplied filename before it is echoed or forwarded. An empty
// result gets a generated name.
func SanitizeFilename(name string) string {
	if i := strings.LastIndexAny(name, `/\`); i != -1 {
		name = name[i+1:]
	}

	var sb strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r) || !unicode.IsPrint(r):
			continue
		case strings.ContainsRune(`<>:"|?*`, r):
			sb.WriteRune('-')
		default:
			sb.WriteRune(r)
		}
	}

	out := strings.TrimSpace(sb.String())
	if out == "" || out == "." || out == ".." {
		return "pasted-" + uuid.NewString()[:8]
	}
	return out
}
