package relay

import (
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pasteimg/pasteimg-go/internal/auth"
	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/metrics"
	"github.com/pasteimg/pasteimg-go/internal/security"
	"github.com/pasteimg/pasteimg-go/internal/upload"
	"github.com/pasteimg/pasteimg-go/internal/validate"
)

// responseData is the inner payload of the wrapped response shape.
type responseData struct {
	URL      string `json:"url,omitempty"`
	Filename string `json:"filename,omitempty"`
	Message  string `json:"message,omitempty"`
}

type response struct {
	Success bool         `json:"success"`
	Data    responseData `json:"data"`
}

// Handler is the authenticated upload relay: it re-validates what the
// client already validated, applies the security gate, and proxies
// accepted bytes to the external host.
type Handler struct {
	cfg       domain.UploadConfig
	limiter   security.Limiter
	nonces    *security.Nonces
	events    *security.EventLog
	forwarder upload.Forwarder
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewHandler(cfg domain.UploadConfig, limiter security.Limiter, nonces *security.Nonces, events *security.EventLog, forwarder upload.Forwarder, m *metrics.Metrics, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		limiter:   limiter,
		nonces:    nonces,
		events:    events,
		forwarder: forwarder,
		metrics:   m,
		logger:    logger,
	}
}

// softError answers HTTP 200 with a structured failure the client can
// display, mirroring the wrapped response shape.
func softError(c *gin.Context, message string) {
	c.JSON(http.StatusOK, response{Success: false, Data: responseData{Message: message}})
}

// Upload handles POST /upload. Every step short-circuits; only the
// permission check hard-terminates the request without a structured
// payload.
func (h *Handler) Upload(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.nonces.Verify(c.PostForm("nonce"), security.ActionUpload); err != nil {
		h.events.Record(security.EventNonceInvalid, "invalid nonce verification attempt",
			actor.ID, c.ClientIP(), "action", security.ActionUpload)
		h.countOutcome("nonce_invalid")
		softError(c, "Security verification failed.")
		return
	}

	if !actor.Can(auth.PermissionUpload) {
		h.events.Record(security.EventPermissionDenied, "actor without upload permission attempted upload",
			actor.ID, c.ClientIP())
		h.countOutcome("permission_denied")
		c.String(http.StatusForbidden, "You do not have permission to upload files.")
		c.Abort()
		return
	}

	decision, err := h.limiter.Allow(c.Request.Context(), actor.ID)
	if err != nil {
		h.logger.Error("rate limiter failed", "error", err)
		softError(c, "Upload failed, please try again later.")
		return
	}
	if !decision.Allowed {
		h.events.Record(security.EventRateLimitExceeded, "actor exceeded upload rate limit",
			actor.ID, c.ClientIP(), "limit", decision.Limit)
		h.metrics.RateLimitedTotal.Inc()
		h.countOutcome("rate_limited")
		softError(c, "Too many uploads, please slow down and try again.")
		return
	}

	fileHeader, data, ok := h.takeFile(c)
	if !ok {
		h.countOutcome("invalid_request")
		softError(c, "File upload failed.")
		return
	}

	if reasons := validate.Server(data); len(reasons) > 0 {
		h.events.Record(security.EventFileValidationFailed, "file failed security validation",
			actor.ID, c.ClientIP(), "reasons", strings.Join(reasons, "; "), "filename", fileHeader.Filename)
		h.metrics.ValidationFailures.WithLabelValues("server_pass").Inc()
		h.countOutcome("validation_failed")
		softError(c, strings.Join(reasons, " "))
		return
	}

	declared := declaredType(fileHeader)
	detected, ok := validate.SniffOK(declared, data, h.cfg)
	if !ok {
		h.events.Record(security.EventInvalidFileType, "invalid file type detected",
			actor.ID, c.ClientIP(), "declared", declared, "detected", detected)
		h.metrics.ValidationFailures.WithLabelValues("sniff_mismatch").Inc()
		h.countOutcome("invalid_type")
		softError(c, "Unsupported file type.")
		return
	}

	if fileHeader.Size > h.cfg.MaxBytes {
		h.metrics.ValidationFailures.WithLabelValues("too_large").Inc()
		h.countOutcome("too_large")
		softError(c, "File too large.")
		return
	}

	start := time.Now()
	result, err := h.forwarder.Forward(c.Request.Context(), domain.PastedFile{
		Name:        fileHeader.Filename,
		ContentType: detected,
		Data:        data,
	})
	h.metrics.ForwardDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		h.logger.Warn("forward to external host failed", "error", err, "actor", actor.ID)
		h.countOutcome("forward_failed")
		softError(c, err.Error())
		return
	}

	h.metrics.UploadBytes.Observe(float64(len(data)))
	h.countOutcome("success")
	h.logger.Info("upload relayed", "actor", actor.ID, "filename", result.Filename, "size", len(data))

	c.JSON(http.StatusOK, response{
		Success: true,
		Data:    responseData{URL: result.URL, Filename: result.Filename},
	})
}

// takeFile requires exactly one well-formed "file" part and returns its
// bytes, reading at most one byte past the configured ceiling.
func (h *Handler) takeFile(c *gin.Context) (*multipart.FileHeader, []byte, bool) {
	form, err := c.MultipartForm()
	if err != nil {
		h.logger.Warn("failed to parse multipart form", "error", err)
		return nil, nil, false
	}

	headers := form.File["file"]
	if len(headers) != 1 {
		return nil, nil, false
	}
	fh := headers[0]

	src, err := fh.Open()
	if err != nil {
		h.logger.Error("failed to open uploaded file", "error", err)
		return nil, nil, false
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.cfg.MaxBytes+1))
	if err != nil {
		h.logger.Error("failed to read uploaded file", "error", err)
		return nil, nil, false
	}
	return fh, data, true
}

// declaredType is the client-declared MIME type of the part, stripped of
// parameters. It is advisory only; the sniffed type decides.
func declaredType(fh *multipart.FileHeader) string {
	t := fh.Header.Get("Content-Type")
	if i := strings.IndexByte(t, ';'); i != -1 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

// VerifyEndpoint handles POST /verify-endpoint: configuration-time
// feedback on a candidate upload endpoint, independent of the upload path.
func (h *Handler) VerifyEndpoint(c *gin.Context) {
	actor, ok := auth.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return
	}

	if err := h.nonces.Verify(c.PostForm("nonce"), security.ActionUpload); err != nil {
		h.events.Record(security.EventNonceInvalid, "invalid nonce on endpoint verification",
			actor.ID, c.ClientIP())
		softError(c, "Security verification failed.")
		return
	}

	if _, err := security.ValidateEndpoint(c.PostForm("endpoint")); err != nil {
		softError(c, "Invalid endpoint URL.")
		return
	}

	c.JSON(http.StatusOK, response{Success: true, Data: responseData{Message: "Endpoint verified."}})
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) countOutcome(outcome string) {
	h.metrics.UploadsTotal.WithLabelValues(outcome).Inc()
}
