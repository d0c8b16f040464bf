package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/editor"
	"github.com/pasteimg/pasteimg-go/internal/security"
)

// MaxRetries is the total attempt budget for one upload.
const MaxRetries = 3

// retryDelays is the fixed backoff between attempts, indexed by the
// zero-based failed-attempt count.
var retryDelays = [...]time.Duration{
	1000 * time.Millisecond,
	2000 * time.Millisecond,
	4000 * time.Millisecond,
}

// RetryNoticeID is the stable notice id for the i-th retry, so terminal
// outcomes can clear every transient retry notice.
func RetryNoticeID(i int) string {
	return fmt.Sprintf("retry-%d", i)
}

// Client uploads a pasted file as a multipart POST with bounded retry.
// The two deployment variants differ only in where the request goes and
// which form fields ride along; the retry loop is shared.
type Client struct {
	httpClient *http.Client
	target     string
	notifier   editor.Notifier
	maxRetries int

	// relay-authenticated variant; empty for direct uploads
	nonce  string
	action string

	// sleep is swapped out in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// NewDirect builds a client that posts straight to the external endpoint.
func NewDirect(httpClient *http.Client, endpoint string, notifier editor.Notifier) *Client {
	return newClient(httpClient, endpoint, notifier)
}

// NewRelay builds a client that posts through the authenticated relay,
// attaching the session nonce and action namespace.
func NewRelay(httpClient *http.Client, relayURL, nonce string, notifier editor.Notifier) *Client {
	c := newClient(httpClient, relayURL, notifier)
	c.nonce = nonce
	c.action = security.ActionUpload
	return c
}

func newClient(httpClient *http.Client, target string, notifier editor.Notifier) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		target:     target,
		notifier:   notifier,
		maxRetries: MaxRetries,
		sleep:      sleepCtx,
	}
}

// Upload runs the attempt/backoff loop until a URL resolves or the budget
// is exhausted. Non-retryable failures surface immediately; the final
// attempt's failure is terminal and keeps its message.
func (c *Client) Upload(ctx context.Context, file domain.PastedFile) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		url, err := c.attempt(ctx, file)
		if err == nil {
			return url, nil
		}
		lastErr = err

		var ue *domain.UploadError
		if errors.As(err, &ue) && !ue.Retryable() {
			return "", err
		}

		if attempt == c.maxRetries-1 {
			break
		}

		if err := c.sleep(ctx, retryDelays[attempt]); err != nil {
			return "", err
		}

		if c.notifier != nil {
			c.notifier.Notice(editor.SeverityInfo,
				fmt.Sprintf("Upload failed, retrying... (%d/%d)", attempt+2, c.maxRetries),
				editor.NoticeOptions{ID: RetryNoticeID(attempt)})
		}
	}

	var ue *domain.UploadError
	if errors.As(lastErr, &ue) {
		return "", lastErr
	}
	return "", domain.NewUploadError(domain.ReasonTransportFailure,
		"upload failed, please try again later")
}

func (c *Client) attempt(ctx context.Context, file domain.PastedFile) (string, error) {
	body, contentType, err := c.encodeForm(file)
	if err != nil {
		return "", domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.target, body)
	if err != nil {
		return "", domain.NewUploadError(domain.ReasonTransportFailure, "%s", err.Error())
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.NewUploadError(domain.ReasonTransportFailure, "upload request failed: %v", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.NewUploadError(domain.ReasonTransportFailure, "upload request failed: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", domain.NewUploadError(domain.ReasonNonSuccessStatus,
			"upload failed with HTTP status %d", resp.StatusCode)
	}

	return ParseResponse(payload)
}

func (c *Client) encodeForm(file domain.PastedFile) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", err
	}

	if c.nonce != "" {
		if err := w.WriteField("nonce", c.nonce); err != nil {
			return nil, "", err
		}
		if err := w.WriteField("action", c.action); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
