package upload

import (
	"encoding/json"

	"github.com/pasteimg/pasteimg-go/internal/domain"
)

// envelope covers both response shapes a conformant host may emit: the
// flat {"url": ...} form and the wrapped {"success": ..., "data": {...}}
// form. Neither is canonical.
type envelope struct {
	URL     string `json:"url"`
	Success *bool  `json:"success"`
	Data    *struct {
		URL      string `json:"url"`
		Filename string `json:"filename"`
		Message  string `json:"message"`
	} `json:"data"`
}

// ParseResponse extracts the uploaded resource URL from a response body,
// tolerating either shape. A missing or empty URL is a malformed response;
// an explicit success=false carries the server's message.
func ParseResponse(body []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return "", domain.NewUploadError(domain.ReasonMalformedResponse,
			"upload service returned an invalid response")
	}

	if env.Success != nil && !*env.Success {
		msg := "upload failed"
		if env.Data != nil && env.Data.Message != "" {
			msg = env.Data.Message
		}
		return "", domain.NewUploadError(domain.ReasonNonSuccessStatus, "%s", msg)
	}

	if env.Data != nil && env.Data.URL != "" {
		return env.Data.URL, nil
	}
	if env.URL != "" {
		return env.URL, nil
	}

	return "", domain.NewUploadError(domain.ReasonMalformedResponse,
		"upload service returned an invalid response")
}
