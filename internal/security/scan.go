package security

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
)

// scanWindow is how many leading bytes the content scan inspects.
const scanWindow = 1024

// maliciousMarkers are textual payloads that have no business inside an
// image file. Lowercase; the scan is case-insensitive.
var maliciousMarkers = [][]byte{
	[]byte("<?php"),
	[]byte("<script"),
	[]byte("javascript:"),
	[]byte("vbscript:"),
	[]byte("data:text/html"),
}

// ContainsMaliciousContent scans the leading bytes for script and markup
// markers that indicate a disguised payload.
func ContainsMaliciousContent(data []byte) bool {
	head := data
	if len(head) > scanWindow {
		head = head[:scanWindow]
	}
	head = bytes.ToLower(head)
	for _, marker := range maliciousMarkers {
		if bytes.Contains(head, marker) {
			return true
		}
	}
	return false
}

var ErrBadEndpoint = errors.New("invalid endpoint URL")

// ValidateEndpoint checks a candidate upload endpoint for configuration-time
// feedback: it must parse as an absolute http or https URL.
func ValidateEndpoint(raw string) (string, error) {
	if raw == "" {
		return "", ErrBadEndpoint
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBadEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: endpoint must be an absolute http(s) URL", ErrBadEndpoint)
	}
	return u.String(), nil
}
