package main

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/editor"
)

// consoleEditor stands in for the host editor on the command line: notices
// go to stdout, block insertion prints the URL, announcements are silent.
type consoleEditor struct {
	out io.Writer
}

func (e *consoleEditor) Notice(severity editor.Severity, message string, opts editor.NoticeOptions) {
	fmt.Fprintf(e.out, "[%s] %s\n", severity, message)
}

func (e *consoleEditor) Remove(id string) {}

func (e *consoleEditor) Speak(message string) {}

func (e *consoleEditor) InsertImage(ctx context.Context, block domain.ImageBlock) error {
	fmt.Fprintln(e.out, block.URL)
	return nil
}

// bearerTransport attaches the relay bearer token to every request.
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}
	return t.base.RoundTrip(req)
}

func newHTTPClient(token string) *http.Client {
	return &http.Client{
		Transport: &bearerTransport{token: token, base: http.DefaultTransport},
	}
}
