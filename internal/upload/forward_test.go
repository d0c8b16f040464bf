package upload

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/nalgeon/be"
	"github.com/pasteimg/pasteimg-go/internal/domain"
)

func TestForward(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			be.Equal(t, r.Method, http.MethodPost)
			be.Equal(t, r.Header.Get("User-Agent"), "PasteImg-Relay/"+Version)

			be.Err(t, r.ParseMultipartForm(1<<20), nil)
			_, fh, err := r.FormFile("file")
			be.Err(t, err, nil)
			be.Equal(t, fh.Filename, "photo.png")

			w.Write([]byte(`{"url":"https://x/hosted.png"}`))
		}))
		defer srv.Close()

		f := NewForwarder(srv.URL, time.Second)
		res, err := f.Forward(context.Background(), testFile2("photo.png"))
		be.Err(t, err, nil)
		be.Equal(t, res.URL, "https://x/hosted.png")
		be.Equal(t, res.Filename, "photo.png")
	})

	t.Run("strips_path_from_filename", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"url":"https://x/hosted.png"}`))
		}))
		defer srv.Close()

		f := NewForwarder(srv.URL, time.Second)
		res, err := f.Forward(context.Background(), testFile2("../../etc/passwd.png"))
		be.Err(t, err, nil)
		be.Equal(t, res.Filename, "passwd.png")
	})

	t.Run("non_200_status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		f := NewForwarder(srv.URL, time.Second)
		_, err := f.Forward(context.Background(), testFile2("photo.png"))

		var ue *domain.UploadError
		be.True(t, errors.As(err, &ue))
		be.Equal(t, ue.Reason, domain.ReasonNonSuccessStatus)
		be.True(t, strings.Contains(ue.Message, "503"))
	})

	t.Run("unparseable_body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		f := NewForwarder(srv.URL, time.Second)
		_, err := f.Forward(context.Background(), testFile2("photo.png"))

		var ue *domain.UploadError
		be.True(t, errors.As(err, &ue))
		be.Equal(t, ue.Reason, domain.ReasonMalformedResponse)
	})

	t.Run("transport_failure", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close() // connection refused from here on

		f := NewForwarder(srv.URL, time.Second)
		_, err := f.Forward(context.Background(), testFile2("photo.png"))

		var ue *domain.UploadError
		be.True(t, errors.As(err, &ue))
		be.Equal(t, ue.Reason, domain.ReasonTransportFailure)
	})
}

func testFile2(name string) domain.PastedFile {
	return domain.PastedFile{
		Name:        name,
		ContentType: "image/png",
		Data:        []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A},
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "photo.png", "photo.png"},
		{"unix_path", "/home/user/cat.jpg", "cat.jpg"},
		{"windows_path", `C:\Users\Public\dog.gif`, "dog.gif"},
		{"angle_brackets", "img<evil>.png", "img-evil-.png"},
		{"control_chars", "file\x00\x1fname.png", "filename.png"},
		{"spaces_kept", "my screenshot.png", "my screenshot.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			be.Equal(t, SanitizeFilename(tt.input), tt.want)
		})
	}

	t.Run("empty_gets_generated_name", func(t *testing.T) {
		got := SanitizeFilename("")
		be.True(t, strings.HasPrefix(got, "pasted-"))
		be.True(t, len(got) > len("pasted-"))
	})
}
