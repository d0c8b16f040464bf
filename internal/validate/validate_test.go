package validate

import (
	"bytes"
	"strings"
	"testing"

	"github.com/nalgeon/be"
	"github.com/pasteimg/pasteimg-go/internal/domain"
)

func testConfig() domain.UploadConfig {
	return domain.UploadConfig{
		MaxBytes:     2 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/svg+xml"},
	}
}

func pngBytes(extra int) []byte {
	head := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(head, make([]byte, extra)...)
}

func TestFile(t *testing.T) {
	cfg := testConfig()

	tests := []struct {
		name       string
		file       domain.PastedFile
		wantOK     bool
		wantReason domain.Reason
	}{
		{
			name:       "disallowed_type",
			file:       domain.PastedFile{ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
			wantReason: domain.ReasonUnsupportedType,
		},
		{
			name:       "empty_type",
			file:       domain.PastedFile{ContentType: "", Data: pngBytes(16)},
			wantReason: domain.ReasonUnsupportedType,
		},
		{
			name:       "disallowed_type_with_valid_png_bytes",
			file:       domain.PastedFile{ContentType: "image/bmp", Data: pngBytes(16)},
			wantReason: domain.ReasonUnsupportedType,
		},
		{
			name:       "too_large",
			file:       domain.PastedFile{ContentType: "image/png", Data: pngBytes(2*1024*1024 + 1)},
			wantReason: domain.ReasonTooLarge,
		},
		{
			name:   "exactly_at_limit",
			file:   domain.PastedFile{ContentType: "image/png", Data: pngBytes(2*1024*1024 - 8)},
			wantOK: true,
		},
		{
			name:       "png_signature_mismatch",
			file:       domain.PastedFile{ContentType: "image/png", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 1, 2, 3, 4}},
			wantReason: domain.ReasonSignatureMismatch,
		},
		{
			name:   "png_valid",
			file:   domain.PastedFile{ContentType: "image/png", Data: pngBytes(16)},
			wantOK: true,
		},
		{
			name:   "jpeg_valid",
			file:   domain.PastedFile{ContentType: "image/jpeg", Data: []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F'}},
			wantOK: true,
		},
		{
			name:   "gif_valid",
			file:   domain.PastedFile{ContentType: "image/gif", Data: []byte("GIF89a\x01\x00")},
			wantOK: true,
		},
		{
			name:   "webp_valid",
			file:   domain.PastedFile{ContentType: "image/webp", Data: []byte("RIFF\x24\x00\x00\x00WEBPVP8 ")},
			wantOK: true,
		},
		{
			name:       "webp_riff_without_marker",
			file:       domain.PastedFile{ContentType: "image/webp", Data: []byte("RIFF\x24\x00\x00\x00WAVEfmt ")},
			wantReason: domain.ReasonSignatureMismatch,
		},
		{
			name:       "truncated_png",
			file:       domain.PastedFile{ContentType: "image/png", Data: []byte{0x89, 0x50}},
			wantReason: domain.ReasonSignatureMismatch,
		},
		{
			name:   "no_signature_defined_accepts",
			file:   domain.PastedFile{ContentType: "image/svg+xml", Data: []byte("<svg xmlns=...")},
			wantOK: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := File(tt.file, cfg)
			be.Equal(t, res.OK, tt.wantOK)
			if !tt.wantOK {
				be.Equal(t, res.Reason, tt.wantReason)
			}
		})
	}
}

func TestFileTooLargeMessage(t *testing.T) {
	cfg := testConfig()
	cfg.MaxBytes = 1024 * 1024

	file := domain.PastedFile{ContentType: "image/png", Data: pngBytes(1536 * 1024)}
	res := File(file, cfg)

	be.Equal(t, res.OK, false)
	be.True(t, strings.Contains(res.Message, "1.50MB"))
	be.True(t, strings.Contains(res.Message, "1.00MB"))
}

func TestFileReadsOnlyLeadingBytes(t *testing.T) {
	// A signature match must hold even when garbage follows the header.
	data := append(pngBytes(0), bytes.Repeat([]byte{0xAB}, 100)...)
	res := File(domain.PastedFile{ContentType: "image/png", Data: data}, testConfig())
	be.Equal(t, res.OK, true)
}
