package validate

import (
	"bytes"
	"fmt"

	"github.com/pasteimg/pasteimg-go/internal/domain"
)

// magicLen is how many leading bytes the signature check reads.
const magicLen = 8

// Result is the accept/reject decision for one candidate file.
type Result struct {
	OK      bool
	Reason  domain.Reason
	Message string
}

func accept() Result {
	return Result{OK: true}
}

func reject(reason domain.Reason, format string, args ...any) Result {
	return Result{Reason: reason, Message: fmt.Sprintf(format, args...)}
}

type signature struct {
	prefix []byte // at offset 0
	riff   bool   // WEBP: also requires "WEBP" ASCII at offset 8
}

// signatures maps declared MIME types to the leading bytes they must carry.
// Types without an entry pass the signature check by default.
var signatures = map[string]signature{
	"image/jpeg": {prefix: []byte{0xFF, 0xD8}},
	"image/png":  {prefix: []byte{0x89, 0x50, 0x4E, 0x47}},
	"image/gif":  {prefix: []byte{0x47, 0x49, 0x46}},
	"image/webp": {prefix: []byte{0x52, 0x49, 0x46, 0x46}, riff: true},
}

// File runs the client-side checks in order, stopping at the first
// failure: declared type membership, byte ceiling, magic-byte signature.
func File(file domain.PastedFile, cfg domain.UploadConfig) Result {
	if file.ContentType == "" || !cfg.Allowed(file.ContentType) {
		return reject(domain.ReasonUnsupportedType,
			"unsupported image type %q, use JPG, PNG, GIF or WebP", file.ContentType)
	}

	if file.Size() > cfg.MaxBytes {
		return reject(domain.ReasonTooLarge,
			"image too large: %.2fMB > %.2fMB limit",
			float64(file.Size())/1024/1024, float64(cfg.MaxBytes)/1024/1024)
	}

	sig, ok := signatures[file.ContentType]
	if !ok {
		return accept()
	}

	head := file.Data
	if len(head) > magicLen {
		head = head[:magicLen]
	}
	if !bytes.HasPrefix(head, sig.prefix) {
		return reject(domain.ReasonSignatureMismatch,
			"file content does not match the declared %s type", file.ContentType)
	}
	if sig.riff && !hasWebPMarker(file.Data) {
		return reject(domain.ReasonSignatureMismatch,
			"file content does not match the declared %s type", file.ContentType)
	}

	return accept()
}

func hasWebPMarker(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[8:12], []byte("WEBP"))
}
