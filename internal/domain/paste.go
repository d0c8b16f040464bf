package domain

// PastedFile is a single file lifted off the clipboard. It lives for one
// paste-handling cycle and is owned by the controller; everything else
// reads it.
type PastedFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (f PastedFile) Size() int64 {
	return int64(len(f.Data))
}

// ImageBlock describes the image block handed to the host editor after a
// successful upload.
type ImageBlock struct {
	URL     string
	Alt     string
	Caption string
}

// UploadConfig is the slice of configuration the validation and upload
// paths read. Immutable for the duration of a request.
type UploadConfig struct {
	Endpoint     string
	MaxBytes     int64
	AllowedTypes []string
}

func (c UploadConfig) Allowed(contentType string) bool {
	for _, t := range c.AllowedTypes {
		if t == contentType {
			return true
		}
	}
	return false
}
