package paste

// Messages are the user-facing strings the controller emits. They are
// injected so a host can swap in its own translations; the defaults are
// the English catalog.
type Messages struct {
	Uploading       string
	UploadSuccess   string
	UploadFailed    string // generic fallback when a failure has no message
	WaitBeforeRetry string // fmt verb: remaining whole seconds
	TooLarge        string // fmt verbs: actual MB, limit MB
	UnsupportedType string
}

func DefaultMessages() Messages {
	return Messages{
		Uploading:       "Uploading image...",
		UploadSuccess:   "Upload complete, external image link inserted.",
		UploadFailed:    "Upload failed, please try again later.",
		WaitBeforeRetry: "Please wait %ds before pasting another image.",
		TooLarge:        "Image too large, upload blocked. (%.2fMB > %.2fMB)",
		UnsupportedType: "Unsupported image format, use JPG, PNG, GIF or WebP.",
	}
}
