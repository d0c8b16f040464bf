// Package editor defines the narrow capability surface of the host block
// editor. The paste pipeline depends on these interfaces only; the real
// editor bindings (and the console fallbacks in cmd/pasteimg) implement
// them.
package editor

import (
	"context"

	"github.com/pasteimg/pasteimg-go/internal/domain"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type NoticeOptions struct {
	Dismissible bool
	// ID lets a later Remove target this notice. Empty means the notice
	// cannot be removed programmatically.
	ID string
}

// Notifier is the host editor's notification channel.
type Notifier interface {
	Notice(severity Severity, message string, opts NoticeOptions)
	Remove(id string)
}

// Announcer is the accessibility announcement channel; messages shown
// visually are spoken through it as well.
type Announcer interface {
	Speak(message string)
}

// BlockInserter inserts an image block into the document being edited.
type BlockInserter interface {
	InsertImage(ctx context.Context, block domain.ImageBlock) error
}
