// Package paste owns the lifecycle of one clipboard paste event:
// intercept, validate, rate-limit, upload, insert, notify.
package paste

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pasteimg/pasteimg-go/internal/domain"
	"github.com/pasteimg/pasteimg-go/internal/editor"
	"github.com/pasteimg/pasteimg-go/internal/upload"
	"github.com/pasteimg/pasteimg-go/internal/validate"
)

// DefaultMinUploadInterval is the minimum gap between accepted paste
// events in one session.
const DefaultMinUploadInterval = 2000 * time.Millisecond

const (
	progressNoticeID = "upload-progress"
	errorNoticeID    = "upload-error"
)

// Outcome is the terminal state of one paste event.
type Outcome int

const (
	// OutcomeIgnored: no qualifying image file; the host editor's default
	// paste behavior proceeds untouched.
	OutcomeIgnored Outcome = iota
	OutcomeThrottled
	OutcomeRejected
	OutcomeInserted
	OutcomeFailed
)

// Event is one clipboard paste reaching the controller. The controller
// decides synchronously, before any upload work, whether the host's
// default paste handling is suppressed.
type Event struct {
	Files []domain.PastedFile

	suppressed bool
}

func (e *Event) SuppressDefault()        { e.suppressed = true }
func (e *Event) DefaultSuppressed() bool { return e.suppressed }

// Uploader resolves a validated file to its hosted URL. The direct and
// relay deployments are two implementations behind this one interface;
// the controller never forks on the variant.
type Uploader interface {
	Upload(ctx context.Context, file domain.PastedFile) (string, error)
}

// Options configures a Controller.
type Options struct {
	Config            domain.UploadConfig
	MinUploadInterval time.Duration // 0 means DefaultMinUploadInterval

	// SuppressOnThrottle controls whether default paste handling is also
	// suppressed when the interval gate rejects the event. The observed
	// deployments disagree on this, so it is policy, not hardcoded.
	SuppressOnThrottle bool

	Messages *Messages
	Now      func() time.Time
}

// Controller orchestrates validation, throttling, upload and host-editor
// calls for paste events. It is driven from a single event goroutine;
// overlapping uploads are prevented by the interval gate, not by a lock.
type Controller struct {
	cfg      domain.UploadConfig
	uploader Uploader
	blocks   editor.BlockInserter
	notices  editor.Notifier
	announce editor.Announcer

	minInterval        time.Duration
	suppressOnThrottle bool
	msgs               Messages
	now                func() time.Time

	lastAccepted time.Time
}

func NewController(uploader Uploader, blocks editor.BlockInserter, notices editor.Notifier, announce editor.Announcer, opts Options) *Controller {
	c := &Controller{
		cfg:                opts.Config,
		uploader:           uploader,
		blocks:             blocks,
		notices:            notices,
		announce:           announce,
		minInterval:        opts.MinUploadInterval,
		suppressOnThrottle: opts.SuppressOnThrottle,
		msgs:               DefaultMessages(),
		now:                opts.Now,
	}
	if c.minInterval <= 0 {
		c.minInterval = DefaultMinUploadInterval
	}
	if opts.Messages != nil {
		c.msgs = *opts.Messages
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// HandlePaste runs one paste event through the pipeline. Only the first
// file whose declared type is in the image category is considered; events
// with no such file are left to the host editor.
func (c *Controller) HandlePaste(ctx context.Context, ev *Event) Outcome {
	file, ok := firstImage(ev.Files)
	if !ok {
		return OutcomeIgnored
	}

	now := c.now()
	if !c.lastAccepted.IsZero() {
		if elapsed := now.Sub(c.lastAccepted); elapsed < c.minInterval {
			remaining := (c.minInterval - elapsed + time.Second - 1) / time.Second
			msg := fmt.Sprintf(c.msgs.WaitBeforeRetry, remaining)
			c.notices.Notice(editor.SeverityWarning, msg, editor.NoticeOptions{Dismissible: true})
			if c.suppressOnThrottle {
				ev.SuppressDefault()
			}
			return OutcomeThrottled
		}
	}
	// Mark the event accepted by the gate up front so a paste fired while
	// this upload is still in flight cannot start a second one.
	c.lastAccepted = now

	if res := validate.File(file, c.cfg); !res.OK {
		msg := c.rejectionMessage(res, file)
		c.notices.Notice(editor.SeverityError, msg, editor.NoticeOptions{Dismissible: true})
		c.announce.Speak(msg)
		ev.SuppressDefault()
		return OutcomeRejected
	}

	ev.SuppressDefault()
	c.notices.Notice(editor.SeverityInfo, c.msgs.Uploading, editor.NoticeOptions{ID: progressNoticeID})

	url, err := c.uploader.Upload(ctx, file)

	c.removeTransientNotices()

	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = c.msgs.UploadFailed
		}
		c.notices.Notice(editor.SeverityError, msg, editor.NoticeOptions{Dismissible: true, ID: errorNoticeID})
		c.announce.Speak(msg)
		c.lastAccepted = c.now()
		return OutcomeFailed
	}

	block := domain.ImageBlock{
		URL:     url,
		Alt:     file.Name,
		Caption: file.Name,
	}
	if block.Alt == "" {
		block.Alt = "image"
	}

	if err := c.blocks.InsertImage(ctx, block); err != nil {
		msg := err.Error()
		c.notices.Notice(editor.SeverityError, msg, editor.NoticeOptions{Dismissible: true, ID: errorNoticeID})
		c.announce.Speak(msg)
		c.lastAccepted = c.now()
		return OutcomeFailed
	}

	c.notices.Notice(editor.SeveritySuccess, c.msgs.UploadSuccess, editor.NoticeOptions{Dismissible: true})
	c.announce.Speak(c.msgs.UploadSuccess)
	c.lastAccepted = c.now()
	return OutcomeInserted
}

func (c *Controller) rejectionMessage(res validate.Result, file domain.PastedFile) string {
	switch res.Reason {
	case domain.ReasonTooLarge:
		return fmt.Sprintf(c.msgs.TooLarge,
			float64(file.Size())/1024/1024, float64(c.cfg.MaxBytes)/1024/1024)
	default:
		return c.msgs.UnsupportedType
	}
}

// removeTransientNotices clears the progress notice and every retry notice
// once a terminal outcome is reached.
func (c *Controller) removeTransientNotices() {
	c.notices.Remove(progressNoticeID)
	for i := 0; i < upload.MaxRetries-1; i++ {
		c.notices.Remove(upload.RetryNoticeID(i))
	}
}

func firstImage(files []domain.PastedFile) (domain.PastedFile, bool) {
	for _, f := range files {
		if strings.HasPrefix(f.ContentType, "image/") {
			return f, true
		}
	}
	return domain.PastedFile{}, false
}
