package security

import (
	"errors"
	"testing"
	"time"

	"github.com/nalgeon/be"
)

func TestNonces(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		n := NewNonces("test-secret", time.Hour)
		token, err := n.Issue("alice", ActionUpload)
		be.Err(t, err, nil)
		be.Err(t, n.Verify(token, ActionUpload), nil)
	})

	t.Run("wrong_action", func(t *testing.T) {
		n := NewNonces("test-secret", time.Hour)
		token, err := n.Issue("alice", ActionUpload)
		be.Err(t, err, nil)

		err = n.Verify(token, "pasteimg_delete")
		be.True(t, errors.Is(err, ErrNonceInvalid))
	})

	t.Run("wrong_secret", func(t *testing.T) {
		issuer := NewNonces("secret-one", time.Hour)
		verifier := NewNonces("secret-two", time.Hour)

		token, err := issuer.Issue("alice", ActionUpload)
		be.Err(t, err, nil)

		err = verifier.Verify(token, ActionUpload)
		be.True(t, errors.Is(err, ErrNonceInvalid))
	})

	t.Run("garbage_token", func(t *testing.T) {
		n := NewNonces("test-secret", time.Hour)
		err := n.Verify("not.a.token", ActionUpload)
		be.True(t, errors.Is(err, ErrNonceInvalid))
	})

	t.Run("expired", func(t *testing.T) {
		n := NewNonces("test-secret", time.Hour)
		issued := time.Unix(1000, 0)
		n.now = func() time.Time { return issued }

		token, err := n.Issue("alice", ActionUpload)
		be.Err(t, err, nil)

		n.now = func() time.Time { return issued.Add(2 * time.Hour) }
		err = n.Verify(token, ActionUpload)
		be.True(t, errors.Is(err, ErrNonceInvalid))
	})
}
