// Package storage stores uploaded resumes and company logos in an
// S3-compatible object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// ErrInvalidUpload is returned by Detect for files of the wrong type or size
var ErrInvalidUpload = errors.New("invalid upload")

// BlobStore stores objects and returns their public URL
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
	Delete(ctx context.Context, key string) error
}

// Kind is a category of upload with its own type and size rules
type Kind string

const (
	KindResume Kind = "resume"
	KindLogo   Kind = "logo"
)

// Size limits per kind
const (
	MaxResumeBytes = 5 << 20
	MaxLogoBytes   = 2 << 20
)

type rule struct {
	prefix   string
	maxBytes int
	allowed  []string
}

var rules = map[Kind]rule{
	KindResume: {
		prefix:   "resumes",
		maxBytes: MaxResumeBytes,
		allowed: []string{
			"application/pdf",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		},
	},
	KindLogo: {
		prefix:   "logos",
		maxBytes: MaxLogoBytes,
		allowed:  []string{"image/png", "image/jpeg", "image/webp"},
	},
}

// Upload is a validated file ready to store
type Upload struct {
	Kind        Kind
	ContentType string
	Extension   string
	Data        []byte
}

// Detect sniffs data and checks it against the rules for kind. The declared
// content type of the request is never trusted.
func Detect(kind Kind, data []byte) (*Upload, error) {
	r, ok := rules[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown upload kind %q", ErrInvalidUpload, kind)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: file is empty", ErrInvalidUpload)
	}
	if len(data) > r.maxBytes {
		return nil, fmt.Errorf("%w: %s exceeds %d MiB", ErrInvalidUpload, kind, r.maxBytes>>20)
	}

	mt := mimetype.Detect(data)
	for _, allowed := range r.allowed {
		if mt.Is(allowed) {
			return &Upload{
				Kind:        kind,
				ContentType: allowed,
				Extension:   mt.Extension(),
				Data:        data,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s files of type %s are not accepted", ErrInvalidUpload, kind, mt.String())
}

// MaxBytes returns the size limit for kind
func MaxBytes(kind Kind) int {
	return rules[kind].maxBytes
}

// Key returns a fresh object key for an upload owned by owner, e.g.
// resumes/<user_id>/<uuid>.pdf
func (u *Upload) Key(owner uuid.UUID) string {
	return fmt.Sprintf("%s/%s/%s%s", rules[u.Kind].prefix, owner, uuid.New(), u.Extension)
}

// PublicURL joins a public base URL and an object key
func PublicURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
