package validate

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ronsuru/taskquer/pkg/objectstore"
)

const maxProofLength = 4096

var (
	ErrProofType   = errors.New("unknown proof type")
	ErrProofEmpty  = errors.New("proof is empty")
	ErrProofLong   = errors.New("proof is too long")
	ErrProofLink   = errors.New("proof link must be an absolute http(s) url")
	ErrProofObject = errors.New("proof image must reference an uploaded object")
)

// Proof checks that data is well formed for its proof type: image is an object path,
// link is an absolute http(s) URL, text is any non-blank string.
func Proof(proofType, data string) error {
	data = strings.TrimSpace(data)
	if data == "" {
		return ErrProofEmpty
	}
	if utf8.RuneCountInString(data) > maxProofLength {
		return ErrProofLong
	}

	switch proofType {
	case "image":
		id, ok := strings.CutPrefix(data, objectstore.PathPrefix)
		if !ok {
			return ErrProofObject
		}
		if _, err := uuid.Parse(id); err != nil {
			return ErrProofObject
		}
	case "link":
		u, err := url.Parse(data)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return ErrProofLink
		}
	case "text":
	default:
		return ErrProofType
	}
	return nil
}

// URL reports whether s is an absolute http(s) URL.
func URL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
