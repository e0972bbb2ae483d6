// Package objectstore keeps uploaded proof images on local disk behind signed, expiring upload URLs.
package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PathPrefix    = "/objects/uploads/"
	uploadTTL     = 15 * time.Minute
	MaxObjectSize = 10 << 20
	sniffLen      = 512
)

var (
	ErrNotFound     = errors.New("object not found")
	ErrInvalidToken = errors.New("invalid upload token")
	ErrTooLarge     = errors.New("object too large")
	ErrExists       = errors.New("object already uploaded")
)

type Store struct {
	dir     string
	baseURL string
	secret  []byte
	ttl     time.Duration
}

type Object struct {
	Path        string
	ContentType string
	Size        int64
	ModTime     time.Time
	file        *os.File
}

func (o *Object) Close() error {
	return o.file.Close()
}

func New(dir, baseURL, secret string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create object dir: %w", err)
	}
	return &Store{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  []byte(secret),
		ttl:     uploadTTL,
	}, nil
}

// UploadURL reserves a new object id and returns the URL the client PUTs the bytes to,
// together with the path to reference once uploaded.
func (s *Store) UploadURL(ownerID string) (uploadURL, objectPath string, err error) {
	id := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:   id,
		Audience:  ownerID,
		ExpiresAt: time.Now().Add(s.ttl).Unix(),
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	objectPath = PathPrefix + id
	return s.baseURL + objectPath + "?token=" + signed, objectPath, nil
}

func (s *Store) verify(id, token string) error {
	parsed, err := jwt.ParseWithClaims(token, &jwt.StandardClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*jwt.StandardClaims)
	if !ok || claims.Subject != id {
		return ErrInvalidToken
	}
	return nil
}

// Save stores the body for a previously issued upload URL. Each id can be written once.
func (s *Store) Save(_ context.Context, id, token string, body io.Reader) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	if err := s.verify(id, token); err != nil {
		return err
	}

	target := filepath.Join(s.dir, id)
	if _, err := os.Stat(target); err == nil {
		return ErrExists
	}

	tmp, err := os.CreateTemp(s.dir, id+".*.part")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, io.LimitReader(body, MaxObjectSize+1))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return err
	}
	if n > MaxObjectSize {
		return ErrTooLarge
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return err
	}
	zap.L().Info("object stored", zap.String("id", id), zap.Int64("size", n))
	return nil
}

// Open resolves an object path into a readable handle. The caller closes it.
func (s *Store) Open(objectPath string) (*Object, error) {
	id, ok := strings.CutPrefix(objectPath, PathPrefix)
	if !ok {
		return nil, ErrNotFound
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	f, err := os.Open(filepath.Join(s.dir, id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := f.Read(head)
	if err != nil && !errors.Is(err, io.EOF) {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Object{
		Path:        objectPath,
		ContentType: http.DetectContentType(head[:n]),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		file:        f,
	}, nil
}

// Download streams the object to w and closes it.
func (s *Store) Download(obj *Object, w http.ResponseWriter, r *http.Request) {
	defer obj.Close()
	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeContent(w, r, "", obj.ModTime, obj.file)
}

// Exists reports whether objectPath names an uploaded object.
func (s *Store) Exists(objectPath string) bool {
	obj, err := s.Open(objectPath)
	if err != nil {
		return false
	}
	_ = obj.Close()
	return true
}
