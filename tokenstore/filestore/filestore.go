// Package filestore keeps the session token in a file so the CLI stays logged
// in between invocations. With a passphrase the token is sealed with
// NaCl secretbox under an argon2id-derived key.
package filestore

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/materials-admin/tokenstore"
	"github.com/pkg/errors"
	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	sealedPrefix = "sealed:v1:"
	saltLen      = 16
	nonceLen     = 24
	keyLen       = 32
)

var (
	ErrPassphraseRequired = errors.New("token file is sealed, passphrase required")
	ErrCorrupt            = errors.New("token file is corrupt or passphrase is wrong")
)

var _ tokenstore.Store = (*Store)(nil)

type Store struct {
	path       string
	passphrase string
}

type Option func(*Store)

// WithPassphrase seals tokens written by Set and unseals them on Get.
func WithPassphrase(passphrase string) Option {
	return func(s *Store) {
		s.passphrase = passphrase
	}
}

func New(path string, options ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Path is the backing file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) Get(_ context.Context) (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", tokenstore.ErrNoToken
	}
	if err != nil {
		return "", errors.Wrap(err, "[filestore.Get] read token file")
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", tokenstore.ErrNoToken
	}
	if !strings.HasPrefix(content, sealedPrefix) {
		return content, nil
	}
	if s.passphrase == "" {
		return "", ErrPassphraseRequired
	}
	return s.unseal(strings.TrimPrefix(content, sealedPrefix))
}

func (s *Store) Set(_ context.Context, token string) error {
	content := token
	if s.passphrase != "" {
		sealed, err := s.seal(token)
		if err != nil {
			return err
		}
		content = sealedPrefix + sealed
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "[filestore.Set] create token directory")
	}

	tmp, err := os.CreateTemp(dir, ".token-*")
	if err != nil {
		return errors.Wrap(err, "[filestore.Set] create temp file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.Set] write token")
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(err, "[filestore.Set] chmod token file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "[filestore.Set] close token file")
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return errors.Wrap(err, "[filestore.Set] rename token file")
	}
	return nil
}

func (s *Store) Clear(_ context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "[filestore.Clear] remove token file")
	}
	return nil
}

func (s *Store) seal(token string) (string, error) {
	buf := make([]byte, saltLen+nonceLen)
	if _, err := io.ReadFull(rand.Reader, buf); err != nil {
		return "", errors.Wrap(err, "[filestore.seal] rand.Read")
	}
	salt := buf[:saltLen]
	var nonce [nonceLen]byte
	copy(nonce[:], buf[saltLen:])

	key := s.deriveKey(salt)
	out := secretbox.Seal(buf, []byte(token), &nonce, &key)
	return base64.RawURLEncoding.EncodeToString(out), nil
}

func (s *Store) unseal(encoded string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil || len(raw) < saltLen+nonceLen+secretbox.Overhead {
		return "", ErrCorrupt
	}
	salt := raw[:saltLen]
	var nonce [nonceLen]byte
	copy(nonce[:], raw[saltLen:saltLen+nonceLen])

	key := s.deriveKey(salt)
	plain, ok := secretbox.Open(nil, raw[saltLen+nonceLen:], &nonce, &key)
	if !ok {
		return "", ErrCorrupt
	}
	if len(plain) == 0 {
		return "", tokenstore.ErrNoToken
	}
	return string(plain), nil
}

func (s *Store) deriveKey(salt []byte) [keyLen]byte {
	var key [keyLen]byte
	copy(key[:], argon2.IDKey([]byte(s.passphrase), salt, 1, 64*1024, 4, keyLen))
	return key
}
