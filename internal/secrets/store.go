package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// per-user token store (file, 0600) with AES-GCM obfuscation, keyed by the
// Home Assistant URL. Not a replacement for an OS keychain.

const fileName = "tokens.json"

// ErrNotFound is returned when no token is stored for a URL.
var ErrNotFound = errors.New("token not found")

type secretFile struct {
	Tokens map[string]string `json:"tokens"` // url -> base64(ciphertext)
}

// Store is a token file in one directory.
type Store struct {
	dir string
}

// Open returns the store in dir. The directory is created on first write.
func Open(dir string) *Store { return &Store{dir: dir} }

// Default returns the store under the user config directory.
func Default() (*Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return nil, err
	}
	return Open(filepath.Join(dir, "webastocard")), nil
}

func (s *Store) path() string { return filepath.Join(s.dir, fileName) }

func (s *Store) StoreToken(baseURL, token string) error {
	key := norm(baseURL)
	if key == "" {
		return fmt.Errorf("url required")
	}
	if strings.TrimSpace(token) == "" {
		return fmt.Errorf("token required")
	}
	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return err
	}
	sf, err := load(s.path())
	if err != nil {
		return err
	}
	if sf.Tokens == nil {
		sf.Tokens = map[string]string{}
	}
	ct, err := encrypt([]byte(strings.TrimSpace(token)))
	if err != nil {
		return err
	}
	sf.Tokens[key] = base64.StdEncoding.EncodeToString(ct)
	return save(s.path(), sf)
}

func (s *Store) FetchToken(baseURL string) (string, error) {
	key := norm(baseURL)
	if key == "" {
		return "", fmt.Errorf("url required")
	}
	sf, err := load(s.path())
	if err != nil {
		return "", err
	}
	enc, ok := sf.Tokens[key]
	if !ok {
		return "", ErrNotFound
	}
	raw, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return "", err
	}
	pt, err := decrypt(raw)
	if err != nil {
		return "", fmt.Errorf("decrypt token: %w", err)
	}
	return string(pt), nil
}

func (s *Store) DeleteToken(baseURL string) error {
	key := norm(baseURL)
	if key == "" {
		return fmt.Errorf("url required")
	}
	sf, err := load(s.path())
	if err != nil {
		return err
	}
	if _, ok := sf.Tokens[key]; !ok {
		return ErrNotFound
	}
	delete(sf.Tokens, key)
	return save(s.path(), sf)
}

func load(path string) (secretFile, error) {
	var sf secretFile
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return secretFile{}, nil
		}
		return sf, err
	}
	if err := json.Unmarshal(data, &sf); err != nil {
		return sf, err
	}
	return sf, nil
}

func save(path string, sf secretFile) error {
	data, err := json.MarshalIndent(sf, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// norm lowercases and drops trailing slashes so http://ha:8123/ and
// http://HA:8123 share a token.
func norm(s string) string {
	return strings.TrimRight(strings.TrimSpace(strings.ToLower(s)), "/")
}

func masterKey() []byte {
	base := fmt.Sprintf("webastocard-%s-%s", runtime.GOOS, os.Getenv("USER"))
	hash := sha256.Sum256([]byte(base))
	return hash[:]
}

func newGCM() (cipher.AEAD, error) {
	block, err := aes.NewCipher(masterKey())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func encrypt(plain []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plain, nil), nil
}

func decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := newGCM()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, fmt.Errorf("ciphertext too short")
	}
	nonce := ciphertext[:gcm.NonceSize()]
	body := ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}
