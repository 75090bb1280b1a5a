// Package secretstore provides secure credential storage using the host's
// keyring. It supports the platform credential service as the primary
// backend with an encrypted file fallback for environments where no
// system keyring is reachable (spec §4.A Secret Store).
package secretstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
	"golang.org/x/crypto/pbkdf2"
)

const (
	// ServiceName is the service identifier registered with the system keyring.
	ServiceName = "comunicado-core"

	// keyPrefix namespaces every key this application writes.
	keyPrefix = "comunicado"

	// pbkdf2Iterations is the iteration count for the file-fallback KDF.
	pbkdf2Iterations = 100000

	// saltSize is the random salt size in bytes.
	saltSize = 32
)

// ErrKeyNotFound is returned when a requested key does not exist. Store
// implementations must return this exact sentinel rather than silently
// returning an empty value, per spec §4.A ("reads that find no entry
// return absent, not an error" — callers translate this sentinel into an
// absent value one layer up).
var ErrKeyNotFound = errors.New("secretstore: key not found")

// Store binds (service, key) pairs to secret byte strings. "service" is a
// namespacing string such as "comunicado-access-token"; "key" is typically
// an account_id.
type Store interface {
	// Put writes a secret. A failed write must never appear to succeed.
	Put(service, key string, secret []byte) error

	// Get reads a secret. Returns ErrKeyNotFound if absent.
	Get(service, key string) ([]byte, error)

	// Delete removes a secret. Idempotent: deleting an absent key is not
	// an error.
	Delete(service, key string) error

	// List returns all keys stored under the given service.
	List(service string) ([]string, error)
}

// KeyringStore implements Store on top of the host OS keyring.
type KeyringStore struct {
	ring keyring.Keyring
}

// FileStore implements Store using AES-GCM encrypted files, used when the
// OS keyring backend cannot be opened.
type FileStore struct {
	baseDir string
}

// New creates a Store using the best backend available for the current
// platform, falling back to encrypted file storage under the config
// directory's secrets/ subdirectory.
func New() (Store, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("secretstore: resolve config dir: %w", err)
	}

	ring, err := openKeyring(configDir)
	if err != nil {
		return NewFileStore(configDir)
	}
	return &KeyringStore{ring: ring}, nil
}

// NewFileStore creates a file-backed Store rooted at baseDir.
func NewFileStore(baseDir string) (*FileStore, error) {
	secretsDir := filepath.Join(baseDir, "secrets")
	if err := os.MkdirAll(secretsDir, 0700); err != nil {
		return nil, fmt.Errorf("secretstore: create secrets dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func openKeyring(configDir string) (keyring.Keyring, error) {
	var backends []keyring.BackendType

	switch runtime.GOOS {
	case "darwin":
		backends = append(backends, keyring.KeychainBackend)
	case "linux":
		backends = append(backends, keyring.SecretServiceBackend)
	case "windows":
		backends = append(backends, keyring.WinCredBackend)
	}
	backends = append(backends, keyring.FileBackend)

	machinePassword := deriveMachinePassword()

	cfg := keyring.Config{
		ServiceName:                    ServiceName,
		AllowedBackends:                backends,
		FileDir:                        filepath.Join(configDir, "keyring"),
		FilePasswordFunc:               keyring.FixedStringPrompt(machinePassword),
		KeychainTrustApplication:       true,
		KeychainSynchronizable:         false,
		KeychainAccessibleWhenUnlocked: true,
	}

	return keyring.Open(cfg)
}

// deriveMachinePassword combines hostname and user identity so a stolen
// keyring file is hard to decrypt on another machine.
func deriveMachinePassword() string {
	var components []string

	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		components = append(components, hostname)
	}
	if currentUser, err := user.Current(); err == nil {
		if currentUser.Username != "" {
			components = append(components, currentUser.Username)
		}
		if currentUser.Uid != "" {
			components = append(components, currentUser.Uid)
		}
		if currentUser.HomeDir != "" {
			components = append(components, currentUser.HomeDir)
		}
	}
	components = append([]string{"comunicado-core-keyring"}, components...)

	combined := strings.Join(components, ":")
	hash := sha256.Sum256([]byte(combined))
	return fmt.Sprintf("%x", hash)
}

func getConfigDir() (string, error) {
	if envDir := os.Getenv("COMUNICADO_CONFIG_DIR"); envDir != "" {
		return envDir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "comunicado"), nil
}

func formatKey(service, key string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, service, key)
}

func parseKey(fullKey string) (service, key string, ok bool) {
	parts := strings.SplitN(fullKey, ":", 3)
	if len(parts) != 3 || parts[0] != keyPrefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// Put writes a secret to the system keyring.
func (s *KeyringStore) Put(service, key string, secret []byte) error {
	item := keyring.Item{
		Key:  formatKey(service, key),
		Data: secret,
	}
	return s.ring.Set(item)
}

// Get reads a secret from the system keyring.
func (s *KeyringStore) Get(service, key string) ([]byte, error) {
	item, err := s.ring.Get(formatKey(service, key))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil, ErrKeyNotFound
		}
		return nil, err
	}
	return item.Data, nil
}

// Delete removes a secret from the system keyring.
func (s *KeyringStore) Delete(service, key string) error {
	err := s.ring.Remove(formatKey(service, key))
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// List returns all keys stored under the given service.
func (s *KeyringStore) List(service string) ([]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}

	prefix := formatKey(service, "")
	var result []string
	for _, k := range keys {
		if strings.HasPrefix(k, prefix) {
			if _, name, ok := parseKey(k); ok {
				result = append(result, name)
			}
		}
	}
	return result, nil
}

// secretData is the plaintext structure encrypted within a file-store blob.
type secretData struct {
	Secrets map[string][]byte `json:"secrets"`
}

// encryptedFile is the on-disk structure: salt plus AES-GCM ciphertext.
type encryptedFile struct {
	Salt       []byte `json:"salt"`
	Ciphertext []byte `json:"ciphertext"`
}

// Put writes a secret into an encrypted file.
func (s *FileStore) Put(service, key string, secret []byte) error {
	data, err := s.loadSecretData(service)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("secretstore: load secret data: %w", err)
	}
	if data == nil {
		data = &secretData{Secrets: make(map[string][]byte)}
	}
	data.Secrets[key] = secret
	return s.saveSecretData(service, data)
}

// Get reads a secret from an encrypted file.
func (s *FileStore) Get(service, key string) ([]byte, error) {
	data, err := s.loadSecretData(service)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrKeyNotFound
		}
		return nil, fmt.Errorf("secretstore: load secret data: %w", err)
	}
	value, ok := data.Secrets[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return value, nil
}

// Delete removes a secret from an encrypted file.
func (s *FileStore) Delete(service, key string) error {
	data, err := s.loadSecretData(service)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("secretstore: load secret data: %w", err)
	}
	delete(data.Secrets, key)
	if len(data.Secrets) == 0 {
		return os.Remove(s.secretFilePath(service))
	}
	return s.saveSecretData(service, data)
}

// List returns all keys stored under the given service.
func (s *FileStore) List(service string) ([]string, error) {
	data, err := s.loadSecretData(service)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("secretstore: load secret data: %w", err)
	}
	keys := make([]string, 0, len(data.Secrets))
	for k := range data.Secrets {
		keys = append(keys, k)
	}
	return keys, nil
}

func (s *FileStore) secretFilePath(service string) string {
	return filepath.Join(s.baseDir, "secrets", service+".enc")
}

func (s *FileStore) loadSecretData(service string) (*secretData, error) {
	filePath := s.secretFilePath(service)
	fileData, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var encFile encryptedFile
	if err := json.Unmarshal(fileData, &encFile); err != nil {
		return nil, fmt.Errorf("secretstore: corrupt secret file: %w", err)
	}
	if len(encFile.Salt) != saltSize {
		return nil, errors.New("secretstore: invalid salt in encrypted file")
	}

	key := s.deriveKey(service, encFile.Salt)
	plaintext, err := decrypt(encFile.Ciphertext, key)
	if err != nil {
		return nil, fmt.Errorf("secretstore: decrypt secret data: %w", err)
	}

	var data secretData
	if err := json.Unmarshal(plaintext, &data); err != nil {
		return nil, fmt.Errorf("secretstore: unmarshal secret data: %w", err)
	}
	return &data, nil
}

func (s *FileStore) saveSecretData(service string, data *secretData) error {
	plaintext, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("secretstore: marshal secret data: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("secretstore: generate salt: %w", err)
	}

	key := s.deriveKey(service, salt)
	ciphertext, err := encrypt(plaintext, key)
	if err != nil {
		return fmt.Errorf("secretstore: encrypt secret data: %w", err)
	}

	encFile := encryptedFile{Salt: salt, Ciphertext: ciphertext}
	fileData, err := json.Marshal(encFile)
	if err != nil {
		return fmt.Errorf("secretstore: marshal encrypted file: %w", err)
	}

	return os.WriteFile(s.secretFilePath(service), fileData, 0600)
}

// deriveKey derives an AES-256 key via PBKDF2-HMAC-SHA256, salted and bound
// to machine identity so a copied file cannot be decrypted elsewhere.
func (s *FileStore) deriveKey(service string, salt []byte) []byte {
	machineInfo := getMachineInfo()
	input := fmt.Sprintf("comunicado-core-file-store:%s:%s", service, machineInfo)
	return pbkdf2.Key([]byte(input), salt, pbkdf2Iterations, 32, sha256.New)
}

func getMachineInfo() string {
	var components []string
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		components = append(components, hostname)
	}
	if currentUser, err := user.Current(); err == nil {
		if currentUser.Username != "" {
			components = append(components, currentUser.Username)
		}
		if currentUser.Uid != "" {
			components = append(components, currentUser.Uid)
		}
	}
	return strings.Join(components, ":")
}

func encrypt(plaintext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decrypt(ciphertext, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("secretstore: ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}
