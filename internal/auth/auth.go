// Package auth signs requests to the pricing oracle and settlement gateway
// using RSA-PSS signatures.
//
// Signed message: timestamp_ms + METHOD + path + hex(sha256(body)).
package auth

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/hex"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Request headers set by Sign.
const (
	HeaderKey       = "X-Pulse-Key"
	HeaderTimestamp = "X-Pulse-Timestamp"
	HeaderSignature = "X-Pulse-Signature"
)

// ErrBadSignature is returned by Verify when a request does not check out.
var ErrBadSignature = errors.New("invalid request signature")

// Credentials holds the key ID and private key for signing requests.
type Credentials struct {
	KeyID      string
	PrivateKey *rsa.PrivateKey

	now func() time.Time
}

// LoadCredentials loads credentials from key ID and private key file path.
func LoadCredentials(keyID, privateKeyPath string) (*Credentials, error) {
	if keyID == "" {
		return nil, errors.New("key ID is required")
	}
	if privateKeyPath == "" {
		return nil, errors.New("private key path is required")
	}

	privateKey, err := LoadPrivateKey(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("load private key: %w", err)
	}

	return &Credentials{KeyID: keyID, PrivateKey: privateKey}, nil
}

// LoadPrivateKey loads an RSA private key from a PEM file (PKCS#8 or PKCS#1).
func LoadPrivateKey(path string) (*rsa.PrivateKey, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	block, _ := pem.Decode(data)
	if block == nil {
		return nil, errors.New("failed to decode PEM block")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		rsaKey, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, errors.New("key is not an RSA private key")
		}
		return rsaKey, nil
	}

	rsaKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}
	return rsaKey, nil
}

// Sign attaches signature headers to req. The body, if any, is read and restored.
func (c *Credentials) Sign(req *http.Request) error {
	body, err := readBody(req)
	if err != nil {
		return err
	}

	now := time.Now
	if c.now != nil {
		now = c.now
	}
	ts := now().UnixMilli()

	sig, err := c.signature(ts, req.Method, req.URL.Path, body)
	if err != nil {
		return err
	}

	req.Header.Set(HeaderKey, c.KeyID)
	req.Header.Set(HeaderTimestamp, strconv.FormatInt(ts, 10))
	req.Header.Set(HeaderSignature, sig)
	return nil
}

// signature creates a base64 RSA-PSS signature over the canonical message.
func (c *Credentials) signature(timestampMs int64, method, path string, body []byte) (string, error) {
	hashed := sha256.Sum256([]byte(message(timestampMs, method, path, body)))

	sig, err := rsa.SignPSS(
		rand.Reader,
		c.PrivateKey,
		crypto.SHA256,
		hashed[:],
		&rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash},
	)
	if err != nil {
		return "", fmt.Errorf("sign message: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// Verify checks the signature headers of req against pub.
func Verify(req *http.Request, pub *rsa.PublicKey) error {
	ts, err := strconv.ParseInt(req.Header.Get(HeaderTimestamp), 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrBadSignature)
	}
	sig, err := base64.StdEncoding.DecodeString(req.Header.Get(HeaderSignature))
	if err != nil {
		return fmt.Errorf("%w: bad encoding", ErrBadSignature)
	}
	body, err := readBody(req)
	if err != nil {
		return err
	}

	hashed := sha256.Sum256([]byte(message(ts, req.Method, req.URL.Path, body)))
	if err := rsa.VerifyPSS(pub, crypto.SHA256, hashed[:], sig, &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash}); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSignature, err)
	}
	return nil
}

func message(timestampMs int64, method, path string, body []byte) string {
	bodyHash := sha256.Sum256(body)
	return strconv.FormatInt(timestampMs, 10) + method + path + hex.EncodeToString(bodyHash[:])
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}
