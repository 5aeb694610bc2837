package payload

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/zlib"
)

var (
	// ErrDecrypt indicates the ciphertext could not be decrypted:
	// wrong key material, truncated data, or inconsistent padding.
	// There is no authentication tag, so padding validation is the
	// pipeline's primary integrity check.
	ErrDecrypt = errors.New("payload: decryption failed")

	// ErrInflate indicates the decrypted bytes were not a valid zlib
	// stream, or inflated to invalid UTF-8.
	ErrInflate = errors.New("payload: inflate failed")
)

// Decode reverses the encoding applied to a document payload:
// AES-128-CBC with PKCS#7 padding, then zlib compression. Zero-length
// payloads are invalid here; callers skip intentionally empty
// documents before decoding.
func Decode(payload []byte, key, iv []byte) (string, error) {
	plain, err := decrypt(payload, key, iv)
	if err != nil {
		return "", err
	}
	return inflate(plain)
}

func decrypt(payload, key, iv []byte) ([]byte, error) {
	if len(payload) == 0 || len(payload)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("%w: ciphertext length %d not a positive multiple of %d", ErrDecrypt, len(payload), aes.BlockSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}

	buf := make([]byte, len(payload))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(buf, payload)

	return stripPKCS7(buf)
}

// stripPKCS7 validates and removes PKCS#7 padding. Every padding byte
// must equal the pad length, which must be in [1, blockSize].
func stripPKCS7(buf []byte) ([]byte, error) {
	pad := int(buf[len(buf)-1])
	if pad < 1 || pad > aes.BlockSize {
		return nil, fmt.Errorf("%w: invalid padding length %d", ErrDecrypt, pad)
	}
	for _, b := range buf[len(buf)-pad:] {
		if int(b) != pad {
			return nil, fmt.Errorf("%w: inconsistent padding", ErrDecrypt)
		}
	}
	return buf[:len(buf)-pad], nil
}

func inflate(data []byte) (string, error) {
	zr, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInflate, err)
	}
	defer zr.Close()

	out, err := io.ReadAll(zr)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInflate, err)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: inflated data is not valid UTF-8", ErrInflate)
	}
	return string(out), nil
}
