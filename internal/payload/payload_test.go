package payload

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"errors"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
)

var (
	testKey = []byte("0123456789abcdef")
	testIV  = []byte("fedcba9876543210")
)

// encode applies the forward transform: zlib deflate, PKCS#7 pad,
// AES-128-CBC encrypt. Mirrors how payloads are produced upstream.
func encode(t *testing.T, plaintext string, key, iv []byte) []byte {
	t.Helper()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(plaintext)); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close deflate: %v", err)
	}

	data := compressed.Bytes()
	pad := aes.BlockSize - len(data)%aes.BlockSize
	for range pad {
		data = append(data, byte(pad))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, data)
	return out
}

func TestDecode_RoundTrip(t *testing.T) {
	want := `<html><body><p>And the word was made known.</p></body></html>`
	enc := encode(t, want, testKey, testIV)

	got, err := Decode(enc, testKey, testIV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, want)
	}
}

func TestDecode_RoundTripLarge(t *testing.T) {
	want := strings.Repeat("paragraph of highly compressible markup. ", 2000)
	enc := encode(t, want, testKey, testIV)

	got, err := Decode(enc, testKey, testIV)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("round trip mismatch for large payload")
	}
}

func TestDecode_WrongKey(t *testing.T) {
	enc := encode(t, "<p>secret</p>", testKey, testIV)

	wrong := []byte("AAAAAAAAAAAAAAAA")
	got, err := Decode(enc, wrong, testIV)
	if err == nil {
		t.Fatalf("expected failure with wrong key, got %q", got)
	}
	// Wrong key material must surface as one of the two decode
	// failures, never as silently wrong plaintext.
	if !errors.Is(err, ErrDecrypt) && !errors.Is(err, ErrInflate) {
		t.Errorf("expected ErrDecrypt or ErrInflate, got %v", err)
	}
}

func TestDecode_EmptyPayload(t *testing.T) {
	if _, err := Decode(nil, testKey, testIV); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for empty payload, got %v", err)
	}
}

func TestDecode_UnalignedPayload(t *testing.T) {
	if _, err := Decode(make([]byte, 17), testKey, testIV); !errors.Is(err, ErrDecrypt) {
		t.Errorf("expected ErrDecrypt for unaligned payload, got %v", err)
	}
}

func TestDecode_CorruptedCiphertext(t *testing.T) {
	enc := encode(t, "<p>secret</p>", testKey, testIV)
	enc[len(enc)-1] ^= 0xff // damage the final block, which holds the padding

	got, err := Decode(enc, testKey, testIV)
	if err == nil {
		t.Fatalf("expected failure for corrupted ciphertext, got %q", got)
	}
	if !errors.Is(err, ErrDecrypt) && !errors.Is(err, ErrInflate) {
		t.Errorf("expected ErrDecrypt or ErrInflate, got %v", err)
	}
}

func TestDecode_ValidPaddingBadStream(t *testing.T) {
	// Properly padded and encrypted, but the plaintext is not zlib.
	data := []byte("this is not a zlib stream at all")
	pad := aes.BlockSize - len(data)%aes.BlockSize
	for range pad {
		data = append(data, byte(pad))
	}
	block, err := aes.NewCipher(testKey)
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	enc := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, testIV).CryptBlocks(enc, data)

	if _, err := Decode(enc, testKey, testIV); !errors.Is(err, ErrInflate) {
		t.Errorf("expected ErrInflate, got %v", err)
	}
}
