// Package testsupport builds on-disk fixtures shared by package tests:
// metadata databases, encrypted payloads, and nested jwpub containers.
package testsupport

import (
	"archive/zip"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"database/sql"
	"os"
	"testing"

	"github.com/klauspost/compress/zlib"
	_ "modernc.org/sqlite"

	"github.com/neri-gut/jwparse/internal/keys"
	"github.com/neri-gut/jwparse/internal/metastore"
)

// WriteMetadataDB creates a publication metadata database at path with
// the given identity row and document rows, all under one class.
func WriteMetadataDB(t *testing.T, path string, pub metastore.Publication, class int, docs []metastore.DocumentRow) {
	t.Helper()

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open fixture db: %v", err)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE Publication (
			MepsLanguageIndex INTEGER NOT NULL,
			Symbol TEXT NOT NULL,
			Year INTEGER NOT NULL,
			IssueTagNumber TEXT NOT NULL
		)`,
		`CREATE TABLE Document (
			MepsDocumentId INTEGER NOT NULL,
			Title TEXT NOT NULL,
			Content BLOB,
			Class INTEGER NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("create fixture schema: %v", err)
		}
	}

	if pub.Symbol != "" {
		_, err = db.Exec(
			`INSERT INTO Publication (MepsLanguageIndex, Symbol, Year, IssueTagNumber) VALUES (?, ?, ?, ?)`,
			pub.MepsLanguageIndex, pub.Symbol, pub.Year, pub.IssueTagNumber,
		)
		if err != nil {
			t.Fatalf("insert fixture publication: %v", err)
		}
	}

	for _, d := range docs {
		_, err = db.Exec(
			`INSERT INTO Document (MepsDocumentId, Title, Content, Class) VALUES (?, ?, ?, ?)`,
			d.MepsDocumentID, d.Title, d.Content, class,
		)
		if err != nil {
			t.Fatalf("insert fixture document: %v", err)
		}
	}
}

// EncodePayload applies the forward document transform: zlib deflate,
// PKCS#7 pad, AES-128-CBC encrypt with the given material.
func EncodePayload(t *testing.T, plaintext string, m keys.Material) []byte {
	t.Helper()

	var compressed bytes.Buffer
	zw := zlib.NewWriter(&compressed)
	if _, err := zw.Write([]byte(plaintext)); err != nil {
		t.Fatalf("deflate payload: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close deflate: %v", err)
	}

	data := compressed.Bytes()
	pad := aes.BlockSize - len(data)%aes.BlockSize
	for range pad {
		data = append(data, byte(pad))
	}

	block, err := aes.NewCipher(m.Key[:])
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	out := make([]byte, len(data))
	cipher.NewCBCEncrypter(block, m.IV[:]).CryptBlocks(out, data)
	return out
}

// ZipEntry is one named file in a fixture archive.
type ZipEntry struct {
	Name string
	Data []byte
}

// BuildZip assembles an in-memory ZIP from entries.
func BuildZip(t *testing.T, entries []ZipEntry) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write zip entry %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// BuildJWPub writes a complete nested container to path: an outer ZIP
// whose "contents" entry is an inner ZIP holding the metadata database
// and any extra entries.
func BuildJWPub(t *testing.T, path string, dbBytes []byte, extra []ZipEntry) {
	t.Helper()

	inner := append([]ZipEntry{{Name: "pub.db", Data: dbBytes}}, extra...)
	outer := BuildZip(t, []ZipEntry{{Name: "contents", Data: BuildZip(t, inner)}})
	if err := os.WriteFile(path, outer, 0o644); err != nil {
		t.Fatalf("write jwpub fixture: %v", err)
	}
}
