package jwpub

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/neri-gut/jwparse/internal/extractor"
	"github.com/neri-gut/jwparse/internal/keys"
	"github.com/neri-gut/jwparse/internal/manifest"
	"github.com/neri-gut/jwparse/internal/metastore"
	"github.com/neri-gut/jwparse/internal/payload"
)

// Raster image extensions copied out of the inner container verbatim.
var assetExtensions = []string{".jpg", ".jpeg", ".png"}

// Parser unwraps a jwpub container and decodes its documents.
type Parser struct {
	engine  *keys.Engine
	log     *slog.Logger
	workers int
}

// NewParser returns a parser using the given key derivation engine.
// workers bounds the per-document decode pool; values below 1 mean
// sequential decoding.
func NewParser(engine *keys.Engine, log *slog.Logger, workers int) *Parser {
	if workers < 1 {
		workers = 1
	}
	return &Parser{engine: engine, log: log, workers: workers}
}

// Parse runs the full unwrapping pipeline: outer container, inner
// container, metadata store, key derivation, per-document decode and
// extraction, standalone asset copy-out, manifest assembly. Any step
// failure aborts the run; there is no partial manifest. The scratch
// database file is removed on every exit path.
func (p *Parser) Parse(ctx context.Context, jwpubPath, outputDir string) (*manifest.Manifest, error) {
	assetsDir := filepath.Join(outputDir, "assets")
	if err := os.MkdirAll(assetsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create assets dir: %w", err)
	}

	outer, err := zip.OpenReader(jwpubPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open outer container: %v", ErrArchive, err)
	}
	defer outer.Close()

	contents, err := readEntry(&outer.Reader, "contents")
	if err != nil {
		return nil, err
	}

	inner, err := zip.NewReader(bytes.NewReader(contents), int64(len(contents)))
	if err != nil {
		return nil, fmt.Errorf("%w: open inner container: %v", ErrArchive, err)
	}

	scratch, err := extractDatabase(inner, outputDir)
	if err != nil {
		return nil, err
	}
	defer os.Remove(scratch)

	store, err := metastore.Open(scratch)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	pub, err := store.Publication(ctx)
	if err != nil {
		return nil, err
	}

	identity := pub.IdentityString()
	material := p.engine.Derive(identity)
	class := classForSymbol(pub.Symbol)
	p.log.Info("publication identified",
		"identity", identity,
		"class", class,
	)

	rows, err := store.DocumentsByClass(ctx, class)
	if err != nil {
		return nil, err
	}

	documents, err := p.decodeDocuments(rows, material)
	if err != nil {
		return nil, err
	}
	p.log.Info("documents decoded", "count", len(documents))

	if err := extractAssets(inner, assetsDir); err != nil {
		return nil, err
	}

	return &manifest.Manifest{
		Publication: pub.Symbol,
		Year:        pub.Year,
		Issue:       pub.IssueTagNumber,
		Language:    strconv.Itoa(pub.MepsLanguageIndex),
		Title:       "Parsed Publication",
		ExtractedAt: time.Now().UTC().Format(time.RFC3339),
		Documents:   documents,
	}, nil
}

// readEntry reads the named entry of an archive fully into memory.
func readEntry(r *zip.Reader, name string) ([]byte, error) {
	for _, f := range r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("%w: open %s: %v", ErrArchive, name, err)
		}
		defer rc.Close()
		data, err := io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrArchive, name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMissingEntry, name)
}

// extractDatabase copies the single .db entry of the inner container
// to a scratch file and returns its path. SQLite needs file-backed
// random access, so the bytes cannot stay in memory.
func extractDatabase(inner *zip.Reader, outputDir string) (string, error) {
	for _, f := range inner.File {
		if !strings.HasSuffix(f.Name, ".db") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("%w: open %s: %v", ErrArchive, f.Name, err)
		}
		defer rc.Close()

		scratch, err := os.CreateTemp(outputDir, "jwparse-*.db")
		if err != nil {
			return "", fmt.Errorf("create scratch db: %w", err)
		}
		if _, err := io.Copy(scratch, rc); err != nil {
			scratch.Close()
			os.Remove(scratch.Name())
			return "", fmt.Errorf("write scratch db: %w", err)
		}
		if err := scratch.Close(); err != nil {
			os.Remove(scratch.Name())
			return "", fmt.Errorf("close scratch db: %w", err)
		}
		return scratch.Name(), nil
	}
	return "", fmt.Errorf("%w: metadata database", ErrMissingEntry)
}

// decodeDocuments decrypts, inflates and mines every non-empty
// document payload on a bounded worker pool, preserving query order.
// Documents share only the read-only key material, so decoding is
// coordination-free; a single failure fails the whole set.
func (p *Parser) decodeDocuments(rows []metastore.DocumentRow, material keys.Material) ([]manifest.Document, error) {
	// Intentionally absent document bodies are skipped, not errors.
	pending := rows[:0:0]
	for _, row := range rows {
		if len(row.Content) == 0 {
			p.log.Debug("skipping empty document", "id", row.MepsDocumentID)
			continue
		}
		pending = append(pending, row)
	}

	docs := make([]manifest.Document, len(pending))
	errs := make([]error, len(pending))

	workers := p.workers
	if workers > len(pending) {
		workers = len(pending)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				docs[i], errs[i] = decodeDocument(pending[i], material)
			}
		}()
	}
	for i := range pending {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("document %d (%s): %w", pending[i].MepsDocumentID, pending[i].Title, err)
		}
	}
	return docs, nil
}

func decodeDocument(row metastore.DocumentRow, material keys.Material) (manifest.Document, error) {
	markup, err := payload.Decode(row.Content, material.Key[:], material.IV[:])
	if err != nil {
		return manifest.Document{}, err
	}

	ex := extractor.Extract(markup)
	return manifest.Document{
		ID:         row.MepsDocumentID,
		Title:      row.Title,
		HTML:       ex.HTML,
		References: ex.References,
		Assets:     ex.Assets,
		Paragraphs: ex.Paragraphs,
	}, nil
}

// extractAssets copies every raster image entry of the inner container
// to the assets directory under its base name, overwriting existing
// files.
func extractAssets(inner *zip.Reader, assetsDir string) error {
	for _, f := range inner.File {
		if !isAssetName(f.Name) {
			continue
		}
		if err := copyEntry(f, filepath.Join(assetsDir, filepath.Base(f.Name))); err != nil {
			return err
		}
	}
	return nil
}

func isAssetName(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func copyEntry(f *zip.File, dest string) error {
	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", ErrArchive, f.Name, err)
	}
	defer rc.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create asset %s: %w", dest, err)
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return fmt.Errorf("write asset %s: %w", dest, err)
	}
	return out.Close()
}
