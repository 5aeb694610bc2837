package discovery

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// DefaultBaseURL is the publication media lookup endpoint.
const DefaultBaseURL = "https://b.jw-cdn.org/apis/pub-media"

// ErrNotAvailable indicates no downloadable archive exists for the
// requested publication, language, and issue.
var ErrNotAvailable = errors.New("discovery: publication not available")

// Client resolves publications to downloadable archive URLs.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiResponse struct {
	Files map[string]languageFiles `json:"files"`
}

type languageFiles struct {
	JWPub []publicationFile `json:"JWPUB"`
}

type publicationFile struct {
	File fileInfo `json:"file"`
}

type fileInfo struct {
	URL string `json:"url"`
}

// FindURL resolves a publication symbol, language code and issue code
// to a single archive download URL.
func (c *Client) FindURL(ctx context.Context, pub, lang, issue string) (string, error) {
	q := url.Values{}
	q.Set("langwritten", lang)
	q.Set("pub", pub)
	q.Set("issue", issue)
	q.Set("output", "json")
	q.Set("fileformat", "JWPUB")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/GETPUBMEDIALINKS?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("lookup publication: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("lookup publication %s: status %d: %s", pub, resp.StatusCode, string(body))
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode lookup response: %w", err)
	}

	langFiles, ok := parsed.Files[lang]
	if !ok {
		return "", fmt.Errorf("%w: no files for language %s", ErrNotAvailable, lang)
	}
	if len(langFiles.JWPub) == 0 {
		return "", fmt.Errorf("%w: no jwpub entries for %s", ErrNotAvailable, pub)
	}
	u := langFiles.JWPub[0].File.URL
	if u == "" {
		return "", fmt.Errorf("%w: empty download url", ErrNotAvailable)
	}
	return u, nil
}

// Download streams the given URL to a local file.
func (c *Client) Download(ctx context.Context, srcURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srcURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download %s: status %d", srcURL, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", dest, err)
	}
	return out.Close()
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
