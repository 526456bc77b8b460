package fetcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/oshokin/thinkscript-sync/internal/domain/script"
	"github.com/oshokin/thinkscript-sync/internal/logger"
	"github.com/oshokin/thinkscript-sync/internal/settings"
	"github.com/oshokin/thinkscript-sync/internal/version"
)

const (
	// dirPermissions is used when creating the download directory.
	dirPermissions = 0o755
	// filePermissions is used for downloaded scripts.
	filePermissions = 0o644
)

var (
	// ErrBadHTTPStatus is returned when the server answers with anything but 200 OK.
	ErrBadHTTPStatus = errors.New("unexpected http status")
	// ErrNoFileName is returned when a URL has no final path segment to name the local file after.
	ErrNoFileName = errors.New("url has no file name")
)

// Fetcher downloads scripts into a local directory.
type Fetcher struct {
	dir    string
	client *http.Client
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) {
		if client != nil {
			f.client = client
		}
	}
}

// WithTimeout bounds each request. Zero keeps requests unbounded.
func WithTimeout(timeout time.Duration) Option {
	return func(f *Fetcher) {
		if timeout <= 0 {
			return
		}

		client := *f.client
		client.Timeout = timeout
		f.client = &client
	}
}

// New creates a Fetcher saving files under dir.
func New(dir string, opts ...Option) *Fetcher {
	f := &Fetcher{
		dir:    filepath.Clean(dir),
		client: http.DefaultClient,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch downloads every script of the name=url settings in order.
// The first failure stops the run.
func (f *Fetcher) Fetch(ctx context.Context, scripts *settings.Settings) (script.Downloads, error) {
	if err := os.MkdirAll(f.dir, dirPermissions); err != nil {
		return nil, fmt.Errorf("create download directory: %w", err)
	}

	downloads := make(script.Downloads, 0, scripts.Len())

	for _, name := range scripts.Keys() {
		scriptURL := scripts.Value(name)

		logger.Infof(ctx, "Downloading %s at %s...", name, scriptURL)

		localPath, err := f.download(ctx, scriptURL)
		if err != nil {
			return nil, fmt.Errorf("download %s: %w", name, err)
		}

		logger.DebugKV(ctx, "Downloaded script", "name", name, "path", localPath)

		downloads = append(downloads, script.Download{
			Name: name,
			URL:  scriptURL,
			Path: localPath,
		})
	}

	return downloads, nil
}

// download saves the URL content under the download directory, overwriting any existing file.
func (f *Fetcher) download(ctx context.Context, rawURL string) (string, error) {
	fileName, err := FileName(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return "", err
	}

	req.Header.Set("User-Agent", version.UserAgent())

	response, err := f.client.Do(req)
	if err != nil {
		return "", err
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s, %s: %w", rawURL, response.Status, ErrBadHTTPStatus)
	}

	outputFileName := filepath.Join(f.dir, fileName)

	outputFile, err := os.OpenFile(outputFileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, filePermissions)
	if err != nil {
		return "", err
	}

	if _, err = io.Copy(outputFile, response.Body); err != nil {
		_ = outputFile.Close()

		return "", err
	}

	if err = outputFile.Close(); err != nil {
		return "", err
	}

	return outputFileName, nil
}

// FileName returns the final path segment of the URL.
func FileName(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	name := path.Base(parsed.Path)
	if name == "." || name == "/" || name == ".." {
		return "", fmt.Errorf("%s: %w", rawURL, ErrNoFileName)
	}

	return name, nil
}
