package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/procura/internal/volume"
)

var ErrNoFile = errors.New("volume has no attached file")

// Service writes documents to disk and downloads volume files.
type Service struct {
	baseURL  *url.URL
	client   *http.Client
	apiToken string
	logger   *slog.Logger
}

// NewService creates a Service. Relative file URLs are resolved against
// baseURL and requested with the API token.
func NewService(baseURL, apiToken string, logger *slog.Logger) (*Service, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		baseURL:  u,
		client:   &http.Client{Timeout: 5 * time.Minute},
		apiToken: apiToken,
		logger:   logger,
	}, nil
}

// SaveWorkbook writes doc as an .xlsx file into outputDir and returns its path.
func (s *Service) SaveWorkbook(doc Document, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(outputDir, sanitize(doc.Kind+"_"+doc.Number)+".xlsx")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	if err := WriteXLSX(f, doc); err != nil {
		return "", err
	}

	s.logger.Info("document exported", "kind", doc.Kind, "number", doc.Number, "lines", len(doc.Rows), "path", path)

	return path, nil
}

// DownloadVolume saves the file attached to v into outputDir.
func (s *Service) DownloadVolume(ctx context.Context, v *volume.Volume, outputDir string) (string, error) {
	if v.FileURL == "" {
		return "", fmt.Errorf("volume %s: %w", v.Code, ErrNoFile)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	ref, err := url.Parse(v.FileURL)
	if err != nil {
		return "", fmt.Errorf("parsing file url: %w", err)
	}

	target := s.baseURL.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	// Presigned storage URLs on another host must not receive the token.
	if s.apiToken != "" && target.Host == s.baseURL.Host {
		req.Header.Set("Authorization", "Bearer "+s.apiToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d for url %s", resp.StatusCode, target.Redacted())
	}

	path := filepath.Join(outputDir, s.determineFilename(resp, v))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, resp.Body)
	if err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	s.logger.Info("volume downloaded", "code", v.Code, "bytes", n, "path", path)

	return path, nil
}

func (s *Service) determineFilename(resp *http.Response, v *volume.Volume) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if filename, ok := params["filename"]; ok && filename != "" {
				return strings.ReplaceAll(filepath.Base(filename), " ", "_")
			}
		}
	}

	if v.FileName != "" {
		return strings.ReplaceAll(filepath.Base(v.FileName), " ", "_")
	}

	ext := ".pdf"

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		if exts, _ := mime.ExtensionsByType(ct); len(exts) > 0 {
			ext = exts[0]
		}
	}

	// Format: CODE_revN.ext
	return fmt.Sprintf("%s_rev%d%s", sanitize(v.Code), v.Version, ext)
}

// sanitize keeps letters (Cyrillic included), digits, '-' and '_'.
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'А' && r <= 'я', r == 'Ё', r == 'ё':
			return r
		}

		return '_'
	}, s)
}
