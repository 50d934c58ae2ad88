package render

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// RasterClient turns an office document into an ordered sequence of page
// images. Unlike CAD rendering, a rasterizer failure is fatal for the
// request.
type RasterClient struct {
	endpoint   string
	httpClient *http.Client
	log        *slog.Logger
}

func NewRasterClient(endpoint string, timeout time.Duration, logger *slog.Logger) *RasterClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RasterClient{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// Rasterize returns the document's page images ordered by page. Page order
// follows the archive entry names, which the rasterizer emits zero-padded.
func (c *RasterClient) Rasterize(ctx context.Context, documentPath string) ([][]byte, error) {
	data, err := os.ReadFile(documentPath)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	pages, err := postForZip(ctx, c.httpClient, c.endpoint, filepath.Base(documentPath), data, c.log)
	if err != nil {
		return nil, fmt.Errorf("rasterize %s: %w", filepath.Base(documentPath), err)
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("rasterize %s: no pages returned", filepath.Base(documentPath))
	}
	ordered := make([][]byte, 0, len(pages))
	for _, name := range sortedKeys(pages) {
		ordered = append(ordered, pages[name])
	}
	return ordered, nil
}
