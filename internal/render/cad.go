package render

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// CADClient renders CAD model files into preview image bundles. A failed
// render is a per-file degradation: the file simply contributes no previews.
type CADClient struct {
	endpoint    string
	httpClient  *http.Client
	log         *slog.Logger
	maxParallel int
}

func NewCADClient(endpoint string, timeout time.Duration, maxParallel int, logger *slog.Logger) *CADClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if maxParallel <= 0 {
		maxParallel = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &CADClient{
		endpoint:    endpoint,
		httpClient:  &http.Client{Timeout: timeout},
		log:         logger,
		maxParallel: maxParallel,
	}
}

// ModelFile is one uploaded CAD file to render.
type ModelFile struct {
	Name string // original filename, keys the resulting previews
	Path string // on-disk location inside the session dir
}

// RenderAll renders every model in parallel and merges the preview images
// into one filename-keyed map. Aggregation is order-independent; the
// reconciler sorts filenames itself. Per-file failures are logged and
// swallowed.
func (c *CADClient) RenderAll(ctx context.Context, files []ModelFile) map[string][]byte {
	images := make(map[string][]byte)
	if len(files) == 0 {
		return images
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.maxParallel)

	for _, mf := range files {
		mf := mf
		g.Go(func() error {
			data, err := os.ReadFile(mf.Path)
			if err != nil {
				c.log.Warn("render.cad.read_failed", "file", mf.Name, "error", err)
				return nil
			}
			previews, err := postForZip(gctx, c.httpClient, c.endpoint, mf.Name, data, c.log)
			if err != nil {
				c.log.Warn("render.cad.failed", "file", mf.Name, "error", err)
				return nil
			}
			mu.Lock()
			for name, img := range previews {
				images[name] = img
			}
			mu.Unlock()
			c.log.Info("render.cad.ok", "file", mf.Name, "previews", len(previews))
			return nil
		})
	}
	// goroutines never return errors; per-file failure degrades gracefully
	_ = g.Wait()
	return images
}
