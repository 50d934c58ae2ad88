// Package render wraps the two external rendering capabilities: the CAD
// preview renderer and the document rasterizer. Both speak the same simple
// HTTP shape: POST file bytes, receive a zip of images.
package render

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
)

var imageExts = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
}

// postForZip sends raw bytes to endpoint (filename passed as a query
// parameter) and unpacks the zip of images from the response, keyed by
// lower-cased entry base name.
func postForZip(ctx context.Context, client *http.Client, endpoint, filename string, data []byte, log *slog.Logger) (map[string][]byte, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("filename", filename)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	log.Info("render.request", "req_id", rid, "endpoint", endpoint, "filename", filename, "bytes", len(data))

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer func(b io.ReadCloser) {
		if err := b.Close(); err != nil {
			log.Warn("render.body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	log.Info("render.response",
		"req_id", rid, "status", resp.StatusCode, "bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("render status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	images := make(map[string][]byte)
	for _, entry := range zr.File {
		name := path.Base(entry.Name)
		if !imageExts[strings.ToLower(path.Ext(name))] {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("open archive entry %q: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read archive entry %q: %w", entry.Name, err)
		}
		images[strings.ToLower(name)] = data
	}
	return images, nil
}

// sortedKeys returns map keys in a stable order.
func sortedKeys(m map[string][]byte) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
