package openai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm"
)

// Complete implements llm.Completer over streamed chat/completions. The
// response is consumed chunk by chunk until stream completion and returned as
// one string. Single attempt; any failure is fatal for the request.
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	rid := common.RequestIDFromContext(ctx)
	start := time.Now()

	c.log.Info("llm.complete.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"prompt_len", len(req.Prompt),
		"has_image", len(req.ImageData) > 0,
	)

	var content any = req.Prompt
	if len(req.ImageData) > 0 {
		mt := req.ImageMIME
		if mt == "" {
			mt = "image/png"
		}
		dataURL := "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(req.ImageData)
		content = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]any{"url": dataURL}},
		}
	}

	body := map[string]any{
		"model":       c.cfg.Model,
		"temperature": c.cfg.Temperature,
		"stream":      true,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	bs, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bs))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error("llm.complete.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer func(b io.ReadCloser) {
		if err := b.Close(); err != nil {
			c.log.Warn("llm.complete.body_close_error", "req_id", rid, "error", err)
		}
	}(resp.Body)

	if resp.StatusCode/100 != 2 {
		raw, _ := io.ReadAll(resp.Body)
		c.log.Error("llm.complete.status_error",
			"req_id", rid, "status", resp.StatusCode,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", fmt.Errorf("completion status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	text, err := c.consumeStream(resp.Body)
	if err != nil {
		c.log.Error("llm.complete.stream_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", err
	}

	c.log.Info("llm.complete.ok",
		"req_id", rid,
		"response_len", len(text),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return text, nil
}

// consumeStream concatenates delta text from an SSE stream. No framing is
// assumed beyond "a sequence of text chunks terminated by stream completion":
// unknown event payloads are skipped, [DONE] or EOF ends the stream.
func (c *Client) consumeStream(r io.Reader) (string, error) {
	var b strings.Builder
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			if payload == "[DONE]" {
				break
			}
			continue
		}
		var chunk struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
		}
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if len(chunk.Choices) > 0 {
			b.WriteString(chunk.Choices[0].Delta.Content)
		}
	}
	if err := sc.Err(); err != nil {
		return "", fmt.Errorf("read stream: %w", err)
	}
	return b.String(), nil
}
