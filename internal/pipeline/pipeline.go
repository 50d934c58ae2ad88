// Package pipeline coordinates one estimation request: normalize the
// uploaded sheet, prompt the model, repair-parse its output, reconcile part
// images and emit both workbook artifacts. Steps run strictly sequentially;
// a failure at any stage aborts the whole request with no retries.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
	"github.com/SpaceshipxDev/creationfromzeus/internal/emit"
	"github.com/SpaceshipxDev/creationfromzeus/internal/extract"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm"
	"github.com/SpaceshipxDev/creationfromzeus/internal/reconcile"
	"github.com/SpaceshipxDev/creationfromzeus/internal/render"
	"github.com/SpaceshipxDev/creationfromzeus/internal/session"
	"github.com/SpaceshipxDev/creationfromzeus/internal/workbook"
)

// Input representations the model can be given.
const (
	ModeTranscript = "transcript"
	ModePage       = "page"
)

const (
	orderArtifact     = "production_order.xlsx"
	quotationArtifact = "quotation.xlsx"
)

// Pipeline wires the stages together. Raster may be nil unless running in
// page mode; CAD may be nil when no renderer endpoint is configured.
type Pipeline struct {
	Logger    *slog.Logger
	Defaults  llm.Defaults
	InputMode string
	Completer llm.Completer
	Raster    *render.RasterClient
	CAD       *render.CADClient
}

func New(logger *slog.Logger, defaults llm.Defaults, mode string, completer llm.Completer, raster *render.RasterClient, cad *render.CADClient) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	if mode == "" {
		mode = ModeTranscript
	}
	return &Pipeline{
		Logger:    logger,
		Defaults:  defaults,
		InputMode: mode,
		Completer: completer,
		Raster:    raster,
		CAD:       cad,
	}
}

// Result is what one successful run produces.
type Result struct {
	RawResponse string
	Matches     map[string]string
	PartCount   int
}

// Run executes the full pipeline for one session. The emitted workbooks are
// written into the session directory and registered on the session.
func (p *Pipeline) Run(ctx context.Context, sess *session.Session, cadFiles []render.ModelFile) (*Result, error) {
	start := time.Now()
	log := p.Logger.With("session_id", sess.ID)

	// 1) CAD previews. Per-file failures degrade silently inside the client.
	previews := map[string][]byte{}
	if p.CAD != nil && len(cadFiles) > 0 {
		previews = p.CAD.RenderAll(ctx, cadFiles)
	}
	log.Info("pipeline.render.done", "cad_files", len(cadFiles), "previews", len(previews))

	// 2) Input representation.
	req := llm.CompletionRequest{}
	switch p.InputMode {
	case ModePage:
		pages, err := p.Raster.Rasterize(ctx, sess.Spreadsheet())
		if err != nil {
			return nil, common.NewAppError("RASTERIZE_ERROR", err.Error(), common.ErrUpstream)
		}
		req.ImageData = pages[0]
		req.ImageMIME = "image/png"
		req.Prompt = llm.BuildExtractionPrompt("", p.Defaults, true)
	default:
		transcript, err := workbook.Transcript(sess.Spreadsheet())
		if err != nil {
			return nil, common.NewAppError("NORMALIZE_ERROR", err.Error(), common.ErrInvalidInput)
		}
		log.Info("pipeline.normalize.ok", "transcript_len", len(transcript))
		req.Prompt = llm.BuildExtractionPrompt(transcript, p.Defaults, false)
	}

	// 3) Completion. Single attempt, fatal on failure.
	raw, err := p.Completer.Complete(ctx, req)
	if err != nil {
		return nil, common.NewAppError("COMPLETION_ERROR", err.Error(), common.ErrUpstream)
	}

	// 4) Extraction. The error already distinguishes not-found from
	// malformed; both are fatal here.
	layout, quotation, err := extract.Documents(raw)
	if err != nil {
		return nil, common.NewAppError("EXTRACTION_ERROR", err.Error(), common.ErrExtraction)
	}
	log.Info("pipeline.extract.ok",
		"layout_rows", len(layout.Rows),
		"product_lines", len(quotation.Products),
	)

	// 5) Reconciliation. Best-effort; misses are silent.
	filenames := make([]string, 0, len(previews))
	for name := range previews {
		filenames = append(filenames, name)
	}
	matches := reconcile.Resolve(layout, quotation, filenames)
	log.Info("pipeline.reconcile.done", "matched", len(matches), "candidates", len(filenames))

	// 6) Emission.
	orderBytes, err := emit.ProductionOrder(layout, previews)
	if err != nil {
		return nil, common.NewAppError("EMIT_ERROR", fmt.Sprintf("production order: %v", err), common.ErrInternal)
	}
	quoteBytes, err := emit.Quotation(quotation, previews)
	if err != nil {
		return nil, common.NewAppError("EMIT_ERROR", fmt.Sprintf("quotation: %v", err), common.ErrInternal)
	}

	orderPath := filepath.Join(sess.Dir, orderArtifact)
	quotePath := filepath.Join(sess.Dir, quotationArtifact)
	if err := os.WriteFile(orderPath, orderBytes, 0o644); err != nil {
		return nil, common.NewAppError("EMIT_ERROR", err.Error(), common.ErrInternal)
	}
	if err := os.WriteFile(quotePath, quoteBytes, 0o644); err != nil {
		return nil, common.NewAppError("EMIT_ERROR", err.Error(), common.ErrInternal)
	}
	sess.SetArtifacts(orderPath, quotePath)

	log.Info("pipeline.done",
		"elapsed_ms", time.Since(start).Milliseconds(),
		"order_bytes", len(orderBytes),
		"quotation_bytes", len(quoteBytes),
	)
	return &Result{
		RawResponse: raw,
		Matches:     matches,
		PartCount:   len(layout.DataRows()),
	}, nil
}
