// Package server is the HTTP request boundary: multipart upload in, JSON
// result plus downloadable workbook artifacts out. All fatal pipeline errors
// surface here as a single error response.
package server

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SpaceshipxDev/creationfromzeus/constants"
	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
	"github.com/SpaceshipxDev/creationfromzeus/internal/pipeline"
	"github.com/SpaceshipxDev/creationfromzeus/internal/render"
	"github.com/SpaceshipxDev/creationfromzeus/internal/session"
)

type Server struct {
	log      *slog.Logger
	cfg      *common.Config
	sessions *session.Registry
	pipe     *pipeline.Pipeline
}

func New(logger *slog.Logger, cfg *common.Config, sessions *session.Registry, pipe *pipeline.Pipeline) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{log: logger, cfg: cfg, sessions: sessions, pipe: pipe}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID())
	r.MaxMultipartMemory = 32 << 20

	r.POST("/api/estimate", s.handleEstimate)
	r.GET("/api/estimate/:id/order", s.handleDownloadOrder)
	r.GET("/api/estimate/:id/quotation", s.handleDownloadQuotation)
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

// requestID assigns each request an id that downstream capability calls log
// under, and echoes it back to the caller.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := uuid.New().String()
		c.Request = c.Request.WithContext(common.WithRequestID(c.Request.Context(), rid))
		c.Header("X-Request-ID", rid)
		c.Next()
	}
}

type estimateResponse struct {
	SessionID    string            `json:"session_id"`
	PartCount    int               `json:"part_count"`
	Matches      map[string]string `json:"matches"`
	RawResponse  string            `json:"raw_response"`
	OrderURL     string            `json:"order_url"`
	QuotationURL string            `json:"quotation_url"`
}

func (s *Server) handleEstimate(c *gin.Context) {
	start := time.Now()

	sheet, err := c.FormFile("spreadsheet")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "MISSING_FILE", errors.New("spreadsheet file is required"))
		return
	}
	if !constants.IsSpreadsheet(filepath.Ext(sheet.Filename)) {
		RespondError(c, http.StatusBadRequest, "BAD_EXTENSION",
			fmt.Errorf("unsupported spreadsheet type %q", filepath.Ext(sheet.Filename)))
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "BAD_FORM", err)
		return
	}
	models := form.File["models"]
	for _, m := range models {
		if !constants.IsModel(filepath.Ext(m.Filename)) {
			RespondError(c, http.StatusBadRequest, "BAD_EXTENSION",
				fmt.Errorf("unsupported model type %q", filepath.Ext(m.Filename)))
			return
		}
	}
	if len(models) > 0 && s.cfg.Render.CADRendererURL == "" {
		RespondError(c, http.StatusInternalServerError, "CONFIG_ERROR",
			errors.New("CAD_RENDERER_URL is not configured"))
		return
	}

	sess, err := s.sessions.Create()
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "SESSION_ERROR", err)
		return
	}

	sheetPath := filepath.Join(sess.Dir, filepath.Base(sheet.Filename))
	if err := c.SaveUploadedFile(sheet, sheetPath); err != nil {
		RespondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", err)
		return
	}
	sess.SetSpreadsheet(sheetPath)

	cadFiles := make([]render.ModelFile, 0, len(models))
	for _, m := range models {
		dst := filepath.Join(sess.Dir, filepath.Base(m.Filename))
		if err := c.SaveUploadedFile(m, dst); err != nil {
			RespondError(c, http.StatusInternalServerError, "UPLOAD_ERROR", err)
			return
		}
		cadFiles = append(cadFiles, render.ModelFile{Name: filepath.Base(m.Filename), Path: dst})
	}

	s.log.Info("estimate.request",
		"session_id", sess.ID,
		"spreadsheet", sheet.Filename,
		"cad_files", len(cadFiles),
	)

	result, err := s.pipe.Run(c.Request.Context(), sess, cadFiles)
	if err != nil {
		var appErr *common.AppError
		code := "PIPELINE_ERROR"
		if errors.As(err, &appErr) {
			code = appErr.Code
		}
		s.log.Error("estimate.failed", "session_id", sess.ID, "err", err)
		RespondError(c, common.HTTPStatus(err), code, err)
		return
	}

	s.log.Info("estimate.ok",
		"session_id", sess.ID,
		"parts", result.PartCount,
		"matched", len(result.Matches),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	RespondOK(c, estimateResponse{
		SessionID:    sess.ID,
		PartCount:    result.PartCount,
		Matches:      result.Matches,
		RawResponse:  result.RawResponse,
		OrderURL:     "/api/estimate/" + sess.ID + "/order",
		QuotationURL: "/api/estimate/" + sess.ID + "/quotation",
	})
}

func (s *Server) handleDownloadOrder(c *gin.Context) {
	s.download(c, func(sess *session.Session) (string, string) {
		order, _ := sess.Artifacts()
		return order, "production_order.xlsx"
	})
}

func (s *Server) handleDownloadQuotation(c *gin.Context) {
	s.download(c, func(sess *session.Session) (string, string) {
		_, quote := sess.Artifacts()
		return quote, "quotation.xlsx"
	})
}

func (s *Server) download(c *gin.Context, pick func(*session.Session) (string, string)) {
	sess, ok := s.sessions.Get(c.Param("id"))
	if !ok {
		RespondError(c, http.StatusNotFound, "SESSION_EXPIRED", errors.New("session not found or expired"))
		return
	}
	path, name := pick(sess)
	if path == "" {
		RespondError(c, http.StatusNotFound, "NO_ARTIFACT", errors.New("artifact not available"))
		return
	}
	c.FileAttachment(path, name)
}
