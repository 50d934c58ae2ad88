package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SpaceshipxDev/creationfromzeus/internal/common"
	"github.com/SpaceshipxDev/creationfromzeus/internal/llm"
	"github.com/SpaceshipxDev/creationfromzeus/internal/render"
	"github.com/SpaceshipxDev/creationfromzeus/internal/session"
)

type fakeCompleter struct {
	out    string
	err    error
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, req llm.CompletionRequest) (string, error) {
	f.prompt = req.Prompt
	return f.out, f.err
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// modelResponse is a realistic completion: commentary, fenced code, single
// quotes and trailing commas that the repair passes must absorb.
const modelResponse = "Here are the extracted structures.\n" +
	"```javascript\n" +
	"const productionSheet = [\n" +
	"  {\"type\": \"title\", \"text\": \"生产单\", \"mergeCols\": 9, \"height\": 32},\n" +
	"  {\"type\": \"tableHeader\", \"headers\": [\"序号\", \"图片\", \"零件号\", \"零件名称\", \"规格\", \"材质\", \"数量\", \"工艺\", \"表面处理\"], \"height\": 22},\n" +
	"  {\"type\": \"data\", \"height\": 30, \"cells\": [\n" +
	"    {\"col\": 1, \"value\": \"1\"}, {\"col\": 2, \"value\": \"BRK-01\"},\n" +
	"    {\"col\": 3, \"value\": \"BRK-01\"}, {\"col\": 4, \"value\": '支架'},\n" +
	"    {\"col\": 5, \"value\": \"\"}, {\"col\": 6, \"value\": \"6061铝\"},\n" +
	"    {\"col\": 7, \"value\": \"20\"}, {\"col\": 8, \"value\": \"CNC\"},\n" +
	"    {\"col\": 9, \"value\": \"阳极氧化\"},\n" +
	"  ]},\n" +
	"]\n" +
	"\n" +
	"const quotationData = {\n" +
	"  \"quoteNumber\": \"Q-2024-001\",\n" +
	"  \"partyA\": {\"name\": \"宁波精机\"},\n" +
	"  \"partyB\": {\"name\": \"杭州宙斯创造科技有限公司\"},\n" +
	"  \"products\": [\n" +
	"    {\"seq\": 1, \"image\": \"BRK-01\", \"partName\": \"支架\", \"material\": \"6061铝\", \"quantity\": \"20\", \"lineTotal\": \"250.00\"},\n" +
	"  ],\n" +
	"  \"paymentTerms\": \"月结30天\",\n" +
	"}\n" +
	"```\n"

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{B: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func newSessionWithSheet(t *testing.T) *session.Session {
	t.Helper()
	reg := session.NewRegistry(t.TempDir(), time.Minute, discard())
	sess, err := reg.Create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	rows := [][]string{
		{"件号", "名称", "材质", "数量"},
		{"BRK-01", "支架", "6061铝", "20"},
	}
	for i, row := range rows {
		for j, v := range row {
			cell, _ := excelize.CoordinatesToCellName(j+1, i+1)
			if err := f.SetCellValue("Sheet1", cell, v); err != nil {
				t.Fatalf("set cell: %v", err)
			}
		}
	}
	path := filepath.Join(sess.Dir, "upload.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	sess.SetSpreadsheet(path)
	return sess
}

func cadServer(t *testing.T, preview []byte) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		zw := zip.NewWriter(&buf)
		e, _ := zw.Create("brk-01-v3.png")
		e.Write(preview)
		zw.Close()
		w.Write(buf.Bytes())
	}))
}

func TestRunEndToEnd(t *testing.T) {
	sess := newSessionWithSheet(t)
	srv := cadServer(t, pngBytes(t))
	defer srv.Close()

	comp := &fakeCompleter{out: modelResponse}
	cad := render.NewCADClient(srv.URL, 5*time.Second, 2, discard())
	p := New(discard(), llm.Defaults{SupplierName: "杭州宙斯创造科技有限公司"}, ModeTranscript, comp, nil, cad)

	modelPath := filepath.Join(sess.Dir, "brk-01-v3.step")
	if err := os.WriteFile(modelPath, []byte("step data"), 0o644); err != nil {
		t.Fatalf("write model: %v", err)
	}

	res, err := p.Run(context.Background(), sess, []render.ModelFile{{Name: "brk-01-v3.step", Path: modelPath}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// The prompt fed to the model carries the bounded transcript.
	if !strings.Contains(comp.prompt, "=== Sheet: Sheet1 ===") {
		t.Error("prompt missing sheet transcript")
	}
	if !strings.Contains(comp.prompt, `[A2: "BRK-01"]`) {
		t.Error("prompt missing part row")
	}

	if res.PartCount != 1 {
		t.Errorf("PartCount = %d, want 1", res.PartCount)
	}
	if res.RawResponse != modelResponse {
		t.Error("RawResponse does not echo the completion")
	}
	if got := res.Matches["BRK-01"]; got != "brk-01-v3.png" {
		t.Errorf("Matches[BRK-01] = %q, want brk-01-v3.png", got)
	}

	orderPath, quotePath := sess.Artifacts()
	if orderPath == "" || quotePath == "" {
		t.Fatal("artifacts not registered on session")
	}

	// Production order: preview embedded in the image column of the data row.
	order, err := excelize.OpenFile(orderPath)
	if err != nil {
		t.Fatalf("open order artifact: %v", err)
	}
	defer order.Close()
	pics, err := order.GetPictures("生产单", "B3")
	if err != nil || len(pics) != 1 {
		t.Errorf("order pictures at B3 = %d (err %v)", len(pics), err)
	}

	// Quotation: resolved image key embedded, not printed as text.
	quote, err := excelize.OpenFile(quotePath)
	if err != nil {
		t.Fatalf("open quotation artifact: %v", err)
	}
	defer quote.Close()
	if v, _ := quote.GetCellValue("报价单", "A1"); !strings.Contains(v, "Q-2024-001") {
		t.Errorf("quotation title = %q", v)
	}
	qpics, err := quote.GetPictures("报价单", "B9")
	if err != nil || len(qpics) != 1 {
		t.Errorf("quotation pictures at B9 = %d (err %v)", len(qpics), err)
	}
}

func TestRunNoRendererKeepsPlaceholders(t *testing.T) {
	sess := newSessionWithSheet(t)
	comp := &fakeCompleter{out: modelResponse}
	p := New(discard(), llm.Defaults{}, ModeTranscript, comp, nil, nil)

	res, err := p.Run(context.Background(), sess, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(res.Matches) != 0 {
		t.Errorf("Matches = %v, want none", res.Matches)
	}

	orderPath, _ := sess.Artifacts()
	order, err := excelize.OpenFile(orderPath)
	if err != nil {
		t.Fatalf("open order artifact: %v", err)
	}
	defer order.Close()
	if v, _ := order.GetCellValue("生产单", "B3"); v != "BRK-01" {
		t.Errorf("image cell = %q, want placeholder text", v)
	}
}

func TestRunCompleterFailureIsUpstream(t *testing.T) {
	sess := newSessionWithSheet(t)
	comp := &fakeCompleter{err: errors.New("rate limited")}
	p := New(discard(), llm.Defaults{}, ModeTranscript, comp, nil, nil)

	_, err := p.Run(context.Background(), sess, nil)
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("err = %v, want ErrUpstream", err)
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "COMPLETION_ERROR" {
		t.Errorf("code = %v, want COMPLETION_ERROR", err)
	}
}

func TestRunUnparsableResponseIsExtractionError(t *testing.T) {
	sess := newSessionWithSheet(t)
	comp := &fakeCompleter{out: "I could not find any tabular data in this document."}
	p := New(discard(), llm.Defaults{}, ModeTranscript, comp, nil, nil)

	_, err := p.Run(context.Background(), sess, nil)
	if !errors.Is(err, common.ErrExtraction) {
		t.Fatalf("err = %v, want ErrExtraction", err)
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) || appErr.Code != "EXTRACTION_ERROR" {
		t.Errorf("code = %v, want EXTRACTION_ERROR", err)
	}
}

func TestRunMissingSpreadsheetIsInvalidInput(t *testing.T) {
	reg := session.NewRegistry(t.TempDir(), time.Minute, discard())
	sess, err := reg.Create()
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	sess.SetSpreadsheet(filepath.Join(sess.Dir, "never-saved.xlsx"))

	comp := &fakeCompleter{out: modelResponse}
	p := New(discard(), llm.Defaults{}, ModeTranscript, comp, nil, nil)
	if _, err := p.Run(context.Background(), sess, nil); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("err = %v, want ErrInvalidInput", err)
	}
}
