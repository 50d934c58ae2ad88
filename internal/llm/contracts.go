package llm

import "context"

// CompletionRequest carries one prompt, with an optional inline page image
// for the vision path.
type CompletionRequest struct {
	Prompt string

	// ImageData is an optional rasterized page; when set, ImageMIME must be
	// an image type the provider accepts (image/png, image/jpeg).
	ImageData []byte
	ImageMIME string
}

// Completer is the external completion capability: it streams text chunks
// until exhaustion and returns the concatenated response. One attempt per
// request; failures are fatal for the caller.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Defaults is the boilerplate embedded in the instruction template. The model
// is told to preserve it verbatim unless the sheet contradicts it, which
// keeps non-extractable fields stable across runs.
type Defaults struct {
	SupplierName       string
	SupplierContact    string
	SupplierTel        string
	SupplierEmail      string
	SupplierAddress    string
	PaymentTerms       string
	AcceptanceStandard string
	Validity           string
	Notice             string
}
