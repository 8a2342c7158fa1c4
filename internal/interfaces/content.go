package interfaces

import (
	"context"
)

// PDFExtractor extracts plain text from PDF bytes for knowledge ingestion.
type PDFExtractor interface {
	ExtractTextFromBytes(ctx context.Context, pdf []byte) (string, error)
}

// HTMLTransformer converts HTML to markdown for knowledge ingestion.
type HTMLTransformer interface {
	HTMLToMarkdown(html string, baseURL string) (string, error)

	// ExtractTitle returns the document title from <title> or the first
	// <h1>, or "" when neither is present.
	ExtractTitle(html string) string
}
