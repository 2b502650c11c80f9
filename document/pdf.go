package document

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var ErrNoText = errors.New("document has no extractable text")

// LoadPDF extracts the plain text of every page of the PDF at path, in page
// order, joined by a single newline. Pages without text are skipped.
func LoadPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	log := zap.L().With(
		zap.String("component", "document"),
		zap.String("path", path),
	)

	return extractText(&pdfPages{r}, log)
}

type pageSource interface {
	NumPage() int
	PageText(num int) (string, error)
}

type pdfPages struct {
	reader *pdf.Reader
}

func (p *pdfPages) NumPage() int {
	return p.reader.NumPage()
}

func (p *pdfPages) PageText(num int) (text string, err error) {
	// the reader panics on malformed content streams
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page %d: %v", num, r)
		}
	}()

	page := p.reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}

	return page.GetPlainText(nil)
}

func extractText(src pageSource, log *zap.Logger) (string, error) {
	total := src.NumPage()

	texts := make([]string, 0, total)
	for i := 1; i <= total; i++ {
		text, err := src.PageText(i)
		if err != nil {
			log.Warn("page skipped",
				zap.Int("page", i),
				zap.Error(err),
			)
			continue
		}

		// Whitespace-only pages count as empty so image-only PDFs still end in ErrNoText.
		if strings.TrimSpace(text) == "" {
			continue
		}

		texts = append(texts, text)
	}

	if len(texts) == 0 {
		return "", ErrNoText
	}

	log.Debug("text extracted",
		zap.Int("pages", total),
		zap.Int("text_pages", len(texts)),
	)

	return strings.Join(texts, "\n"), nil
}
