// Package extractor converts source documents into plain text for the
// extraction engine. It is the upstream collaborator: the engine itself
// never touches files or PDFs.
package extractor

import (
	"bytes"
	"os/exec"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	"github.com/ledongthuc/pdf"
)

// ExtractText reads a PDF file and returns the text content of each page.
// The structured library is tried first; if it fails or yields unreadable
// output (custom font encodings decode to garbage), the external
// pdftotext command is tried as a fallback. Garbage is never returned.
func ExtractText(filePath string) ([]string, error) {
	pages, libErr := extractWithLibrary(filePath)
	if libErr == nil && isReadableText(pages) {
		return pages, nil
	}

	popplerPages, popplerErr := extractWithPdftotext(filePath)
	if popplerErr == nil && isReadableText(popplerPages) {
		return popplerPages, nil
	}

	if libErr != nil {
		return nil, errors.Wrap(libErr, "PDF text extraction failed; the file may be image-based or use custom font encodings")
	}
	return nil, errors.New("no readable text could be extracted from PDF")
}

func extractWithLibrary(filePath string) ([]string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, errors.Wrap(err, "open PDF")
	}
	defer f.Close()

	var pages []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := pageText(page)
		if err != nil {
			return nil, errors.Wrapf(err, "page %d", i)
		}
		pages = append(pages, text)
	}
	if len(pages) == 0 {
		return nil, errors.New("PDF contains no extractable pages")
	}
	return pages, nil
}

// pageText reassembles a page's positioned text runs into lines, keeping
// the statement's row structure: runs sharing a Y coordinate belong to
// one line, ordered left to right.
func pageText(page pdf.Page) (string, error) {
	rows, err := page.GetTextByRow()
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, row := range rows {
		var line strings.Builder
		for _, word := range row.Content {
			if line.Len() > 0 {
				line.WriteByte(' ')
			}
			line.WriteString(word.S)
		}
		b.WriteString(strings.TrimRight(line.String(), " "))
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func extractWithPdftotext(filePath string) ([]string, error) {
	path, err := exec.LookPath("pdftotext")
	if err != nil {
		return nil, errors.New("pdftotext not installed")
	}
	var out bytes.Buffer
	cmd := exec.Command(path, "-layout", filePath, "-")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, errors.Wrap(err, "pdftotext")
	}
	// pdftotext separates pages with form feeds.
	pages := strings.Split(out.String(), "\f")
	var cleaned []string
	for _, p := range pages {
		if strings.TrimSpace(p) != "" {
			cleaned = append(cleaned, p)
		}
	}
	if len(cleaned) == 0 {
		return nil, errors.New("pdftotext produced no text")
	}
	return cleaned, nil
}

// isReadableText guards against identity-encoded fonts that decode into
// garbage: at least 70% of the characters must be plain ASCII text.
func isReadableText(pages []string) bool {
	total, readable := 0, 0
	for _, page := range pages {
		for _, r := range page {
			total++
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
				(r >= '0' && r <= '9') || unicode.IsSpace(r) ||
				strings.ContainsRune(`.,-/:;()'"$%&|`, r) {
				readable++
			}
		}
	}
	if total == 0 {
		return false
	}
	return float64(readable)/float64(total) >= 0.7
}
