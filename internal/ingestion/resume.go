package ingestion

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrNoResumeText is returned when a resume PDF yields no extractable text
var ErrNoResumeText = fmt.Errorf("resume PDF contains no extractable text")

// ResumeText extracts the plain text of a resume PDF and returns it cleaned.
func ResumeText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open resume PDF: %w", err)
	}
	defer func() { _ = f.Close() }()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract text from resume PDF: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("failed to read resume text: %w", err)
	}

	text := CleanText(buf.String())
	if text == "" {
		return "", ErrNoResumeText
	}
	return text, nil
}
