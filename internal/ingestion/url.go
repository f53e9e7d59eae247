// Package ingestion turns job postings and uploaded resumes into clean
// plain text for the optimization pipeline.
package ingestion

import (
	"context"
	"fmt"
	"io"

	"github.com/marisol/resume-optimizer/internal/fetch"
)

var (
	// ErrHTTPRequestFailed is returned when the job posting cannot be fetched
	ErrHTTPRequestFailed = fmt.Errorf("HTTP request failed")
	// ErrContentExtractionFailed is returned when content extraction fails
	ErrContentExtractionFailed = fmt.Errorf("content extraction failed")
	// ErrNoContent is returned when a page yields no usable text
	ErrNoContent = fmt.Errorf("no job posting content found")
)

// JobPosting fetches a job posting URL and returns its cleaned text.
// It uses platform detection to apply platform-specific selectors for better
// content extraction, and falls back to headless browser rendering when the
// static HTML yields too little text. Progress lines are written to sink.
func JobPosting(ctx context.Context, urlStr string, sink io.Writer) (string, error) {
	platform := fetch.DetectPlatform(urlStr)
	fmt.Fprintf(sink, "Fetching job posting (%s)\n", platform)

	result, err := fetch.URL(ctx, urlStr, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHTTPRequestFailed, err)
	}

	contentSelectors := fetch.PlatformContentSelectors(platform)
	noiseSelectors := fetch.PlatformNoiseSelectors(platform)

	textContent, err := fetch.ExtractMainText(result.HTML, contentSelectors, noiseSelectors...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
	}

	if fetch.ShouldUseBrowser(textContent) {
		fmt.Fprintf(sink, "Static fetch returned %d chars, rendering with headless browser\n", len(textContent))

		browserHTML, browserErr := fetch.Rendered(ctx, urlStr, 0)
		if browserErr != nil {
			// Continue with the HTTP content if the browser fails
			fmt.Fprintf(sink, "Browser rendering failed: %v\n", browserErr)
		} else if rendered, err := fetch.ExtractMainText(browserHTML, contentSelectors, noiseSelectors...); err == nil && len(rendered) > len(textContent) {
			textContent = rendered
		}
	}

	cleanedText := CleanText(textContent)
	if cleanedText == "" {
		return "", fmt.Errorf("%w: %s", ErrNoContent, urlStr)
	}

	fmt.Fprintf(sink, "Job posting extracted (%d chars)\n", len(cleanedText))
	return cleanedText, nil
}
