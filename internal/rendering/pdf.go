package rendering

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// DefaultPrintTimeout bounds a single PDF print run.
const DefaultPrintTimeout = 60 * time.Second

// RenderResume converts the markdown document at docPath into a PDF written
// next to it, and returns the PDF path.
func RenderResume(ctx context.Context, docPath string) (string, error) {
	markdown, err := os.ReadFile(docPath)
	if err != nil {
		return "", &RenderError{
			Message: "failed to read resume document",
			Cause:   err,
		}
	}

	html, err := ToHTML(markdown)
	if err != nil {
		return "", err
	}

	pdfBytes, err := printToPDF(ctx, html)
	if err != nil {
		return "", &RenderError{
			Message: "failed to print PDF",
			Cause:   err,
		}
	}

	pdfPath := strings.TrimSuffix(docPath, ".md") + ".pdf"
	if err := os.WriteFile(pdfPath, pdfBytes, 0644); err != nil {
		return "", &RenderError{
			Message: "failed to write PDF",
			Cause:   err,
		}
	}

	return pdfPath, nil
}

// printToPDF loads the HTML into a headless browser and prints it.
func printToPDF(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, DefaultPrintTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var pdfBytes []byte
	err := chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBytes = buf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}

	return pdfBytes, nil
}
