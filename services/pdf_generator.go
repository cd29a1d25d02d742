package services

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PDFOptions controls page geometry for rendered PDFs.
type PDFOptions struct {
	PageOrientation string // portrait, landscape
	PageSize        string // letter, legal, A4
	MarginTop       int    // points (72 = 1 inch)
	MarginBottom    int
	MarginLeft      int
	MarginRight     int
}

// DefaultPDFOptions suits the summary sheets: A4 portrait with 0.75in margins.
func DefaultPDFOptions() PDFOptions {
	return PDFOptions{
		PageOrientation: "portrait",
		PageSize:        "A4",
		MarginTop:       54,
		MarginBottom:    54,
		MarginLeft:      54,
		MarginRight:     54,
	}
}

// paperSizes in inches, width x height, portrait.
var paperSizes = map[string][2]float64{
	"letter": {8.5, 11.0},
	"legal":  {8.5, 14.0},
	"A4":     {8.27, 11.69},
}

func (o PDFOptions) paper() (width, height float64) {
	dims, ok := paperSizes[o.PageSize]
	if !ok {
		dims = paperSizes["letter"]
	}
	width, height = dims[0], dims[1]
	if o.PageOrientation == "landscape" {
		width, height = height, width
	}
	return width, height
}

func inches(points int) float64 {
	return float64(points) / 72.0
}

// GeneratePDF renders an HTML document to PDF through headless Chrome.
// CHROME_PATH overrides the binary (headless-shell in containers).
func GeneratePDF(htmlContent string, options PDFOptions) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.DisableGPU,
	)
	if chromePath := os.Getenv("CHROME_PATH"); chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	defer allocCancel()

	ctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	paperWidth, paperHeight := options.paper()

	var pdfBuf []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		// Give the page a beat to lay out before printing
		chromedp.Sleep(200*time.Millisecond),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(inches(options.MarginTop)).
				WithMarginBottom(inches(options.MarginBottom)).
				WithMarginLeft(inches(options.MarginLeft)).
				WithMarginRight(inches(options.MarginRight)).
				WithPrintBackground(true).
				WithDisplayHeaderFooter(false).
				Do(ctx)
			if err != nil {
				return err
			}
			pdfBuf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return pdfBuf, nil
}
