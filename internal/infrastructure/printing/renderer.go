// Package printing renders analytics reports to PDF through headless Chrome.
package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	analyticsapp "github.com/bizdir/backend/internal/application/analytics"
	"github.com/bizdir/backend/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultTimeout = 30 * time.Second

// ErrChromeNotFound is returned when no Chrome or Chromium binary is available
var ErrChromeNotFound = errors.New("chrome binary not found")

// chromeCandidates are looked up on PATH when no explicit path is configured
var chromeCandidates = []string{
	"headless-shell",
	"chromium",
	"chromium-browser",
	"google-chrome",
	"google-chrome-stable",
}

// A4 in inches
const (
	paperWidth  = 8.27
	paperHeight = 11.69
	margin      = 0.4
)

// Config configures the Chrome renderer
type Config struct {
	// ChromePath points at the browser binary; empty searches PATH
	ChromePath string
	Timeout    time.Duration
	// NoSandbox is needed when running as root in containers
	NoSandbox bool
}

// ChromeRenderer prints report HTML to PDF with chromedp
type ChromeRenderer struct {
	config Config
	logger *zap.Logger
}

// NewChromeRenderer creates a renderer. The binary is resolved per render so
// a browser installed after startup is picked up.
func NewChromeRenderer(config Config, logger *zap.Logger) *ChromeRenderer {
	if config.Timeout <= 0 {
		config.Timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromeRenderer{config: config, logger: logger}
}

// RenderSummaryPDF renders report as an A4 PDF
func (r *ChromeRenderer) RenderSummaryPDF(ctx context.Context, report analyticsapp.ExportReport) (pdf []byte, err error) {
	ctx, span := telemetry.StartSpan(ctx, "export.render_pdf",
		attribute.String("report.from", report.Summary.From),
		attribute.String("report.to", report.Summary.To))
	defer func() { telemetry.EndSpan(span, err) }()

	html, err := RenderSummaryHTML(report)
	if err != nil {
		return nil, fmt.Errorf("render report html: %w", err)
	}
	return r.printHTML(ctx, html)
}

func (r *ChromeRenderer) printHTML(ctx context.Context, html string) ([]byte, error) {
	binary, err := resolveChrome(r.config.ChromePath)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(binary),
		chromedp.DisableGPU,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if r.config.NoSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			r.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)
	defer browserCancel()

	var pdf []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			data, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(paperWidth).
				WithPaperHeight(paperHeight).
				WithMarginTop(margin).
				WithMarginBottom(margin).
				WithMarginLeft(margin).
				WithMarginRight(margin).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = data
			return nil
		}),
	)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("pdf rendering timed out after %v: %w", r.config.Timeout, err)
		}
		return nil, fmt.Errorf("chromedp: %w", err)
	}
	if len(pdf) == 0 {
		return nil, errors.New("generated pdf is empty")
	}

	r.logger.Info("PDF rendered",
		zap.Int("bytes", len(pdf)),
		zap.Duration("duration", time.Since(start)))
	return pdf, nil
}

func resolveChrome(configured string) (string, error) {
	if configured != "" {
		info, err := os.Stat(configured)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrChromeNotFound, configured)
		}
		return configured, nil
	}
	for _, name := range chromeCandidates {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", ErrChromeNotFound
}

var _ analyticsapp.ReportRenderer = (*ChromeRenderer)(nil)
