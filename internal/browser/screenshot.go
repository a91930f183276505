package browser

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ScreenshotDebugger saves full-page screenshots for pages that did not look as expected.
type ScreenshotDebugger struct {
	outputDir string
	now       func() time.Time
}

func NewScreenshotDebugger(dir string) (*ScreenshotDebugger, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot dir: %w", err)
	}
	return &ScreenshotDebugger{outputDir: dir, now: time.Now}, nil
}

// Path returns where a screenshot called name taken now would be written.
func (s *ScreenshotDebugger) Path(name string) string {
	timestamp := s.now().Format("2006-01-02_15-04-05")
	return filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
}

// Capture writes a screenshot of page and returns its path.
func (s *ScreenshotDebugger) Capture(page playwright.Page, name string) (string, error) {
	path := s.Path(name)
	if _, err := page.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return path, nil
}
