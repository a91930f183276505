package browser

import (
	"context"
	"fmt"
	"strings"

	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

const descriptionSelector = ".jobs-description__content, .show-more-less-html__markup, #job-details"

// DescriptionFetcher reads job descriptions through a logged-in browser page.
// Use it when the guest endpoint refuses to serve a posting.
type DescriptionFetcher struct {
	page     playwright.Page
	baseURL  string
	debugger *ScreenshotDebugger // optional
	log      *zap.Logger
}

func NewDescriptionFetcher(page playwright.Page, baseURL string, debugger *ScreenshotDebugger, log *zap.Logger) *DescriptionFetcher {
	if baseURL == "" {
		baseURL = "https://www.linkedin.com"
	}
	return &DescriptionFetcher{page: page, baseURL: strings.TrimRight(baseURL, "/"), debugger: debugger, log: log}
}

// FetchJobDescription returns the trimmed description text, or "" when the
// page has no description block.
func (f *DescriptionFetcher) FetchJobDescription(ctx context.Context, jobID string) (string, error) {
	jobURL := fmt.Sprintf("%s/jobs/view/%s/", f.baseURL, jobID)
	f.log.Debug("opening job page", zap.String("url", jobURL))

	if _, err := f.page.Goto(jobURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(30000),
	}); err != nil {
		return "", fmt.Errorf("failed to load job %s: %w", jobID, err)
	}

	if _, err := f.page.WaitForSelector(descriptionSelector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		f.log.Warn("description block not found", zap.String("job_id", jobID))
		if f.debugger != nil {
			if path, err := f.debugger.Capture(f.page, "job_"+jobID); err != nil {
				f.log.Warn("screenshot failed", zap.Error(err))
			} else {
				f.log.Info("screenshot saved", zap.String("path", path))
			}
		}
		return "", nil
	}

	if err := MouseJiggle(ctx, f.page); err != nil {
		return "", err
	}
	if err := HumanScroll(ctx, f.page); err != nil {
		return "", err
	}

	text, err := f.page.Locator(descriptionSelector).First().InnerText()
	if err != nil {
		return "", fmt.Errorf("failed to read description for %s: %w", jobID, err)
	}
	return strings.TrimSpace(text), nil
}
