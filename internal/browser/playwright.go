package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

type PlaywrightManager struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

func NewPlaywright(headless bool) (*PlaywrightManager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--no-sandbox",
		},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("could not launch chromium: %w", err)
	}

	return &PlaywrightManager{pw: pw, browser: browser}, nil
}

// NewContext opens a browser context carrying the given cookies.
func (pm *PlaywrightManager) NewContext(cookies []Cookie) (playwright.BrowserContext, error) {
	bctx, err := pm.browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent: playwright.String(userAgent),
		Viewport:  &playwright.Size{Width: 1366, Height: 768},
		Locale:    playwright.String("en-US"),
	})
	if err != nil {
		return nil, fmt.Errorf("could not create browser context: %w", err)
	}

	if len(cookies) > 0 {
		pwCookies := make([]playwright.OptionalCookie, len(cookies))
		for i, c := range cookies {
			pwCookies[i] = c.ToPlaywright()
		}
		if err := bctx.AddCookies(pwCookies); err != nil {
			_ = bctx.Close()
			return nil, fmt.Errorf("could not add cookies: %w", err)
		}
	}

	if err := bctx.AddInitScript(playwright.Script{Content: playwright.String(hideWebdriverScript)}); err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("could not add init script: %w", err)
	}
	return bctx, nil
}

func (pm *PlaywrightManager) Close() error {
	if pm.browser != nil {
		if err := pm.browser.Close(); err != nil {
			return err
		}
	}
	if pm.pw != nil {
		return pm.pw.Stop()
	}
	return nil
}
