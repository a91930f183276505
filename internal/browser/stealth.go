package browser

import (
	"context"
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

const hideWebdriverScript = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined });`

// RandomDuration picks a duration in [min, max].
func RandomDuration(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)+1))
}

// RandomDelay waits for a random duration between min and max, or until ctx is done.
func RandomDelay(ctx context.Context, min, max time.Duration) error {
	t := time.NewTimer(RandomDuration(min, max))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// HumanScroll scrolls down in steps and back up a little, which also triggers lazy loading.
func HumanScroll(ctx context.Context, page playwright.Page) error {
	for i := 0; i < 3; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight / 2)"); err != nil {
			return err
		}
		if err := RandomDelay(ctx, 300*time.Millisecond, 900*time.Millisecond); err != nil {
			return err
		}
	}
	_, err := page.Evaluate("window.scrollBy(0, -200)")
	return err
}

// MouseJiggle moves the mouse to a few random points in the viewport.
func MouseJiggle(ctx context.Context, page playwright.Page) error {
	viewportSize := page.ViewportSize()
	if viewportSize == nil || viewportSize.Width <= 0 || viewportSize.Height <= 0 {
		return nil
	}
	for i := 0; i < 3; i++ {
		x := rand.Intn(viewportSize.Width)
		y := rand.Intn(viewportSize.Height)
		if err := page.Mouse().Move(float64(x), float64(y)); err != nil {
			return err
		}
		if err := RandomDelay(ctx, 100*time.Millisecond, 300*time.Millisecond); err != nil {
			return err
		}
	}
	return nil
}
