package autosubmit

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"

	"time"

	"github.com/playwright-community/playwright-go"
)

// stealthScript masks the most common headless-automation signals before any
// page script runs.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3] });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
window.chrome = window.chrome || { runtime: {} };
`

// PlaywrightLauncher launches one Chromium instance per run with an isolated,
// fingerprint-randomized context.
type PlaywrightLauncher struct {
	headless bool
}

func NewPlaywrightLauncher(headless bool) *PlaywrightLauncher {
	return &PlaywrightLauncher{headless: headless}
}

func (l *PlaywrightLauncher) Launch(ctx context.Context, profile FingerprintProfile) (Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright driver: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(l.headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  profile.ViewportWidth,
			Height: profile.ViewportHeight,
		},
		Locale:     playwright.String(profile.Locale),
		TimezoneId: playwright.String(profile.Timezone),
		UserAgent:  playwright.String(profile.UserAgent),
	})
	if err != nil {
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("create browser context: %w", err)
	}

	// Stealth has to be installed before any navigation happens.
	if err := browserCtx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("install stealth script: %w", err)
	}

	page, err := browserCtx.NewPage()
	if err != nil {
		_ = browserCtx.Close()
		_ = browser.Close()
		_ = pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &playwrightSession{
		pw:      pw,
		browser: browser,
		context: browserCtx,
		page:    &playwrightPage{page: page},
	}, nil
}

type playwrightSession struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	context playwright.BrowserContext
	page    *playwrightPage
}

func (s *playwrightSession) Page() Page {
	return s.page
}

func (s *playwrightSession) Close() error {
	var firstErr error
	if err := s.context.Close(); err != nil {
		firstErr = err
	}
	if err := s.browser.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := s.pw.Stop(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(timeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	return err
}

func (p *playwrightPage) WaitForVisible(selector string, timeout time.Duration) (Element, error) {
	handle, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
		State:   playwright.WaitForSelectorStateVisible,
	})
	if err != nil {
		return nil, err
	}
	if handle == nil {
		return nil, fmt.Errorf("selector %q not found", selector)
	}
	return &playwrightElement{handle: handle}, nil
}

func (p *playwrightPage) QueryAll(selector string) ([]Element, error) {
	handles, err := p.page.QuerySelectorAll(selector)
	if err != nil {
		return nil, err
	}
	out := make([]Element, 0, len(handles))
	for _, h := range handles {
		out = append(out, &playwrightElement{handle: h})
	}
	return out, nil
}

func (p *playwrightPage) TextOf(selector string) (string, error) {
	handle, err := p.page.QuerySelector(selector)
	if err != nil || handle == nil {
		return "", err
	}
	return handle.TextContent()
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (p *playwrightPage) MoveMouse(x, y float64) error {
	return p.page.Mouse().Move(x, y)
}

func (p *playwrightPage) Scroll(deltaY float64) error {
	return p.page.Mouse().Wheel(0, deltaY)
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

type playwrightElement struct {
	handle playwright.ElementHandle
}

func (e *playwrightElement) Fill(value string) error {
	return e.handle.Fill(value)
}

func (e *playwrightElement) Click(offsetX, offsetY float64) error {
	return e.handle.Click(playwright.ElementHandleClickOptions{
		Position: &playwright.Position{X: offsetX, Y: offsetY},
	})
}

func (e *playwrightElement) SetInputFiles(paths ...string) error {
	files := make([]playwright.InputFile, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read upload file: %w", err)
		}
		files = append(files, playwright.InputFile{
			Name:     filepath.Base(p),
			MimeType: mime.TypeByExtension(filepath.Ext(p)),
			Buffer:   data,
		})
	}
	return e.handle.SetInputFiles(files)
}

func (e *playwrightElement) TextContent() (string, error) {
	return e.handle.TextContent()
}

func (e *playwrightElement) GetAttribute(name string) (string, error) {
	return e.handle.GetAttribute(name)
}

func (e *playwrightElement) BoundingBox() (*Box, error) {
	rect, err := e.handle.BoundingBox()
	if err != nil || rect == nil {
		return nil, err
	}
	return &Box{X: rect.X, Y: rect.Y, Width: rect.Width, Height: rect.Height}, nil
}

func (e *playwrightElement) IsVisible() bool {
	visible, err := e.handle.IsVisible()
	return err == nil && visible
}

func (e *playwrightElement) ClosestLabelText() (string, error) {
	res, err := e.handle.Evaluate(`el => { const l = el.closest('label'); return l ? l.textContent.trim() : ''; }`)
	if err != nil {
		return "", err
	}
	if text, ok := res.(string); ok {
		return text, nil
	}
	return "", nil
}
