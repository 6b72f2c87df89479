package autosubmit

import (
	"context"
	"math/rand"
	"time"
)

// Box is an element's bounding box in page coordinates.
type Box struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Element is a handle to a live DOM element.
type Element interface {
	Fill(value string) error
	Click(offsetX, offsetY float64) error
	SetInputFiles(paths ...string) error
	TextContent() (string, error)
	GetAttribute(name string) (string, error)
	BoundingBox() (*Box, error)
	IsVisible() bool
	// ClosestLabelText returns the text of the nearest ancestor <label>, ""
	// when the element has none.
	ClosestLabelText() (string, error)
}

// Page is the browser-page surface the engine needs. The production
// implementation is Playwright-backed; tests use in-memory fakes.
type Page interface {
	Goto(url string, timeout time.Duration) error
	// WaitForVisible waits up to timeout for the selector to match a visible
	// element and returns it; a timeout is an error.
	WaitForVisible(selector string, timeout time.Duration) (Element, error)
	QueryAll(selector string) ([]Element, error)
	// TextOf returns the text content of the first match, "" when absent.
	TextOf(selector string) (string, error)
	Content() (string, error)
	Screenshot() ([]byte, error)
	MoveMouse(x, y float64) error
	Scroll(deltaY float64) error
	URL() string
}

// Session owns one browser instance plus its isolated context and page.
// Close must be safe to call exactly once per session.
type Session interface {
	Page() Page
	Close() error
}

// Launcher acquires a fresh browser session for one run.
type Launcher interface {
	Launch(ctx context.Context, profile FingerprintProfile) (Session, error)
}

// FingerprintProfile randomizes the context-level signals bot detection keys
// on. A new profile is drawn per run.
type FingerprintProfile struct {
	ViewportWidth  int
	ViewportHeight int
	Locale         string
	Timezone       string
	UserAgent      string
}

var (
	profileViewports = [][2]int{
		{1280, 800}, {1366, 768}, {1440, 900}, {1536, 864}, {1920, 1080},
	}
	profileLocales   = []string{"en-US", "en-GB", "en-CA"}
	profileTimezones = []string{
		"America/New_York", "America/Chicago", "America/Denver",
		"America/Los_Angeles", "Europe/London",
	}
	profileUserAgents = []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/125.0.0.0 Safari/537.36",
	}
)

func randomProfile(rng *rand.Rand) FingerprintProfile {
	vp := profileViewports[rng.Intn(len(profileViewports))]
	return FingerprintProfile{
		ViewportWidth:  vp[0],
		ViewportHeight: vp[1],
		Locale:         profileLocales[rng.Intn(len(profileLocales))],
		Timezone:       profileTimezones[rng.Intn(len(profileTimezones))],
		UserAgent:      profileUserAgents[rng.Intn(len(profileUserAgents))],
	}
}
