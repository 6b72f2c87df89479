package autosubmit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// In-memory browser fakes shared by the package tests. They model just enough
// DOM behavior to exercise resolution, adapters and the state machine without
// a real browser.

type fakeElement struct {
	id             string
	ariaLabelledBy string
	placeholder    string
	labelText      string
	text           string
	visible        bool
	box            *Box

	fillErr  error
	clickErr error
	fileErr  error

	fills  []string
	files  [][]string
	clicks int
	clickX float64
	clickY float64
}

func (e *fakeElement) Fill(value string) error {
	if e.fillErr != nil {
		return e.fillErr
	}
	e.fills = append(e.fills, value)
	return nil
}

func (e *fakeElement) Click(offsetX, offsetY float64) error {
	if e.clickErr != nil {
		return e.clickErr
	}
	e.clicks++
	e.clickX, e.clickY = offsetX, offsetY
	return nil
}

func (e *fakeElement) SetInputFiles(paths ...string) error {
	if e.fileErr != nil {
		return e.fileErr
	}
	e.files = append(e.files, paths)
	return nil
}

func (e *fakeElement) TextContent() (string, error) { return e.text, nil }

func (e *fakeElement) GetAttribute(name string) (string, error) {
	switch name {
	case "id":
		return e.id, nil
	case "aria-labelledby":
		return e.ariaLabelledBy, nil
	case "placeholder":
		return e.placeholder, nil
	}
	return "", nil
}

func (e *fakeElement) BoundingBox() (*Box, error) {
	if e.box != nil {
		return e.box, nil
	}
	return &Box{X: 10, Y: 10, Width: 100, Height: 40}, nil
}

func (e *fakeElement) IsVisible() bool { return e.visible }

func (e *fakeElement) ClosestLabelText() (string, error) { return e.labelText, nil }

type fakePage struct {
	mu sync.Mutex

	// visible maps a selector to the element WaitForVisible resolves to.
	visible map[string]Element
	// queries maps a selector to the QueryAll result.
	queries map[string][]Element
	// texts maps a selector to the TextOf result.
	texts map[string]string

	content    string
	contentErr error
	shot       []byte
	shotErr    error
	gotoErr    error
	queryErr   error

	gotoURLs []string
	moves    int
	scrolls  int
	url      string
}

func newFakePage() *fakePage {
	return &fakePage{
		visible: map[string]Element{},
		queries: map[string][]Element{},
		texts:   map[string]string{},
	}
}

func (p *fakePage) Goto(url string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gotoErr != nil {
		return p.gotoErr
	}
	p.gotoURLs = append(p.gotoURLs, url)
	p.url = url
	return nil
}

func (p *fakePage) WaitForVisible(selector string, timeout time.Duration) (Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if el, ok := p.visible[selector]; ok {
		return el, nil
	}
	return nil, fmt.Errorf("timeout waiting for %s", selector)
}

func (p *fakePage) QueryAll(selector string) ([]Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.queryErr != nil {
		return nil, p.queryErr
	}
	return p.queries[selector], nil
}

func (p *fakePage) TextOf(selector string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.texts[selector], nil
}

func (p *fakePage) Content() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.content, p.contentErr
}

func (p *fakePage) Screenshot() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shot, p.shotErr
}

func (p *fakePage) MoveMouse(x, y float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.moves++
	return nil
}

func (p *fakePage) Scroll(deltaY float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

type fakeSession struct {
	page     *fakePage
	closes   int
	closeErr error
}

func (s *fakeSession) Page() Page { return s.page }

func (s *fakeSession) Close() error {
	s.closes++
	return s.closeErr
}

type fakeLauncher struct {
	session  *fakeSession
	err      error
	launches int
}

func (l *fakeLauncher) Launch(ctx context.Context, profile FingerprintProfile) (Session, error) {
	l.launches++
	if l.err != nil {
		return nil, l.err
	}
	return l.session, nil
}

// stubVectors is an embedding.Embedder returning canned unit vectors per text.
// Unknown texts get a vector orthogonal to everything known.
type stubVectors struct {
	vectors map[string][]float32
	err     error
}

func (s *stubVectors) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	if v, ok := s.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (s *stubVectors) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		if v, ok := s.vectors[t]; ok {
			out[i] = v
		} else {
			out[i] = []float32{0, 0, 1}
		}
	}
	return out, nil
}
