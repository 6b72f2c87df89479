package autosubmit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/DharitG/jobs/internal/common/logger"
	"github.com/DharitG/jobs/internal/embedding"

	apperrors "github.com/DharitG/jobs/internal/common/errors"
)

// SiteAdapter is the per-ATS capability set. Variants differ only in field
// tables, selector configs and (for gated sites) login; the algorithmic shape
// is shared by formDriver.
type SiteAdapter interface {
	Name() string
	Login(ctx context.Context, page Page, task *JobApplicationTask) error
	FillForm(ctx context.Context, page Page, task *JobApplicationTask) error
	Submit(ctx context.Context, page Page) error
	Verify(ctx context.Context, page Page) error
}

// FieldSpec describes one logical form field of an ATS.
type FieldSpec struct {
	Key         string      // logical key into SelectorConfig
	Label       string      // human-readable label for semantic fallback
	Kind        ElementKind
	ProfileKeys []string // profile values joined with a space
	Required    bool
	File        bool // résumé upload; takes the task's resume path
}

// value builds the fill value for this field from the task.
func (f FieldSpec) value(task *JobApplicationTask) string {
	parts := make([]string, 0, len(f.ProfileKeys))
	for _, key := range f.ProfileKeys {
		if v := task.Profile(key); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Indicator is one success or error signal checked during verification.
// Either a selector that must match a visible element, or a text fragment
// that must appear in the page content.
type Indicator struct {
	Selector string
	Text     string
}

// AdapterDeps carries the shared collaborators an adapter variant needs.
// Selectors is the per-site selector config; the adapter builds its own
// resolver from it.
type AdapterDeps struct {
	Selectors  *SelectorConfig
	Embeddings *embedding.Service
	Humanizer  *Humanizer
	Logger     logger.Logger
	StaticWait time.Duration
	VerifyWait time.Duration
	PollEvery  time.Duration
}

// formDriver is the shared adapter implementation: fill each field through
// humanize-then-resolve, click submit with a randomized offset, then race
// success indicators against error indicators under one bounded wait.
type formDriver struct {
	name        string
	fields      []FieldSpec
	submitKey   string
	submitLabel string
	success     []Indicator
	failure     []Indicator
	resolver    *Resolver
	humanizer   *Humanizer
	logger      logger.Logger
	verifyWait  time.Duration
	pollEvery   time.Duration
}

func newFormDriver(name string, deps AdapterDeps, fields []FieldSpec, submitKey, submitLabel string, success, failure []Indicator) *formDriver {
	verifyWait := deps.VerifyWait
	if verifyWait <= 0 {
		verifyWait = 15 * time.Second
	}
	pollEvery := deps.PollEvery
	if pollEvery <= 0 {
		pollEvery = 500 * time.Millisecond
	}
	return &formDriver{
		name:        name,
		fields:      fields,
		submitKey:   submitKey,
		submitLabel: submitLabel,
		success:     success,
		failure:     failure,
		resolver:    NewResolver(deps.Selectors, deps.Embeddings, deps.Logger, deps.StaticWait),
		humanizer:   deps.Humanizer,
		logger:      deps.Logger.WithFields(map[string]interface{}{"adapter": name}),
		verifyWait:  verifyWait,
		pollEvery:   pollEvery,
	}
}

func (d *formDriver) Name() string {
	return d.name
}

// Login is a no-op for direct job-posting links; gated variants override it.
func (d *formDriver) Login(ctx context.Context, page Page, task *JobApplicationTask) error {
	return nil
}

func (d *formDriver) FillForm(ctx context.Context, page Page, task *JobApplicationTask) error {
	for _, field := range d.fields {
		if err := ctx.Err(); err != nil {
			return err
		}

		value := field.value(task)
		if !field.File && value == "" {
			if field.Required {
				return apperrors.NewFormFillError(d.name, field.Key, fmt.Errorf("profile value missing"))
			}
			continue
		}

		d.humanizer.BeforeInteraction(ctx, page)

		el := d.resolver.Resolve(ctx, page, field.Key, field.Label, field.Kind)
		if el == nil {
			if field.Required {
				return apperrors.NewFormFillError(d.name, field.Key, nil)
			}
			d.logger.Debug("optional field unresolved, skipping", map[string]interface{}{"field": field.Key})
			continue
		}

		d.humanizer.Approach(ctx, page, el)

		var err error
		if field.File {
			err = el.SetInputFiles(task.ResumeFilePath)
		} else {
			err = el.Fill(value)
		}
		if err != nil {
			if field.Required {
				return apperrors.NewFormFillError(d.name, field.Key, err)
			}
			d.logger.Warn("optional field fill failed, skipping", map[string]interface{}{
				"field": field.Key,
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (d *formDriver) Submit(ctx context.Context, page Page) error {
	d.humanizer.BeforeInteraction(ctx, page)

	el := d.resolver.Resolve(ctx, page, d.submitKey, d.submitLabel, KindButton)
	if el == nil {
		return apperrors.NewSubmitFailedError(d.name, fmt.Errorf("submit control not found"))
	}

	d.humanizer.Approach(ctx, page, el)

	box, _ := el.BoundingBox()
	x, y := d.humanizer.ClickOffset(box)
	if err := el.Click(x, y); err != nil {
		return apperrors.NewSubmitFailedError(d.name, err)
	}
	return nil
}

// Verify races success indicators against error indicators. A timeout with
// neither present is a failure: a submission without explicit confirmation is
// never reported as success.
func (d *formDriver) Verify(ctx context.Context, page Page) error {
	deadline := time.Now().Add(d.verifyWait)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		content, _ := page.Content()
		lower := strings.ToLower(content)

		if hit := d.firstHit(page, lower, d.failure); hit != "" {
			return apperrors.NewVerifyFailedError(d.name, fmt.Sprintf("error indicator: %s", hit))
		}
		if hit := d.firstHit(page, lower, d.success); hit != "" {
			d.logger.Info("submission confirmed", map[string]interface{}{"indicator": hit})
			return nil
		}

		if time.Now().After(deadline) {
			return apperrors.NewVerifyFailedError(d.name, "no confirmation within timeout")
		}

		timer := time.NewTimer(d.pollEvery)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (d *formDriver) firstHit(page Page, lowerContent string, indicators []Indicator) string {
	for _, ind := range indicators {
		if ind.Selector != "" {
			els, err := page.QueryAll(ind.Selector)
			if err == nil {
				for _, el := range els {
					if el.IsVisible() {
						return ind.Selector
					}
				}
			}
		}
		if ind.Text != "" && strings.Contains(lowerContent, strings.ToLower(ind.Text)) {
			return ind.Text
		}
	}
	return ""
}
