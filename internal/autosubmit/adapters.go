package autosubmit

import (
	"context"
	"fmt"

	apperrors "github.com/DharitG/jobs/internal/common/errors"
)

// NewGreenhouse builds the adapter for Greenhouse-hosted job boards.
// Greenhouse embeds the application form on the posting page itself, split
// first/last name fields, no login.
func NewGreenhouse(deps AdapterDeps) SiteAdapter {
	fields := []FieldSpec{
		{Key: "first_name", Label: "First Name", Kind: KindText, ProfileKeys: []string{ProfileFirstName}, Required: true},
		{Key: "last_name", Label: "Last Name", Kind: KindText, ProfileKeys: []string{ProfileLastName}, Required: true},
		{Key: "email", Label: "Email Address", Kind: KindText, ProfileKeys: []string{ProfileEmail}, Required: true},
		{Key: "phone", Label: "Phone Number", Kind: KindText, ProfileKeys: []string{ProfilePhone}},
		{Key: "resume", Label: "Attach Resume or CV", Kind: KindFile, Required: true, File: true},
		{Key: "linkedin", Label: "LinkedIn Profile URL", Kind: KindText, ProfileKeys: []string{ProfileLinkedIn}},
	}
	return newFormDriver("greenhouse", deps, fields,
		"submit", "Submit Application",
		[]Indicator{
			{Selector: "#application_confirmation"},
			{Text: "thank you for applying"},
			{Text: "application has been submitted"},
		},
		[]Indicator{
			{Selector: ".field-error-msg"},
			{Text: "there was an error"},
		},
	)
}

// NewLever builds the adapter for Lever postings. Lever uses a single
// full-name field, so first and last name are joined with a space.
func NewLever(deps AdapterDeps) SiteAdapter {
	fields := []FieldSpec{
		{Key: "name", Label: "Full Name", Kind: KindText, ProfileKeys: []string{ProfileFirstName, ProfileLastName}, Required: true},
		{Key: "email", Label: "Email", Kind: KindText, ProfileKeys: []string{ProfileEmail}, Required: true},
		{Key: "phone", Label: "Phone", Kind: KindText, ProfileKeys: []string{ProfilePhone}},
		{Key: "resume", Label: "Resume or CV", Kind: KindFile, Required: true, File: true},
		{Key: "org", Label: "Current Company", Kind: KindText, ProfileKeys: []string{ProfileCompany}},
		{Key: "urls_linkedin", Label: "LinkedIn URL", Kind: KindText, ProfileKeys: []string{ProfileLinkedIn}},
	}
	return newFormDriver("lever", deps, fields,
		"submit", "Submit application",
		[]Indicator{
			{Selector: ".application-confirmation"},
			{Text: "application submitted"},
			{Text: "thanks for applying"},
		},
		[]Indicator{
			{Selector: ".application-error"},
			{Text: "something looks off"},
		},
	)
}

// NewIndeed builds the adapter for Indeed's hosted apply flow.
func NewIndeed(deps AdapterDeps) SiteAdapter {
	fields := []FieldSpec{
		{Key: "name", Label: "Full Name", Kind: KindText, ProfileKeys: []string{ProfileFirstName, ProfileLastName}, Required: true},
		{Key: "email", Label: "Email Address", Kind: KindText, ProfileKeys: []string{ProfileEmail}, Required: true},
		{Key: "phone", Label: "Phone Number", Kind: KindText, ProfileKeys: []string{ProfilePhone}},
		{Key: "resume", Label: "Upload Resume", Kind: KindFile, Required: true, File: true},
	}
	return newFormDriver("indeed", deps, fields,
		"continue", "Submit your application",
		[]Indicator{
			{Selector: ".ia-PostApply"},
			{Text: "your application has been submitted"},
		},
		[]Indicator{
			{Selector: ".ia-ErrorBanner"},
			{Text: "we couldn't submit your application"},
		},
	)
}

// workdayAdapter wraps the shared driver with the credentialed login step
// Workday tenants require before the form is reachable.
type workdayAdapter struct {
	*formDriver
}

// NewWorkday builds the adapter for Workday tenant career portals.
func NewWorkday(deps AdapterDeps) SiteAdapter {
	fields := []FieldSpec{
		{Key: "first_name", Label: "First Name", Kind: KindText, ProfileKeys: []string{ProfileFirstName}, Required: true},
		{Key: "last_name", Label: "Last Name", Kind: KindText, ProfileKeys: []string{ProfileLastName}, Required: true},
		{Key: "email", Label: "Email Address", Kind: KindText, ProfileKeys: []string{ProfileEmail}, Required: true},
		{Key: "phone", Label: "Phone Number", Kind: KindText, ProfileKeys: []string{ProfilePhone}},
		{Key: "resume", Label: "Resume/CV", Kind: KindFile, Required: true, File: true},
	}
	driver := newFormDriver("workday", deps, fields,
		"submit", "Submit",
		[]Indicator{
			{Selector: "[data-automation-id='applyFlowCompleteHeader']"},
			{Text: "you've successfully applied"},
		},
		[]Indicator{
			{Selector: "[data-automation-id='errorMessage']"},
		},
	)
	return &workdayAdapter{formDriver: driver}
}

// Login signs into the tenant account before form fill. Workday postings are
// unreachable without credentials, so their absence is a hard failure.
func (w *workdayAdapter) Login(ctx context.Context, page Page, task *JobApplicationTask) error {
	username := task.Credentials["username"]
	password := task.Credentials["password"]
	if username == "" || password == "" {
		return apperrors.NewLoginFailedError(w.name, fmt.Errorf("credentials required for workday tenant"))
	}

	for _, step := range []struct {
		key, label string
		kind       ElementKind
		value      string
	}{
		{"login_email", "Email Address", KindText, username},
		{"login_password", "Password", KindText, password},
	} {
		w.humanizer.BeforeInteraction(ctx, page)
		el := w.resolver.Resolve(ctx, page, step.key, step.label, step.kind)
		if el == nil {
			return apperrors.NewLoginFailedError(w.name, fmt.Errorf("%s field not found", step.key))
		}
		w.humanizer.Approach(ctx, page, el)
		if err := el.Fill(step.value); err != nil {
			return apperrors.NewLoginFailedError(w.name, err)
		}
	}

	w.humanizer.BeforeInteraction(ctx, page)
	btn := w.resolver.Resolve(ctx, page, "login_submit", "Sign In", KindButton)
	if btn == nil {
		return apperrors.NewLoginFailedError(w.name, fmt.Errorf("sign-in control not found"))
	}
	w.humanizer.Approach(ctx, page, btn)
	box, _ := btn.BoundingBox()
	x, y := w.humanizer.ClickOffset(box)
	if err := btn.Click(x, y); err != nil {
		return apperrors.NewLoginFailedError(w.name, err)
	}
	return nil
}
