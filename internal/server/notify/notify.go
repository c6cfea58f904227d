// Package notify delivers best-effort templated mails: it resolves a
// localised template, renders it against a data context and hands the
// result to a mail transport.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/shopaccounts/internal/common"
	"github.com/dmitrijs2005/shopaccounts/internal/server/models"
)

// Stage names the step of a notification that failed.
type Stage string

const (
	StageTemplate Stage = "template"
	StageRender   Stage = "render"
	StageSend     Stage = "send"
)

// Error wraps the cause of a failed notification with its stage.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("notification %s: %v", e.Stage, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// TemplateSource looks up a template by exact name and locale.
type TemplateSource interface {
	FindByNameAndLocale(ctx context.Context, name, locale string) (*models.MailTemplate, error)
}

// Renderer turns a template body and a data context into text.
type Renderer interface {
	Render(name, body string, data any) (string, error)
}

// Sender transports a rendered mail.
type Sender interface {
	Send(ctx context.Context, subject, to, body string) error
}

// Notifier combines template lookup, rendering and sending.
type Notifier struct {
	templates     TemplateSource
	renderer      Renderer
	sender        Sender
	defaultLocale string
}

func NewNotifier(templates TemplateSource, renderer Renderer, sender Sender, defaultLocale string) *Notifier {
	if defaultLocale == "" {
		defaultLocale = common.DefaultLocale
	}
	return &Notifier{
		templates:     templates,
		renderer:      renderer,
		sender:        sender,
		defaultLocale: defaultLocale,
	}
}

// Notify sends the template named name, in the best locale available for
// locale, to the address to. Failures are returned as *Error.
func (n *Notifier) Notify(ctx context.Context, name, locale, to string, data any) error {
	tpl, err := n.resolve(ctx, name, locale)
	if err != nil {
		return &Error{Stage: StageTemplate, Err: err}
	}

	body, err := n.renderer.Render(name, tpl.Content, data)
	if err != nil {
		return &Error{Stage: StageRender, Err: err}
	}

	if err := n.sender.Send(ctx, tpl.Subject, to, body); err != nil {
		return &Error{Stage: StageSend, Err: err}
	}
	return nil
}

func (n *Notifier) resolve(ctx context.Context, name, locale string) (*models.MailTemplate, error) {
	for _, candidate := range LocaleCandidates(locale, n.defaultLocale) {
		tpl, err := n.templates.FindByNameAndLocale(ctx, name, candidate)
		if err == nil {
			return tpl, nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("template %q for locale %q: %w", name, locale, common.ErrorNotFound)
}
