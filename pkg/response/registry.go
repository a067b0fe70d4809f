package response

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"

	"candidate-router/internal/entity"
	"candidate-router/pkg/intent"
	"candidate-router/pkg/livefacts"
)

// Rendered is the output of a verified rendering.
type Rendered struct {
	Content string
	// Empty is set when the facts were present but held nothing (no earnings,
	// no shifts...). The text says so honestly and a human should confirm.
	Empty bool
}

// TemplateRenderer turns an intent into text. Implementations must only state
// values they read from the supplied facts.
type TemplateRenderer interface {
	// RenderVerified returns ok=false when the facts carry nothing this
	// template can use (the relevant section was not fetched).
	RenderVerified(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool, error)
	// RenderUnverified is the "no data" variant.
	RenderUnverified(c entity.CandidateContext) (string, error)
	RequiresEscalation() bool
}

// Registry maps intents to renderers. Populated at start-up, read-only after.
type Registry struct {
	mu        sync.RWMutex
	renderers map[intent.ID]TemplateRenderer
}

func NewRegistry() *Registry {
	return &Registry{renderers: make(map[intent.ID]TemplateRenderer)}
}

func (r *Registry) Register(id intent.ID, renderer TemplateRenderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[id] = renderer
}

func (r *Registry) Lookup(id intent.ID) (TemplateRenderer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	renderer, ok := r.renderers[id]
	return renderer, ok
}

// templateData is what text templates may reference. Nothing else is exposed
// to them, so an unverified template cannot reach account values.
type templateData struct {
	Name string
}

func newTemplateData(c entity.CandidateContext) templateData {
	name := c.DisplayName
	if name == "" {
		name = "there"
	}
	return templateData{Name: name}
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Option("missingkey=error").Parse(text))
}

func execute(t *template.Template, data interface{}) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return buf.String(), nil
}

// staticTemplate has no verified variant.
type staticTemplate struct {
	text     *template.Template
	escalate bool
}

func newStaticTemplate(name, text string, escalate bool) *staticTemplate {
	return &staticTemplate{text: mustParse(name, text), escalate: escalate}
}

func (t *staticTemplate) RenderVerified(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool, error) {
	return Rendered{}, false, nil
}

func (t *staticTemplate) RenderUnverified(c entity.CandidateContext) (string, error) {
	return execute(t.text, newTemplateData(c))
}

func (t *staticTemplate) RequiresEscalation() bool {
	return t.escalate
}

// factTemplate pairs a verified renderer with its "no data" text.
type factTemplate struct {
	noData   *template.Template
	verified func(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool)
	escalate bool
}

func (t *factTemplate) RenderVerified(c entity.CandidateContext, facts *livefacts.Facts) (Rendered, bool, error) {
	if facts == nil {
		return Rendered{}, false, nil
	}
	r, ok := t.verified(c, facts)
	return r, ok, nil
}

func (t *factTemplate) RenderUnverified(c entity.CandidateContext) (string, error) {
	return execute(t.noData, newTemplateData(c))
}

func (t *factTemplate) RequiresEscalation() bool {
	return t.escalate
}
