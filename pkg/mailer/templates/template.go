// Package templates renders transactional messages from html/template and
// text/template sources bound to a typed context.
package templates

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"
)

// Prepare validates and canonicalizes a context before rendering.
type Prepare[T any] func(T) (T, error)

type TypedTemplate[T any] struct {
	Name    string
	html    *htmltemplate.Template
	text    *texttemplate.Template
	prepare Prepare[T]
}

// New parses both bodies. textSrc may be empty, in which case Render
// returns an empty plain-text part.
func New[T any](name, htmlSrc, textSrc string, prepare Prepare[T]) (*TypedTemplate[T], error) {
	h, err := htmltemplate.New(name).Parse(htmlSrc)
	if err != nil {
		return nil, err
	}
	t := &TypedTemplate[T]{Name: name, html: h, prepare: prepare}
	if textSrc != "" {
		if t.text, err = texttemplate.New(name).Parse(textSrc); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Render returns the HTML and plain-text bodies.
func (t *TypedTemplate[T]) Render(data T) (string, string, error) {
	if t.prepare != nil {
		var err error
		if data, err = t.prepare(data); err != nil {
			return "", "", err
		}
	}

	var html bytes.Buffer
	if err := t.html.Execute(&html, data); err != nil {
		return "", "", err
	}
	if t.text == nil {
		return html.String(), "", nil
	}
	var text bytes.Buffer
	if err := t.text.Execute(&text, data); err != nil {
		return "", "", err
	}
	return html.String(), text.String(), nil
}
