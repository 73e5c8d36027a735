package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"
)

//go:embed templates/*
var templateFS embed.FS

func renderThumbnailAlert(alert ThumbnailRetriesExhausted) (string, string, error) {
	html, err := renderHTML("thumbnail_retries_exhausted.html", alert)
	if err != nil {
		return "", "", err
	}
	text, err := renderText("thumbnail_retries_exhausted.txt", alert)
	if err != nil {
		return "", "", err
	}
	return html, text, nil
}

func renderHTML(name string, data any) (string, error) {
	tmpl, err := htmltemplate.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

func renderText(name string, data any) (string, error) {
	tmpl, err := texttemplate.ParseFS(templateFS, "templates/"+name)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
