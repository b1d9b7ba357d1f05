// Package report renders an analysis as markdown, HTML, JSON or YAML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/epv-cli/internal/model"
)

// Format is an output format name.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
)

// ErrUnknownFormat is returned by ParseFormat and Render.
var ErrUnknownFormat = eris.New("report: unknown format")

// ParseFormat accepts a format name, case-insensitively. "md" aliases
// markdown and "yml" aliases yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "markdown", "md":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", eris.Wrapf(ErrUnknownFormat, "report: %q", s)
}

// ContentType returns the HTTP content type of a format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatYAML:
		return "application/yaml"
	default:
		return "text/markdown; charset=utf-8"
	}
}

// Render writes a in the requested format.
func Render(w io.Writer, f Format, a *model.Analysis) error {
	var (
		out []byte
		err error
	)
	switch f {
	case FormatMarkdown:
		out = []byte(Markdown(a))
	case FormatHTML:
		out, err = HTML(a)
	case FormatJSON:
		out, err = JSON(a)
	case FormatYAML:
		out, err = YAML(a)
	default:
		return eris.Wrapf(ErrUnknownFormat, "report: %q", f)
	}
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return eris.Wrap(err, "report: write")
	}
	return nil
}

// JSON encodes the analysis with indentation.
func JSON(a *model.Analysis) ([]byte, error) {
	out, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "report: encode json")
	}
	return append(out, '\n'), nil
}

// YAML encodes the analysis.
func YAML(a *model.Analysis) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return nil, eris.Wrap(err, "report: encode yaml")
	}
	if err := enc.Close(); err != nil {
		return nil, eris.Wrap(err, "report: encode yaml")
	}
	return buf.Bytes(), nil
}

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// HTML renders the markdown report as a standalone page.
func HTML(a *model.Analysis) ([]byte, error) {
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(a)), &body); err != nil {
		return nil, eris.Wrap(err, "report: render html")
	}

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>SaaS EPV Analysis: %s</title>\n", html.EscapeString(a.Ticker))
	buf.WriteString("</head>\n<body>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}
