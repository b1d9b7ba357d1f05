package fetcher

import (
	"bytes"
	"mime"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"
)

// metaCharset matches <meta charset="..."> and the http-equiv form.
var metaCharset = regexp.MustCompile(`(?i)<meta[^>]+charset\s*=\s*["']?([a-zA-Z0-9_\-:.]+)`)

// sniffLen bounds how far into a document we look for a meta charset.
const sniffLen = 2048

// DetectCharset returns the declared charset of an HTML body, preferring
// the Content-Type header over a <meta> tag. Empty means undeclared.
func DetectCharset(body []byte, contentType string) string {
	if contentType != "" {
		if _, params, err := mime.ParseMediaType(contentType); err == nil {
			if cs := params["charset"]; cs != "" {
				return strings.ToLower(cs)
			}
		}
	}
	head := body
	if len(head) > sniffLen {
		head = head[:sniffLen]
	}
	if m := metaCharset.FindSubmatch(head); m != nil {
		return strings.ToLower(string(m[1]))
	}
	return ""
}

// DecodeCharset converts body to UTF-8 when it declares another encoding.
// Undeclared and UTF-8 bodies are returned unchanged.
func DecodeCharset(body []byte, contentType string) ([]byte, error) {
	cs := DetectCharset(body, contentType)
	if cs == "" || cs == "utf-8" || cs == "utf8" {
		return body, nil
	}
	enc, err := htmlindex.Get(cs)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: unsupported charset %q", cs)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: decode charset %q", cs)
	}
	return bytes.TrimPrefix(out, []byte("\xef\xbb\xbf")), nil
}
