package fetcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectCharset(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		contentType string
		want        string
	}{
		{"header wins", `<meta charset="utf-8">`, "text/html; charset=ISO-8859-1", "iso-8859-1"},
		{"meta charset", `<html><head><meta charset="windows-1252"></head>`, "", "windows-1252"},
		{"http-equiv", `<meta http-equiv="Content-Type" content="text/html; charset=iso-8859-1">`, "", "iso-8859-1"},
		{"undeclared", `<html><body>plain</body></html>`, "text/html", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCharset([]byte(tt.body), tt.contentType))
		})
	}
}

func TestDecodeCharset_Latin1(t *testing.T) {
	// "café" with é encoded as a single Latin-1 byte.
	body := []byte("<meta charset=\"iso-8859-1\"><p>caf\xe9</p>")
	out, err := DecodeCharset(body, "")
	require.NoError(t, err)
	assert.Contains(t, string(out), "café")
}

func TestDecodeCharset_UTF8Unchanged(t *testing.T) {
	body := []byte(`<meta charset="utf-8"><p>café</p>`)
	out, err := DecodeCharset(body, "")
	require.NoError(t, err)
	assert.Equal(t, body, out)
}

func TestDecodeCharset_Unknown(t *testing.T) {
	_, err := DecodeCharset([]byte("x"), "text/html; charset=klingon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported charset")
}
