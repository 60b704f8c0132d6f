// Package media maps logical content kinds to MIME strings and converts
// request and response bodies between typed Go values and wire content.
//
// The content kind of a call is declared by the caller, never sniffed from
// response headers, so the conversion chosen for a payload is static.
package media

import (
	"mime"
	"strings"

	"github.com/milan604/restkit/pkg/apperr"
)

// Type is a closed set of supported content kinds.
type Type int

const (
	JSON Type = iota
	FormURLEncoded
	PlainText
	XML
	PDF
	JPEG
	PNG
	OctetStream
	HTML
	CSV
)

var mimeTypes = map[Type]string{
	JSON:           "application/json",
	FormURLEncoded: "application/x-www-form-urlencoded",
	PlainText:      "text/plain",
	XML:            "application/xml",
	PDF:            "application/pdf",
	JPEG:           "image/jpeg",
	PNG:            "image/png",
	OctetStream:    "application/octet-stream",
	HTML:           "text/html",
	CSV:            "text/csv",
}

var names = map[Type]string{
	JSON:           "json",
	FormURLEncoded: "form",
	PlainText:      "text",
	XML:            "xml",
	PDF:            "pdf",
	JPEG:           "jpeg",
	PNG:            "png",
	OctetStream:    "octet-stream",
	HTML:           "html",
	CSV:            "csv",
}

// MimeOf returns the MIME string for t.
func MimeOf(t Type) (string, error) {
	m, ok := mimeTypes[t]
	if !ok {
		return "", apperr.Newf(apperr.ErrorCodeUnsupportedMediaType, "media type %d has no mime mapping", int(t))
	}
	return m, nil
}

// String returns the short name of t, e.g. "json".
func (t Type) String() string {
	if n, ok := names[t]; ok {
		return n
	}
	return "unknown"
}

// IsBinary reports whether t carries raw bytes rather than text.
func (t Type) IsBinary() bool {
	return t == JPEG || t == PNG || t == OctetStream
}

// Parse resolves a MIME string (parameters such as charset are ignored) or a
// short name as returned by String.
func Parse(s string) (Type, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, n := range names {
		if n == s {
			return t, nil
		}
	}
	if mt, _, err := mime.ParseMediaType(s); err == nil {
		s = mt
	}
	for t, m := range mimeTypes {
		if m == s {
			return t, nil
		}
	}
	return 0, apperr.Newf(apperr.ErrorCodeUnsupportedMediaType, "unsupported media type %q", s)
}
