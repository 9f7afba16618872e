package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// ContentTypeJSON is sent with every JSON request body.
const ContentTypeJSON = "application/json"

// Body is a request payload. The caller picks the variant explicitly:
// JSON for plain objects, Multipart when binary file data is included.
type Body interface {
	// encode returns the serialized payload and the Content-Type header to send.
	encode() (io.Reader, string, error)
}

type jsonBody struct {
	value any
}

// JSON wraps v to be sent as an application/json body.
func JSON(v any) Body {
	return jsonBody{value: v}
}

func (b jsonBody) encode() (io.Reader, string, error) {
	data, err := json.Marshal(b.value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode json body: %w", err)
	}
	return bytes.NewReader(data), ContentTypeJSON, nil
}

// Field is a scalar multipart form field.
type Field struct {
	Name  string
	Value string
}

// File is a multipart file part. An empty ContentType falls back to
// application/octet-stream.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Content     io.Reader
}

// Multipart is a form field set that may carry files. It is never sent
// with the JSON content type; the encoder supplies the multipart boundary.
type Multipart struct {
	Fields []Field
	Files  []File
}

// Add appends a scalar field.
func (m *Multipart) Add(name, value string) {
	m.Fields = append(m.Fields, Field{Name: name, Value: value})
}

// AddFile appends a file part.
func (m *Multipart) AddFile(field, filename, contentType string, content io.Reader) {
	m.Files = append(m.Files, File{Field: field, Filename: filename, ContentType: contentType, Content: content})
}

func (m Multipart) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range m.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("failed to write field %q: %w", f.Name, err)
		}
	}

	for _, f := range m.Files {
		if f.Content == nil {
			return nil, "", fmt.Errorf("file part %q has no content", f.Field)
		}
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			escapeQuotes(f.Field), escapeQuotes(f.Filename)))
		h.Set("Content-Type", ct)

		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part %q: %w", f.Field, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("failed to copy file part %q: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
