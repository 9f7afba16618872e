package api

import (
	"io"
	"math"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONBody(t *testing.T) {
	r, ct, err := JSON(map[string]any{"sleep_hours": 7.5, "weather": "Sunny"}).encode()
	require.NoError(t, err)
	assert.Equal(t, ContentTypeJSON, ct)

	data, _ := io.ReadAll(r)
	assert.JSONEq(t, `{"sleep_hours":7.5,"weather":"Sunny"}`, string(data))
}

func TestJSONBody_Unencodable(t *testing.T) {
	_, _, err := JSON(math.Inf(1)).encode()
	assert.ErrorContains(t, err, "failed to encode json body")
}

type formPart struct {
	filename    string
	contentType string
	body        string
}

func readParts(t *testing.T, r io.Reader, contentType string) map[string]formPart {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)
	require.Equal(t, "multipart/form-data", mediaType)

	parts := map[string]formPart{}
	mr := multipart.NewReader(r, params["boundary"])
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		data, err := io.ReadAll(p)
		require.NoError(t, err)
		parts[p.FormName()] = formPart{
			filename:    p.FileName(),
			contentType: p.Header.Get("Content-Type"),
			body:        string(data),
		}
	}
	return parts
}

func TestMultipartBody(t *testing.T) {
	var body Multipart
	body.Add("full_name", "Ada")
	body.Add("gender", "Female")
	body.AddFile("file", "avatar.jpg", "image/jpeg", strings.NewReader("jpeg-bytes"))

	r, ct, err := body.encode()
	require.NoError(t, err)
	assert.NotContains(t, ct, ContentTypeJSON)

	parts := readParts(t, r, ct)
	require.Len(t, parts, 3)
	assert.Equal(t, "Ada", parts["full_name"].body)
	assert.Equal(t, "Female", parts["gender"].body)

	file := parts["file"]
	assert.Equal(t, "avatar.jpg", file.filename)
	assert.Equal(t, "image/jpeg", file.contentType)
	assert.Equal(t, "jpeg-bytes", file.body)
}

func TestMultipartBody_DefaultFileContentType(t *testing.T) {
	body := Multipart{Files: []File{{Field: "file", Filename: `we"ird.bin`, Content: strings.NewReader("x")}}}

	r, ct, err := body.encode()
	require.NoError(t, err)

	parts := readParts(t, r, ct)
	assert.Equal(t, "application/octet-stream", parts["file"].contentType)
	assert.Equal(t, `we"ird.bin`, parts["file"].filename)
}

func TestMultipartBody_FieldsOnly(t *testing.T) {
	body := Multipart{Fields: []Field{{Name: "full_name", Value: "Ada"}}}

	_, ct, err := body.encode()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ct, "multipart/form-data"))
}

func TestMultipartBody_NilContent(t *testing.T) {
	body := Multipart{Files: []File{{Field: "file", Filename: "a.png"}}}

	_, _, err := body.encode()
	assert.ErrorContains(t, err, `file part "file" has no content`)
}
