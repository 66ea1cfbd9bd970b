package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
)

const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Jane Doe</w:t></w:r></w:p>
<w:p><w:r><w:t>Senior Go Engineer</w:t></w:r></w:p>
</w:body>
</w:document>`

const relsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry: %v", err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write zip entry: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func buildDocx(t *testing.T) []byte {
	return buildZip(t, map[string]string{
		"word/document.xml":            documentXML,
		"word/_rels/document.xml.rels": relsXML,
	})
}

func TestFromBytesDocx(t *testing.T) {
	text, err := FromBytes(context.Background(), buildDocx(t), MimeDOCX, "resume.docx")
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if text != "Jane Doe\nSenior Go Engineer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestDetectType(t *testing.T) {
	docxData := buildDocx(t)
	plainZip := buildZip(t, map[string]string{"notes.txt": "hello"})
	cases := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{name: "declared pdf", mime: "application/pdf; charset=binary", data: nil, want: MimePDF},
		{name: "zip holding docx", mime: "application/zip", fileName: "cv.docx", data: docxData, want: MimeDOCX},
		{name: "plain zip", mime: "application/zip", fileName: "notes.zip", data: plainZip, want: "application/zip"},
		{name: "octet stream pdf magic", mime: "application/octet-stream", data: []byte("%PDF-1.7\n"), want: MimePDF},
		{name: "extension fallback", mime: "", fileName: "cv.PDF", data: []byte("??"), want: MimePDF},
		{name: "text", mime: "text/plain", fileName: "cv.txt", data: []byte("hi"), want: "text/plain"},
	}
	for _, tc := range cases {
		if got := DetectType(tc.mime, tc.fileName, tc.data); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestFromBytesErrors(t *testing.T) {
	ctx := context.Background()
	if _, err := FromBytes(ctx, []byte("hello"), "text/plain", "cv.txt"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
	if _, err := FromBytes(ctx, buildZip(t, map[string]string{"notes.txt": "x"}), "application/zip", "notes.zip"); !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType for plain zip, got %v", err)
	}
	if _, err := FromBytes(ctx, []byte("%PDF-1.4 truncated garbage"), MimePDF, "cv.pdf"); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable for broken pdf, got %v", err)
	}
	if _, err := FromBytes(ctx, []byte("not a zip"), MimeDOCX, "cv.docx"); !errors.Is(err, ErrUnreadable) {
		t.Fatalf("expected ErrUnreadable for broken docx, got %v", err)
	}
}

func uploadRequest(t *testing.T, fileName, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/extract", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func setupExtractRouter(maxBytes int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(maxBytes).RegisterRoutes(r.Group("/api"))
	return r
}

func TestExtractHandler(t *testing.T) {
	r := setupExtractRouter(1 << 20)

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, uploadRequest(t, "resume.docx", MimeDOCX, buildDocx(t)))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var body struct {
		Text       string `json:"text"`
		Characters int    `json:"characters"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Text != "Jane Doe\nSenior Go Engineer" || body.Characters != len(body.Text) {
		t.Fatalf("unexpected body: %+v", body)
	}

	cases := []struct {
		name string
		req  *http.Request
		want int
	}{
		{name: "unsupported", req: uploadRequest(t, "cv.txt", "text/plain", []byte("hello")), want: http.StatusUnsupportedMediaType},
		{name: "unreadable", req: uploadRequest(t, "cv.pdf", MimePDF, []byte("%PDF-garbage")), want: http.StatusUnprocessableEntity},
		{name: "missing file", req: httptest.NewRequest(http.MethodPost, "/api/extract", nil), want: http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, tc.req)
		if resp.Code != tc.want {
			t.Fatalf("%s: expected %d, got %d", tc.name, tc.want, resp.Code)
		}
	}
}

func TestExtractHandlerRejectsOversizedUpload(t *testing.T) {
	r := setupExtractRouter(16)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, uploadRequest(t, "resume.docx", MimeDOCX, buildDocx(t)))
	if resp.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.Code)
	}
}
