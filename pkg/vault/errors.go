package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/samvad-hq/vault-rest/pkg/rest"
)

const maxSnippetLen = 256

// ErrEmptyPath is returned when an operation is given no secret path.
var ErrEmptyPath = errors.New("vault: secret path is empty")

// ResponseError is returned when the server answers with a non-success status.
type ResponseError struct {
	Operation string
	Path      string
	Status    int
	Errors    []string
}

func (e *ResponseError) Error() string {
	msg := strings.Join(e.Errors, "; ")
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("vault %s %s: status %d: %s", e.Operation, e.Path, e.Status, msg)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

func newResponseError(op, path string, resp *rest.Response) *ResponseError {
	return &ResponseError{
		Operation: op,
		Path:      path,
		Status:    resp.Status(),
		Errors:    errorMessages(resp),
	}
}

// errorMessages extracts human readable messages from an error body. The
// server answers JSON, but proxies in front of it tend to answer HTML.
func errorMessages(resp *rest.Response) []string {
	body := resp.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	switch resp.MimeType() {
	case "application/json":
		var payload struct {
			Errors []string `json:"errors"`
		}
		if err := json.Unmarshal(body, &payload); err == nil && len(payload.Errors) > 0 {
			return payload.Errors
		}
	case "text/html":
		if s := summarizeHTML(body); s != "" {
			return []string{s}
		}
	}
	return []string{snippet(string(body))}
}

func summarizeHTML(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return snippet(strings.Join(strings.Fields(doc.Find("body").Text()), " "))
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
