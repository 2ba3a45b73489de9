package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Response is a completed Data API response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// Indent returns the body re-indented with two spaces. Key order and number
// literals are kept as the server sent them.
func (r *Response) Indent() (string, error) {
	body := bytes.TrimSpace(r.Body)
	if len(body) == 0 {
		return "", ErrEmptyBody
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return "", fmt.Errorf("decode response body: %w", err)
	}
	return buf.String(), nil
}

// rawDecoder hands the body to the caller untouched.
type rawDecoder struct{}

// Decode implements sling.ResponseDecoder. v must be a *[]byte.
func (rawDecoder) Decode(resp *http.Response, v interface{}) error {
	dst, ok := v.(*[]byte)
	if !ok {
		return fmt.Errorf("raw decoder: unsupported target %T", v)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	*dst = body
	return nil
}
