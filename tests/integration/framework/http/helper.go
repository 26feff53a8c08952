package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/souqly/auth-backend/pkg/errorx"
)

type Helper struct {
	handler chi.Router
}

func NewHelper(handler chi.Router) *Helper {
	return &Helper{handler: handler}
}

type Request struct {
	Path    string
	Method  string
	Body    any
	// RawBody is sent as is. It wins over Body.
	RawBody io.Reader
	Headers map[string]string
	Query   map[string]string
	Context context.Context
}

type Response struct {
	*httptest.ResponseRecorder
	t *testing.T
}

func (h *Helper) Do(t *testing.T, req Request) *Response {
	t.Helper()

	var body io.Reader
	if req.RawBody != nil {
		body = req.RawBody
	} else if req.Body != nil {
		jsonbytes, err := json.Marshal(req.Body)
		require.NoError(t, err)
		body = bytes.NewReader(jsonbytes)
	}

	httpReq := httptest.NewRequest(req.Method, req.Path, body)

	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	if req.Headers["Content-Type"] == "" {
		req.Headers["Content-Type"] = "application/json"
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	if req.Query != nil {
		q := httpReq.URL.Query()
		for k, v := range req.Query {
			q.Add(k, v)
		}
		httpReq.URL.RawQuery = q.Encode()
	}

	if req.Context != nil {
		httpReq = httpReq.WithContext(req.Context)
	}

	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, httpReq)

	return &Response{ResponseRecorder: w, t: t}
}

func (r *Response) AssertStatus(expected int) *Response {
	r.t.Helper()

	var resp map[string]any
	r.ParseJSON(&resp)
	message, ok := resp["message"].(string)
	if !ok {
		message = "no message in response"
	}

	assert.Equal(r.t, expected, r.Result().StatusCode, "unexpected status code, message: %s", message)
	return r
}

func (r *Response) AssertHeader(key, value string) *Response {
	r.t.Helper()

	actual := r.Header().Get(key)
	require.Equal(r.t, value, actual, fmt.Sprintf("expected header %s=%s, got %s", key, value, actual))
	return r
}

func (r *Response) AssertMessage(expected string) *Response {
	r.t.Helper()

	var resp map[string]any
	r.ParseJSON(&resp)
	message, ok := resp["message"].(string)
	require.True(r.t, ok, "expected message to be a string")
	assert.Equal(r.t, expected, message, "unexpected message in response")

	return r
}

func (r *Response) AssertContainsMessage(expected string) *Response {
	r.t.Helper()
	if expected == "" {
		return r
	}

	var resp map[string]any
	r.ParseJSON(&resp)
	message, ok := resp["message"].(string)
	require.True(r.t, ok, "expected message to be a string")
	assert.Contains(r.t, message, expected, "message does not contain expected text")

	return r
}

func (r *Response) AssertSuccess() *Response {
	r.t.Helper()
	r.AssertStatus(http.StatusOK)

	resp := r.JSON()
	assert.Equal(r.t, true, resp["success"], "expected success=true")

	return r
}

func (r *Response) AssertCreated() *Response {
	r.t.Helper()
	r.AssertStatus(http.StatusCreated)

	resp := r.JSON()
	assert.Equal(r.t, true, resp["success"], "expected success=true")

	return r
}

func (r *Response) AssertAccepted() *Response {
	r.t.Helper()
	return r.AssertStatus(http.StatusAccepted)
}

func (r *Response) AssertError(expectedStatus int, expectedMessage string) *Response {
	r.t.Helper()
	r.AssertStatus(expectedStatus)

	resp := r.JSON()
	assert.Equal(r.t, false, resp["success"], "expected success=false")

	return r.AssertContainsMessage(expectedMessage)
}

func (r *Response) AssertCode(expected errorx.Code) *Response {
	r.t.Helper()

	resp := r.JSON()
	assert.Equal(r.t, string(expected), resp["code"], "unexpected error code")

	return r
}

func (r *Response) AssertBadRequest() *Response {
	r.t.Helper()
	return r.AssertStatus(http.StatusBadRequest)
}

func (r *Response) AssertUnauthorized() *Response {
	r.t.Helper()
	return r.AssertStatus(http.StatusUnauthorized)
}

func (r *Response) AssertForbidden() *Response {
	r.t.Helper()
	return r.AssertStatus(http.StatusForbidden)
}

func (r *Response) AssertConflict() *Response {
	r.t.Helper()
	return r.AssertStatus(http.StatusConflict)
}

// JSON decodes the body into a generic map.
func (r *Response) JSON() map[string]any {
	r.t.Helper()

	var resp map[string]any
	r.ParseJSON(&resp)
	return resp
}

func (r *Response) ParseJSON(v any) *Response {
	r.t.Helper()

	err := json.Unmarshal(r.Body.Bytes(), v)
	require.NoError(r.t, err, "failed to parse JSON response: %s", r.Body.String())

	return r
}

type RequestBuilder struct {
	req Request
}

func NewRequest(method, path string) *RequestBuilder {
	return &RequestBuilder{
		req: Request{
			Path:    path,
			Method:  method,
			Body:    nil,
			Headers: make(map[string]string),
			Query:   make(map[string]string),
			Context: nil,
		},
	}
}

func (b *RequestBuilder) WithContext(ctx context.Context) *RequestBuilder {
	b.req.Context = ctx
	return b
}

func (b *RequestBuilder) WithJSON(body any) *RequestBuilder {
	b.req.Body = body
	return b
}

func (b *RequestBuilder) WithHeader(key, value string) *RequestBuilder {
	if b.req.Headers == nil {
		b.req.Headers = make(map[string]string)
	}
	b.req.Headers[key] = value
	return b
}

func (b *RequestBuilder) WithQuery(key, value string) *RequestBuilder {
	if b.req.Query == nil {
		b.req.Query = make(map[string]string)
	}
	b.req.Query[key] = value
	return b
}

func (b *RequestBuilder) WithBearer(token string) *RequestBuilder {
	return b.WithHeader("Authorization", "Bearer "+token)
}

func (b *RequestBuilder) WithMultipart(form *MultipartFormBuilder) *RequestBuilder {
	body, contentType := form.Build()
	b.req.RawBody = body
	return b.WithHeader("Content-Type", contentType)
}

func (b *RequestBuilder) Build() Request {
	return b.req
}
