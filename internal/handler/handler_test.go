package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTimeout = time.Second

func newCtx(method, target string, body io.Reader, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func jsonCtx(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	return newCtx(method, target, strings.NewReader(body), echo.MIMEApplicationJSON)
}

func withParam(c echo.Context, name, value string) echo.Context {
	c.SetParamNames(name)
	c.SetParamValues(value)
	return c
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorBody {
	t.Helper()
	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func TestHealthAndRoot(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/healthz", nil, "")
	require.NoError(t, Health(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())

	c, rec = newCtx(http.MethodGet, "/", nil, "")
	require.NoError(t, Root(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `"hello doctors portal"`, rec.Body.String())
}

func TestHTTPErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		kind   string
	}{
		{"not found", echo.ErrNotFound, http.StatusNotFound, KindNotFound},
		{"method", echo.ErrMethodNotAllowed, http.StatusMethodNotAllowed, KindMethodNotAllowed},
		{"too large", echo.ErrStatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge, KindTooLarge},
		{"unauthorized", echo.NewHTTPError(http.StatusUnauthorized, "invalid bearer token"), http.StatusUnauthorized, KindUnauthenticated},
		{"bad gateway", echo.NewHTTPError(http.StatusBadGateway, "identity verifier unavailable"), http.StatusBadGateway, KindUpstream},
		{"plain error", io.ErrUnexpectedEOF, http.StatusInternalServerError, KindInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newCtx(http.MethodGet, "/x", nil, "")
			HTTPErrorHandler(tt.err, c)
			assert.Equal(t, tt.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.kind, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestHTTPErrorHandlerHidesInternalMessage(t *testing.T) {
	c, rec := newCtx(http.MethodGet, "/x", nil, "")
	HTTPErrorHandler(io.ErrUnexpectedEOF, c)
	assert.Equal(t, "internal server error", decodeError(t, rec).Message)
}

func TestHTTPErrorHandlerHead(t *testing.T) {
	c, rec := newCtx(http.MethodHead, "/x", nil, "")
	HTTPErrorHandler(echo.ErrNotFound, c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestNormalizeDay(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Thu Oct 15 2026", "Thu Oct 15 2026"},
		{"2026-10-15", "Thu Oct 15 2026"},
		{"10/15/2026", "Thu Oct 15 2026"},
		{"Oct 15, 2026", "Thu Oct 15 2026"},
		{"2026-10-15T09:30:00Z", "Thu Oct 15 2026"},
		{"Thu Oct 15 2026 10:00:00 GMT+0600 (Bangladesh Standard Time)", "Thu Oct 15 2026"},
	}
	for _, tt := range tests {
		got, err := normalizeDay(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := normalizeDay("someday")
	assert.ErrorIs(t, err, errBadDate)
}
