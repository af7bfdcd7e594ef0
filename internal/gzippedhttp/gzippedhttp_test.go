package gzippedhttp

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gunzip(t *testing.T, compressed []byte) []byte {
	t.Helper()

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	require.NoError(t, err)
	defer zr.Close()

	plain, err := io.ReadAll(zr)
	require.NoError(t, err)

	return plain
}

func TestGzipResponse(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
	}{
		{
			name:       "success response",
			statusCode: http.StatusOK,
			body:       `{"message":"ok"}`,
		},
		{
			name:       "error response keeps the encoding declared",
			statusCode: http.StatusBadRequest,
			body:       `{"error":"invalid JSON body"}`,
		},
		{
			name:       "server failure response keeps the encoding declared",
			statusCode: http.StatusInternalServerError,
			body:       `{"error":"internal server error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := GzipResponse(http.HandlerFunc(
				func(response http.ResponseWriter, request *http.Request) {
					response.Header().Set("Content-Type", "application/json")
					response.WriteHeader(tt.statusCode)
					_, err := response.Write([]byte(tt.body))
					require.NoError(t, err)
				},
			))

			request := httptest.NewRequest(http.MethodGet, "/", nil)
			request.Header.Set("Accept-Encoding", "gzip")
			recorder := httptest.NewRecorder()

			handler.ServeHTTP(recorder, request)

			assert.Equal(t, tt.statusCode, recorder.Code)
			assert.Equal(t, "gzip", recorder.Header().Get("Content-Encoding"))
			assert.Equal(t, tt.body, string(gunzip(t, recorder.Body.Bytes())))
		})
	}
}

func TestGzipResponseSkippedWithoutAcceptEncoding(t *testing.T) {
	handler := GzipResponse(http.HandlerFunc(
		func(response http.ResponseWriter, request *http.Request) {
			response.WriteHeader(http.StatusNotFound)
			_, err := response.Write([]byte(`{"error":"Note not found"}`))
			require.NoError(t, err)
		},
	))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()

	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
	assert.Empty(t, recorder.Header().Get("Content-Encoding"))
	assert.Equal(t, `{"error":"Note not found"}`, recorder.Body.String())
}

func TestUngzipRequest(t *testing.T) {
	t.Run("gzip-encoded body is decompressed", func(t *testing.T) {
		var buf bytes.Buffer
		zw := gzip.NewWriter(&buf)
		_, err := zw.Write([]byte(`{"title":"T","content":"C"}`))
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		var received []byte
		handler := UngzipRequest(http.HandlerFunc(
			func(response http.ResponseWriter, request *http.Request) {
				received, err = io.ReadAll(request.Body)
				require.NoError(t, err)
			},
		))

		request := httptest.NewRequest(http.MethodPost, "/", &buf)
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, `{"title":"T","content":"C"}`, string(received))
	})

	t.Run("corrupt gzip body is a client error", func(t *testing.T) {
		handler := UngzipRequest(http.HandlerFunc(
			func(response http.ResponseWriter, request *http.Request) {
				t.Fatal("the handler must not be reached")
			},
		))

		request := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("not gzip at all"))
		request.Header.Set("Content-Encoding", "gzip")
		recorder := httptest.NewRecorder()

		handler.ServeHTTP(recorder, request)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
