// Package gzippedhttp provides middleware for transparent gzip handling:
// compressing responses for clients that accept it and decompressing
// request bodies that arrive gzip-encoded.
package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"
)

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
		return w
	},
}

type gzipReader struct {
	body io.ReadCloser
	zr   *gzip.Reader
}

func newGzipReader(body io.ReadCloser) (*gzipReader, error) {
	zr, err := gzip.NewReader(body)
	if err != nil {
		return nil, err
	}

	return &gzipReader{body: body, zr: zr}, nil
}

func (g *gzipReader) Read(p []byte) (int, error) {
	return g.zr.Read(p)
}

func (g *gzipReader) Close() error {
	if err := g.body.Close(); err != nil {
		return err
	}
	return g.zr.Close()
}

type gzipResponseWriter struct {
	http.ResponseWriter
	zw *gzip.Writer
}

func newGzipResponseWriter(w http.ResponseWriter) *gzipResponseWriter {
	zw := gzipWriterPool.Get().(*gzip.Writer)
	zw.Reset(w)

	// every byte written through this wrapper is compressed, error
	// responses included, so the encoding must be declared up front
	w.Header().Set("Content-Encoding", "gzip")

	return &gzipResponseWriter{ResponseWriter: w, zw: zw}
}

func (g *gzipResponseWriter) Write(p []byte) (int, error) {
	return g.zw.Write(p)
}

func (g *gzipResponseWriter) close() error {
	err := g.zw.Close()
	gzipWriterPool.Put(g.zw)

	return err
}

// GzipResponse compresses the response body when the client declares
// gzip in its Accept-Encoding header.
func GzipResponse(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if !strings.Contains(request.Header.Get("Accept-Encoding"), "gzip") {
			h.ServeHTTP(response, request)
			return
		}

		compressed := newGzipResponseWriter(response)
		defer compressed.close()

		h.ServeHTTP(compressed, request)
	}

	return http.HandlerFunc(middleware)
}

// UngzipRequest replaces a gzip-encoded request body with a decompressing
// reader before passing the request down the chain.
func UngzipRequest(h http.Handler) http.Handler {
	middleware := func(response http.ResponseWriter, request *http.Request) {
		if strings.Contains(request.Header.Get("Content-Encoding"), "gzip") {
			decompressed, err := newGzipReader(request.Body)
			if err != nil {
				response.WriteHeader(http.StatusBadRequest)
				return
			}
			request.Body = decompressed
			defer decompressed.Close()
		}

		h.ServeHTTP(response, request)
	}

	return http.HandlerFunc(middleware)
}
