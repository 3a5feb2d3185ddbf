package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// compressMinSize is the smallest response worth compressing.
const compressMinSize = 1024

// compressibleTypes are the content types the API actually serves that
// benefit from gzip.
var compressibleTypes = []string{
	"application/json",
	"text/plain",
	"text/html",
}

var gzipWriterPool = sync.Pool{
	New: func() interface{} {
		w, _ := gzip.NewWriterLevel(io.Discard, gzip.DefaultCompression)
		return w
	},
}

// gzipResponseWriter buffers the response until it knows whether the body
// is large and compressible enough to gzip.
type gzipResponseWriter struct {
	http.ResponseWriter
	gz          *gzip.Writer
	buf         []byte
	statusCode  int
	wroteHeader bool
	compressing bool
}

func (rw *gzipResponseWriter) WriteHeader(code int) {
	rw.statusCode = code
}

func (rw *gzipResponseWriter) Write(b []byte) (int, error) {
	if rw.compressing {
		return rw.gz.Write(b)
	}
	rw.buf = append(rw.buf, b...)
	if len(rw.buf) >= compressMinSize {
		if err := rw.startCompressing(); err != nil {
			return 0, err
		}
	}
	return len(b), nil
}

func (rw *gzipResponseWriter) startCompressing() error {
	if !isCompressible(rw.Header().Get("Content-Type")) {
		return rw.flushPlain()
	}
	rw.Header().Set("Content-Encoding", "gzip")
	rw.Header().Del("Content-Length")
	rw.writeHeaderOnce()

	rw.gz = gzipWriterPool.Get().(*gzip.Writer)
	rw.gz.Reset(rw.ResponseWriter)
	rw.compressing = true
	if len(rw.buf) > 0 {
		_, err := rw.gz.Write(rw.buf)
		rw.buf = nil
		return err
	}
	return nil
}

// flushPlain abandons compression and writes the buffer through untouched.
func (rw *gzipResponseWriter) flushPlain() error {
	rw.writeHeaderOnce()
	if len(rw.buf) > 0 {
		_, err := rw.ResponseWriter.Write(rw.buf)
		rw.buf = nil
		return err
	}
	return nil
}

func (rw *gzipResponseWriter) writeHeaderOnce() {
	if !rw.wroteHeader {
		rw.wroteHeader = true
		rw.ResponseWriter.WriteHeader(rw.statusCode)
	}
}

// close finishes whichever path the response took.
func (rw *gzipResponseWriter) close() error {
	if rw.compressing {
		err := rw.gz.Close()
		gzipWriterPool.Put(rw.gz)
		return err
	}
	if !rw.wroteHeader && len(rw.buf) < compressMinSize {
		// Small response: send it uncompressed with an accurate length.
		if len(rw.buf) > 0 && rw.Header().Get("Content-Length") == "" {
			rw.Header().Set("Content-Length", strconv.Itoa(len(rw.buf)))
		}
	}
	return rw.flushPlain()
}

func isCompressible(contentType string) bool {
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = contentType[:idx]
	}
	contentType = strings.TrimSpace(contentType)
	for _, t := range compressibleTypes {
		if contentType == t {
			return true
		}
	}
	return false
}

// Compression gzips large compressible responses for clients that accept it.
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			next.ServeHTTP(w, r)
			return
		}
		wrapped := &gzipResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		wrapped.close() //nolint:errcheck
	})
}
