// Package middleware provides HTTP middleware for the media index API:
// request logging in W3C Extended Log Format, Prometheus request metrics,
// and gzip response compression for JSON payloads.
package middleware
