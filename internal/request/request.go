package request

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const deviceContextKey contextKey = "device"

// Device identifies the authenticated device behind a request
type Device struct {
	ID   string
	Name string
}

// ClientIP extracts the client IP from the request, respecting X-Forwarded-For and X-Real-IP.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	return r.RemoteAddr
}

// WithDevice returns a context with the device attached.
func WithDevice(ctx context.Context, device *Device) context.Context {
	return context.WithValue(ctx, deviceContextKey, device)
}

// DeviceFromContext returns the device from the request context, or nil if missing or wrong type.
func DeviceFromContext(r *http.Request) *Device {
	d, _ := r.Context().Value(deviceContextKey).(*Device)
	return d
}
