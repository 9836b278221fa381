package middleware

import "testing"

func TestResolveClientIP(t *testing.T) {
	tests := []struct {
		name         string
		forwardedFor string
		realIP       string
		remoteAddr   string
		want         string
	}{
		{"forwarded-for first hop", "1.2.3.4, 10.0.0.1, 10.0.0.2", "9.9.9.9", "127.0.0.1:5000", "1.2.3.4"},
		{"forwarded-for single", "1.2.3.4", "", "", "1.2.3.4"},
		{"forwarded-for with spaces", "  1.2.3.4 , 10.0.0.1", "", "", "1.2.3.4"},
		{"real-ip fallback", "", "9.9.9.9", "127.0.0.1:5000", "9.9.9.9"},
		{"remote addr fallback", "", "", "192.168.1.5:61234", "192.168.1.5"},
		{"remote addr without port", "", "", "192.168.1.5", "192.168.1.5"},
		{"nothing known", "", "", "", "unknown"},
		{"empty forwarded-for entry", " , 10.0.0.1", "9.9.9.9", "", "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveClientIP(tt.forwardedFor, tt.realIP, tt.remoteAddr)
			if got != tt.want {
				t.Errorf("ResolveClientIP(%q, %q, %q) = %q, want %q",
					tt.forwardedFor, tt.realIP, tt.remoteAddr, got, tt.want)
			}
		})
	}
}
