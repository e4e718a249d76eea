package ipgeo

import "testing"

func TestCountryCodeLocal(t *testing.T) {
	// Local IPs never reach the MMDB reader, so a nil reader is fine here.
	c := &Checker{}
	tests := []struct {
		ip   string
		want string
	}{
		{"127.0.0.1", "local"},
		{"::1", "local"},
		{"10.0.0.5", "local"},
		{"192.168.1.1", "local"},
		{"0.0.0.0", "local"},
		{"fe80::1", "local"},
		{"not-an-ip", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := c.CountryCode(tt.ip); got != tt.want {
				t.Errorf("CountryCode(%q) = %q, want %q", tt.ip, got, tt.want)
			}
		})
	}
}
