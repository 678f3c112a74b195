package lookup

import (
	"net/http/httptest"
	"testing"
)

func TestClientAddressOverrideParam(t *testing.T) {
	r := httptest.NewRequest("GET", "/?gl_ip=9.9.9.9", nil)
	r.Header.Set("X-Forwarded-For", "1.1.1.1")
	r.RemoteAddr = "2.2.2.2:12345"

	ip, proxy := ClientAddress(r)
	if ip != "9.9.9.9" {
		t.Errorf("expected override address 9.9.9.9, got %s", ip)
	}
	if proxy {
		t.Error("override address must not be marked as proxy-derived")
	}
}

func TestClientAddressHeaderPrecedence(t *testing.T) {
	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name: "x-forwarded-for wins over all",
			headers: map[string]string{
				"X-Forwarded-For": "1.1.1.1",
				"X-Forwarded":     "2.2.2.2",
				"Forwarded-For":   "3.3.3.3",
				"Forwarded":       "4.4.4.4",
			},
			want: "1.1.1.1",
		},
		{
			name: "x-forwarded next",
			headers: map[string]string{
				"X-Forwarded":   "2.2.2.2",
				"Forwarded-For": "3.3.3.3",
				"Forwarded":     "4.4.4.4",
			},
			want: "2.2.2.2",
		},
		{
			name: "forwarded-for next",
			headers: map[string]string{
				"Forwarded-For": "3.3.3.3",
				"Forwarded":     "4.4.4.4",
			},
			want: "3.3.3.3",
		},
		{
			name:    "forwarded last",
			headers: map[string]string{"Forwarded": "4.4.4.4"},
			want:    "4.4.4.4",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = "5.5.5.5:443"
			for k, v := range tc.headers {
				r.Header.Set(k, v)
			}

			ip, proxy := ClientAddress(r)
			if ip != tc.want {
				t.Errorf("expected %s, got %s", tc.want, ip)
			}
			if !proxy {
				t.Error("header-derived address must be marked as proxy-derived")
			}
		})
	}
}

func TestClientAddressCommaChain(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("X-Forwarded-For", "10.0.0.1, 192.168.1.1, 172.16.0.1")

	ip, proxy := ClientAddress(r)
	if ip != "10.0.0.1" {
		t.Errorf("expected the first hop of the chain, got %s", ip)
	}
	if !proxy {
		t.Error("expected proxy flag for forwarded chain")
	}
}

func TestClientAddressRemoteAddrFallback(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7:54321"

	ip, proxy := ClientAddress(r)
	if ip != "203.0.113.7" {
		t.Errorf("expected port-stripped peer address, got %s", ip)
	}
	if proxy {
		t.Error("peer address must not be marked as proxy-derived")
	}
}

func TestClientAddressRemoteAddrWithoutPort(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "203.0.113.7"

	ip, _ := ClientAddress(r)
	if ip != "203.0.113.7" {
		t.Errorf("expected bare peer address, got %s", ip)
	}
}
