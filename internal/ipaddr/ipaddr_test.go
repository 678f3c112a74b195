package ipaddr

import (
	"errors"
	"testing"
)

func TestEncode_ValidAddresses(t *testing.T) {
	cases := []struct {
		dotted   string
		expected uint64
	}{
		{"0.0.0.0", 0},
		{"0.0.0.1", 1},
		{"127.0.0.1", 2130706433},
		{"8.8.8.8", 134744072},
		{"192.168.1.100", 3232235876},
		{"255.255.255.255", 4294967295},
	}

	for _, tc := range cases {
		key, err := Encode(tc.dotted)
		if err != nil {
			t.Errorf("Encode(%q) returned error: %v", tc.dotted, err)
			continue
		}
		if key != tc.expected {
			t.Errorf("Encode(%q) = %d, expected %d", tc.dotted, key, tc.expected)
		}
	}
}

func TestEncode_OutOfRangeOctetsStillEncode(t *testing.T) {
	// Range is deliberately not validated; the key just has to be numeric.
	key, err := Encode("999.999.999.999")
	if err != nil {
		t.Fatalf("Encode should accept out-of-range octets: %v", err)
	}

	expected := uint64(16777216*999 + 65536*999 + 256*999 + 999)
	if key != expected {
		t.Errorf("Encode(\"999.999.999.999\") = %d, expected %d", key, expected)
	}
}

func TestEncode_InvalidAddresses(t *testing.T) {
	cases := []string{
		"",
		"127.0.0",
		"127.0.0.0.1",
		"not.an.ip.address",
		"2001:db8::1",
		"1.2.3.",
		"192.168.1.-1",
	}

	for _, dotted := range cases {
		if _, err := Encode(dotted); !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("Encode(%q) expected ErrInvalidAddress, got %v", dotted, err)
		}
	}
}

func TestEncodeStrict_RejectsOutOfRange(t *testing.T) {
	if _, err := EncodeStrict("999.999.999.999"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("EncodeStrict expected ErrInvalidAddress for out-of-range octets, got %v", err)
	}

	key, err := EncodeStrict("10.0.0.1")
	if err != nil {
		t.Fatalf("EncodeStrict rejected a valid address: %v", err)
	}
	if key != 167772161 {
		t.Errorf("EncodeStrict(\"10.0.0.1\") = %d, expected 167772161", key)
	}
}
