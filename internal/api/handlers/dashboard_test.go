package handlers

import "testing"

func TestMaliciousPercentage(t *testing.T) {
	cases := []struct {
		total     int64
		malicious int64
		want      float64
	}{
		{0, 0, 0},
		{0, 5, 0},
		{100, 0, 0},
		{100, 25, 25},
		{3, 1, 33.33},
		{7, 2, 28.57},
		{4, 4, 100},
	}

	for _, tc := range cases {
		got := maliciousPercentage(tc.total, tc.malicious)
		if got != tc.want {
			t.Errorf("maliciousPercentage(%d, %d) = %v, want %v",
				tc.total, tc.malicious, got, tc.want)
		}
	}
}
