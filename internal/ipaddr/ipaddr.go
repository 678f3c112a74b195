// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package ipaddr

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidAddress is returned when the input does not decompose into
// exactly four dot-separated numeric octets. IPv6 is not supported.
var ErrInvalidAddress = errors.New("invalid IPv4 address")

// Encode converts a dotted IPv4 address into its integer form, used as the
// log table primary key: 256^3*o1 + 256^2*o2 + 256*o3 + o4.
//
// Octet range is NOT validated: "999.999.999.999" still encodes to a numeric
// (nonsensical) key. The result type is uint64 because out-of-range octets can
// overflow 32 bits. See EncodeStrict for the range-checked variant.
func Encode(dotted string) (uint64, error) {
	octets, err := splitOctets(dotted)
	if err != nil {
		return 0, err
	}

	return 16777216*octets[0] + 65536*octets[1] + 256*octets[2] + octets[3], nil
}

// EncodeStrict behaves like Encode but additionally rejects octets outside
// the 0-255 range, so the key always fits in 32 bits.
func EncodeStrict(dotted string) (uint64, error) {
	octets, err := splitOctets(dotted)
	if err != nil {
		return 0, err
	}

	for _, o := range octets {
		if o > 255 {
			return 0, ErrInvalidAddress
		}
	}

	return 16777216*octets[0] + 65536*octets[1] + 256*octets[2] + octets[3], nil
}

func splitOctets(dotted string) ([4]uint64, error) {
	var octets [4]uint64

	parts := strings.Split(dotted, ".")
	if len(parts) != 4 {
		return octets, ErrInvalidAddress
	}

	for i, part := range parts {
		val, err := strconv.ParseUint(part, 10, 32)
		if err != nil {
			return octets, ErrInvalidAddress
		}
		octets[i] = val
	}

	return octets, nil
}
