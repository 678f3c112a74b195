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
package models

import (
	"time"
)

// IPLog stores the last reputation verdict for each distinct visitor IP.
// The primary key is the IPv4 address encoded as an integer; a repeat visit
// never creates a second row, it only increments Hits and bumps UpdatedAt.
type IPLog struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	IPAddress string `gorm:"not null"`

	// True when the address came from a forwarding header rather than the
	// direct connection peer
	IsProxyAddress bool `gorm:"not null;default:false"`

	// Verdict fields from the reputation API. Indexes live in the
	// indexes package, not in tags.
	Seen           bool   `gorm:"not null;default:false"`
	Classification string
	CVE            string // comma-joined CVE identifiers
	Country        string
	Org            string
	RawResponse    string

	Hits uint32 `gorm:"not null;default:1"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (IPLog) TableName() string {
	return "ip_log"
}
