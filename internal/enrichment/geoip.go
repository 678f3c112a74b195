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
package enrichment

import (
	"net"

	"greylog/internal/greynoise"

	"github.com/oschwald/geoip2-golang"
	"github.com/pterm/pterm"
)

// GeoIPEnricher fills in verdict metadata from local MaxMind databases when
// the reputation API returned it empty. Both databases are optional; the
// enricher degrades to a no-op when neither is available.
type GeoIPEnricher struct {
	countryDB *geoip2.Reader
	asnDB     *geoip2.Reader
	logger    *pterm.Logger
	enabled   bool
}

// NewGeoIPEnricher creates a GeoIP enricher from the given database paths.
// Works with any combination available.
func NewGeoIPEnricher(countryDBPath, asnDBPath string, logger *pterm.Logger) (*GeoIPEnricher, error) {
	enricher := &GeoIPEnricher{
		logger:  logger,
		enabled: false,
	}

	if countryDBPath != "" {
		countryDB, err := geoip2.Open(countryDBPath)
		if err != nil {
			logger.Warn("GeoIP Country database not available",
				logger.Args("path", countryDBPath, "error", err))
		} else {
			enricher.countryDB = countryDB
			enricher.enabled = true
			logger.Info("Loaded GeoIP Country database", logger.Args("path", countryDBPath))
		}
	}

	if asnDBPath != "" {
		asnDB, err := geoip2.Open(asnDBPath)
		if err != nil {
			logger.Warn("GeoIP ASN database not available",
				logger.Args("path", asnDBPath, "error", err))
		} else {
			enricher.asnDB = asnDB
			enricher.enabled = true
			logger.Info("Loaded GeoIP ASN database", logger.Args("path", asnDBPath))
		}
	}

	if !enricher.enabled {
		logger.Debug("GeoIP enrichment disabled - no databases available")
	}

	return enricher, nil
}

// Enrich fills Country and Org on the verdict when the API metadata came
// back empty. Verdict fields that already carry API data are never
// overwritten.
func (g *GeoIPEnricher) Enrich(verdict *greynoise.Verdict, ipAddress string) {
	if !g.enabled || verdict == nil {
		return
	}
	if verdict.Country != "" && verdict.Org != "" {
		return
	}

	ip := net.ParseIP(ipAddress)
	if ip == nil {
		g.logger.Debug("Invalid IP address for GeoIP lookup", g.logger.Args("ip", ipAddress))
		return
	}

	if verdict.Country == "" && g.countryDB != nil {
		record, err := g.countryDB.Country(ip)
		if err == nil {
			verdict.Country = record.Country.IsoCode
			g.logger.Debug("GeoIP Country lookup successful",
				g.logger.Args("ip", ipAddress, "country", verdict.Country))
		} else {
			g.logger.Debug("GeoIP Country lookup failed", g.logger.Args("ip", ipAddress, "error", err))
		}
	}

	if verdict.Org == "" && g.asnDB != nil {
		record, err := g.asnDB.ASN(ip)
		if err == nil {
			verdict.Org = record.AutonomousSystemOrganization
			g.logger.Debug("GeoIP ASN lookup successful",
				g.logger.Args("ip", ipAddress, "org", verdict.Org))
		} else {
			g.logger.Debug("GeoIP ASN lookup failed", g.logger.Args("ip", ipAddress, "error", err))
		}
	}
}

// Close releases the underlying database handles
func (g *GeoIPEnricher) Close() {
	if g.countryDB != nil {
		g.countryDB.Close()
	}
	if g.asnDB != nil {
		g.asnDB.Close()
	}
}
