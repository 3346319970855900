package ofx

import (
	"fmt"
	"slices"
	"strings"
)

// Capability is a message set a financial institution serves.
type Capability string

const (
	CapSignon        Capability = "SIGNON"
	CapBankStatement Capability = "BASTMT"
	CapCreditCard    Capability = "CCSTMT"
	CapInvestment    Capability = "INVSTMT"
)

// Site describes how to reach a financial institution's OFX server.
type Site struct {
	Name   string
	Caps   []Capability
	FID    string
	Org    string
	URL    string
	BankID string
}

// Has reports whether the site serves c.
func (s Site) Has(c Capability) bool {
	return slices.Contains(s.Caps, c)
}

// Sites is the directory of known institutions.
var Sites = []Site{
	{
		Name:   "SLFCU",
		Caps:   []Capability{CapSignon, CapBankStatement},
		FID:    "1001",
		Org:    "SLFCU",
		URL:    "https://www.cu-athome.org/scripts/serverext.dll",
		BankID: "307083911",
	},
	{
		Name: "Chase (Credit Card)",
		Caps: []Capability{CapSignon, CapCreditCard},
		FID:  "10898",
		Org:  "B1",
		URL:  "https://ofx.chase.com",
	},
	{
		Name:   "Los Alamos National Bank",
		Caps:   []Capability{CapSignon, CapBankStatement},
		FID:    "107001012",
		Org:    "LANB",
		URL:    "https://www.lanb.com/ofx/ofxrelay.dll",
		BankID: "107001012",
	},
}

// LookupSite finds a site by name, ignoring case.
func LookupSite(name string) (Site, error) {
	for _, s := range Sites {
		if strings.EqualFold(s.Name, name) {
			return s, nil
		}
	}
	names := make([]string, len(Sites))
	for i, s := range Sites {
		names[i] = s.Name
	}
	return Site{}, fmt.Errorf("unknown site %q, expected one of %s", name, strings.Join(names, ", "))
}
