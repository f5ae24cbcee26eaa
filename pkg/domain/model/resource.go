package model

import (
	"strings"
	"time"

	"github.com/haven-lab/lifeline/pkg/domain/types"
)

// DefaultCountry is the country resources belong to unless stated
// otherwise. A resource in the default country with no region set is a
// national-level resource and is eligible as a fallback for any region.
const DefaultCountry = "US"

// Resource is a static or semi-static support channel such as a
// helpline or chat service, independent of any specific human.
type Resource struct {
	ID               types.ResourceID
	Name             string
	ChannelType      types.ConnectionChannel
	CrisisCategories []types.CrisisType
	Phone            string
	WhatsApp         string
	Email            string
	Website          string
	Available24x7    bool
	Languages        []string
	Country          string
	Region           string
	City             string
	Priority         int // lower = preferred
	IsVerified       bool
	IsActive         bool
	UsageCount       int64
	AverageRating    float64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Covers reports whether the resource serves the given crisis type
func (r *Resource) Covers(t types.CrisisType) bool {
	for _, c := range r.CrisisCategories {
		if c == t {
			return true
		}
	}
	return false
}

// Speaks reports whether the resource supports the given language
func (r *Resource) Speaks(lang string) bool {
	for _, l := range r.Languages {
		if strings.EqualFold(l, lang) {
			return true
		}
	}
	return false
}

// IsNational reports whether the resource is a national-level fallback
func (r *Resource) IsNational() bool {
	return r.Country == DefaultCountry && r.Region == ""
}

// MatchesLocation applies the inclusive location filter used by the
// matcher: region containment, city equality, or national fallback.
func (r *Resource) MatchesLocation(city, region string) bool {
	if city == "" && region == "" {
		return true
	}
	if region != "" && strings.Contains(strings.ToLower(r.Region), strings.ToLower(region)) {
		return true
	}
	if city != "" && strings.EqualFold(r.City, city) {
		return true
	}
	return r.IsNational()
}

// ParseLocation splits a "city, region" string. The region part is
// optional; a bare value is treated as the city.
func ParseLocation(location string) (city, region string) {
	parts := strings.SplitN(location, ",", 2)
	city = strings.TrimSpace(parts[0])
	if len(parts) == 2 {
		region = strings.TrimSpace(parts[1])
	}
	return city, region
}

// EmergencyContact is one entry of the static emergency directory
type EmergencyContact struct {
	Name          string
	Number        string
	Available24x7 bool
}

// ResourceFilters narrows an unbounded resource search
type ResourceFilters struct {
	CrisisType    types.CrisisType
	ChannelType   types.ConnectionChannel
	Language      string
	Region        string
	Available24x7 *bool
	VerifiedOnly  bool
}
