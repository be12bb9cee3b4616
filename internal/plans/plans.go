// Package plans describes what each subscription tier may do.
package plans

import "strings"

const (
	Starter    = "starter"
	Pro        = "pro"
	Business   = "business"
	Enterprise = "enterprise"
)

type Permission string

const (
	AdvancedAnalytics Permission = "advanced_analytics"
	DeviceTracking    Permission = "device_tracking"
	DetailedGeo       Permission = "detailed_geo"
	EditLinks         Permission = "edit_links"
	SetExpiration     Permission = "set_expiration"
	CustomDomains     Permission = "custom_domains"
)

type Resource string

const (
	Links       Resource = "links"
	QRCodes     Resource = "qr_codes"
	CustomLinks Resource = "custom_links"
)

// Unlimited marks a resource with no monthly cap.
const Unlimited = -1

type Plan struct {
	Name        string
	Permissions map[Permission]bool
	Limits      map[Resource]int
}

var all = map[string]Plan{
	Starter: {
		Name:        Starter,
		Permissions: map[Permission]bool{},
		Limits:      map[Resource]int{Links: 20, QRCodes: 5, CustomLinks: 5},
	},
	Pro: {
		Name: Pro,
		Permissions: map[Permission]bool{
			AdvancedAnalytics: true,
			EditLinks:         true,
			SetExpiration:     true,
		},
		Limits: map[Resource]int{Links: 150, QRCodes: 25, CustomLinks: Unlimited},
	},
	Business: {
		Name: Business,
		Permissions: map[Permission]bool{
			AdvancedAnalytics: true,
			DeviceTracking:    true,
			DetailedGeo:       true,
			EditLinks:         true,
			SetExpiration:     true,
			CustomDomains:     true,
		},
		Limits: map[Resource]int{Links: 1000, QRCodes: 100, CustomLinks: Unlimited},
	},
	Enterprise: {
		Name: Enterprise,
		Permissions: map[Permission]bool{
			AdvancedAnalytics: true,
			DeviceTracking:    true,
			DetailedGeo:       true,
			EditLinks:         true,
			SetExpiration:     true,
			CustomDomains:     true,
		},
		Limits: map[Resource]int{Links: Unlimited, QRCodes: Unlimited, CustomLinks: Unlimited},
	},
}

// Lookup returns the named plan. Unknown names fall back to Starter.
func Lookup(name string) Plan {
	if p, ok := all[strings.ToLower(name)]; ok {
		return p
	}
	return all[Starter]
}

func (p Plan) Allows(perm Permission) bool {
	return p.Permissions[perm]
}

// WithinLimit reports whether one more use of r fits after used uses.
func (p Plan) WithinLimit(r Resource, used int64) bool {
	limit, ok := p.Limits[r]
	if !ok || limit == Unlimited {
		return true
	}
	return used < int64(limit)
}
