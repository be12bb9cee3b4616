package detector

import "strings"

const (
	Desktop = "Desktop"
	Mobile  = "Mobile"
	Tablet  = "Tablet"
	Bot     = "Bot"
	Unknown = "Unknown"
)

var (
	botKeywords    = []string{"bot", "crawler", "spider", "scraper", "curl", "wget", "python-requests", "headless"}
	tabletKeywords = []string{"ipad", "tablet", "kindle", "silk/", "playbook"}
	mobileKeywords = []string{"mobile", "iphone", "ipod", "blackberry", "windows phone", "opera mini"}
	// desktopHints are checked last; mobile UAs carry most of them too.
	desktopHints = []string{"windows", "macintosh", "x11", "linux", "cros"}
)

// DetectDeviceType classifies a user-agent by keyword. Tablets are checked
// before phones because iPad and Android tablet agents also say "mobile"
// or "android".
func DetectDeviceType(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return Unknown
	}

	if containsAny(ua, botKeywords) {
		return Bot
	}

	if containsAny(ua, tabletKeywords) {
		return Tablet
	}

	if strings.Contains(ua, "android") {
		if strings.Contains(ua, "mobile") {
			return Mobile
		}
		return Tablet
	}

	if containsAny(ua, mobileKeywords) {
		return Mobile
	}

	if containsAny(ua, desktopHints) {
		return Desktop
	}

	return Unknown
}

func containsAny(s string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(s, keyword) {
			return true
		}
	}
	return false
}
