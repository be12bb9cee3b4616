package enrich

import (
	"strings"
	"unicode/utf8"

	"github.com/mssola/useragent"

	"github.com/sdarshil6/url-shortener/internal/domain"
	"github.com/sdarshil6/url-shortener/pkg/detector"
)

const maxUserAgentLength = 1000

// ResolveDevice parses a user-agent into browser, OS and device class.
// Anything the parser cannot make sense of yields the Unknown defaults;
// it never panics.
func ResolveDevice(userAgent string) (info domain.DeviceInfo) {
	ua := normalizeUserAgent(userAgent)
	if ua == "" || !strings.Contains(ua, "/") {
		return domain.UnknownDevice()
	}

	defer func() {
		if r := recover(); r != nil {
			info = domain.UnknownDevice()
		}
	}()

	parsed := useragent.New(ua)

	browser, _ := parsed.Browser()
	info = domain.DeviceInfo{
		Browser: orUnknown(browser),
		OS:      orUnknown(parsed.OSInfo().Name),
		Device:  classifyDevice(ua, parsed),
	}
	return info
}

func classifyDevice(ua string, parsed *useragent.UserAgent) string {
	if parsed.Bot() {
		return domain.DeviceBot
	}

	switch detector.DetectDeviceType(ua) {
	case detector.Bot:
		return domain.DeviceBot
	case detector.Tablet:
		return domain.DeviceTablet
	case detector.Mobile:
		return domain.DeviceMobile
	case detector.Desktop:
		if parsed.Mobile() {
			return domain.DeviceMobile
		}
		return domain.DeviceDesktop
	}

	if parsed.Mobile() {
		return domain.DeviceMobile
	}
	return domain.DeviceUnknown
}

// normalizeUserAgent trims the header and caps it before parsing. The cut
// backs off to a rune boundary so multi-byte characters are never split.
func normalizeUserAgent(userAgent string) string {
	ua := strings.TrimSpace(userAgent)
	if len(ua) > maxUserAgentLength {
		cut := maxUserAgentLength
		for cut > 0 && !utf8.RuneStart(ua[cut]) {
			cut--
		}
		ua = ua[:cut]
	}
	return ua
}

func orUnknown(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Unknown
	}
	return s
}
