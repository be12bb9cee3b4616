package enrich

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/sdarshil6/url-shortener/internal/domain"
)

const (
	chromeWindowsUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	iphoneSafariUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1"
	ipadSafariUA    = "Mozilla/5.0 (iPad; CPU OS 16_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.0 Mobile/15E148 Safari/604.1"
	googlebotUA     = "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)"
)

func TestResolveDevice_Empty(t *testing.T) {
	assert.Equal(t, domain.UnknownDevice(), ResolveDevice(""))
	assert.Equal(t, domain.UnknownDevice(), ResolveDevice("   "))
}

func TestResolveDevice_DesktopChrome(t *testing.T) {
	info := ResolveDevice(chromeWindowsUA)

	assert.Equal(t, "Chrome", info.Browser)
	assert.Contains(t, info.OS, "Windows")
	assert.Equal(t, domain.DeviceDesktop, info.Device)
}

func TestResolveDevice_DeviceClasses(t *testing.T) {
	assert.Equal(t, domain.DeviceMobile, ResolveDevice(iphoneSafariUA).Device)
	assert.Equal(t, domain.DeviceTablet, ResolveDevice(ipadSafariUA).Device)
	assert.Equal(t, domain.DeviceBot, ResolveDevice(googlebotUA).Device)
}

func TestResolveDevice_Malformed(t *testing.T) {
	assert.Equal(t, domain.UnknownDevice(), ResolveDevice("not a user agent"))
	assert.Equal(t, domain.UnknownDevice(), ResolveDevice(strings.Repeat("a", 2000)))
}

func TestResolveDevice_OversizedDoesNotPanic(t *testing.T) {
	ua := chromeWindowsUA + " " + strings.Repeat("x/1 ", 500)

	assert.NotPanics(t, func() {
		info := ResolveDevice(ua)
		assert.NotEmpty(t, info.Browser)
		assert.NotEmpty(t, info.OS)
		assert.NotEmpty(t, info.Device)
	})
}

func TestNormalizeUserAgent(t *testing.T) {
	assert.Len(t, normalizeUserAgent(strings.Repeat("a", 2000)), maxUserAgentLength)
	assert.Equal(t, "curl/8.0", normalizeUserAgent("  curl/8.0 "))
}

func TestNormalizeUserAgent_KeepsRunesWhole(t *testing.T) {
	ua := strings.Repeat("a", maxUserAgentLength-1) + "é" + strings.Repeat("b", 10)

	got := normalizeUserAgent(ua)

	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, maxUserAgentLength-1)

	ua = strings.Repeat("a", maxUserAgentLength-2) + "日本" + "tail"
	got = normalizeUserAgent(ua)

	assert.True(t, utf8.ValidString(got))
	assert.Len(t, got, maxUserAgentLength-2)
}
