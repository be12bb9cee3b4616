package qrcode

import (
	"encoding/base64"
	"fmt"
	"strings"

	goqrcode "github.com/skip2/go-qrcode"
)

const (
	DefaultSize = 256
	MinSize     = 128
	MaxSize     = 1024
)

// ParseLevel maps a level name to a recovery level. Empty means medium.
func ParseLevel(name string) (goqrcode.RecoveryLevel, error) {
	switch strings.ToLower(name) {
	case "", "medium":
		return goqrcode.Medium, nil
	case "low":
		return goqrcode.Low, nil
	case "high":
		return goqrcode.High, nil
	case "highest":
		return goqrcode.Highest, nil
	default:
		return goqrcode.Medium, fmt.Errorf("unknown QR level %q", name)
	}
}

func PNG(content string, level goqrcode.RecoveryLevel, size int) ([]byte, error) {
	if size < MinSize || size > MaxSize {
		return nil, fmt.Errorf("QR size must be between %d and %d", MinSize, MaxSize)
	}
	return goqrcode.Encode(content, level, size)
}

// DataURI renders content as a base64 PNG data URI.
func DataURI(content string) (string, error) {
	png, err := PNG(content, goqrcode.Medium, DefaultSize)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
