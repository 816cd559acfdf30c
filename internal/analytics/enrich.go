package analytics

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/mileusna/useragent"
	"github.com/serroba/shortlink-go/internal/geo"
)

// ClientInfo is the parsed user-agent metadata attached to a visit.
type ClientInfo struct {
	Browser string
	OS      string
	Device  string
}

// ParseUserAgent extracts browser, OS, and device families from a raw
// User-Agent header. Anything it cannot determine comes back Unknown.
func ParseUserAgent(raw string) ClientInfo {
	info := ClientInfo{Browser: geo.Unknown, OS: geo.Unknown, Device: geo.Unknown}

	if raw == "" {
		return info
	}

	ua := useragent.Parse(raw)

	if ua.Name != "" {
		info.Browser = ua.Name
	}

	if ua.OS != "" {
		info.OS = ua.OS
	}

	switch {
	case ua.Device != "":
		info.Device = ua.Device
	case ua.Mobile:
		info.Device = "Mobile"
	case ua.Tablet:
		info.Device = "Tablet"
	case ua.Bot:
		info.Device = "Bot"
	case ua.Desktop:
		info.Device = "Desktop"
	}

	return info
}

// HashClientIP one-way hashes a client address before it leaves the
// process. The raw address must never be published or persisted.
func HashClientIP(ip string) string {
	sum := sha256.Sum256([]byte(ip))

	return hex.EncodeToString(sum[:])
}
