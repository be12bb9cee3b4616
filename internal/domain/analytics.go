package domain

import "time"

const (
	Unknown        = "Unknown"
	Local          = "Local"
	DirectReferrer = "Direct"
)

const (
	DeviceDesktop = "Desktop"
	DeviceMobile  = "Mobile"
	DeviceTablet  = "Tablet"
	DeviceBot     = "Bot"
	DeviceUnknown = Unknown
)

type GeoInfo struct {
	Country string `json:"country"`
	Region  string `json:"region"`
	City    string `json:"city"`
}

func UnknownGeo() GeoInfo {
	return GeoInfo{Country: Unknown, Region: Unknown, City: Unknown}
}

func LocalGeo() GeoInfo {
	return GeoInfo{Country: Local, Region: Local, City: Local}
}

type DeviceInfo struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Device  string `json:"device"`
}

func UnknownDevice() DeviceInfo {
	return DeviceInfo{Browser: Unknown, OS: Unknown, Device: DeviceUnknown}
}

type ClickEvent struct {
	ID        int64     `json:"id"`
	LinkID    int64     `json:"link_id"`
	ClickedAt time.Time `json:"clicked_at"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
	Referrer  string    `json:"referrer"`
	Country   string    `json:"country"`
	Region    string    `json:"region"`
	City      string    `json:"city"`
	Browser   string    `json:"browser"`
	OS        string    `json:"os"`
	Device    string    `json:"device"`
}

type LinkAnalytics struct {
	Key           string         `json:"key"`
	TargetURL     string         `json:"target_url"`
	TotalClicks   int64          `json:"total_clicks"`
	UniqueIPs     int64          `json:"unique_ips"`
	LastClickedAt *time.Time     `json:"last_clicked_at"`
	CreatedAt     time.Time      `json:"created_at"`
	ClicksByDate  []ClicksByDate `json:"clicks_by_date,omitempty"`
	TopReferrers  []CountByLabel `json:"top_referrers,omitempty"`
	Countries     []CountByLabel `json:"countries,omitempty"`
	Cities        []CountByLabel `json:"cities,omitempty"`
	Browsers      []CountByLabel `json:"browsers,omitempty"`
	OperatingSys  []CountByLabel `json:"operating_systems,omitempty"`
	DeviceStats   *DeviceStats   `json:"device_stats,omitempty"`
}

type ClicksByDate struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type CountByLabel struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

type DeviceStats struct {
	Mobile  int64 `json:"mobile"`
	Desktop int64 `json:"desktop"`
	Tablet  int64 `json:"tablet"`
	Bot     int64 `json:"bot"`
	Unknown int64 `json:"unknown"`
}

type ClickHistory struct {
	Clicks     []ClickEvent `json:"clicks"`
	Total      int64        `json:"total"`
	Page       int          `json:"page"`
	PageSize   int          `json:"page_size"`
	TotalPages int          `json:"total_pages"`
}

// Dimension names a click attribute that analytics can group by.
type Dimension string

const (
	DimensionReferrer Dimension = "referrer"
	DimensionCountry  Dimension = "country"
	DimensionCity     Dimension = "city"
	DimensionBrowser  Dimension = "browser"
	DimensionOS       Dimension = "os"
)
