package domain

import "time"

type Link struct {
	ID        int64      `json:"id"`
	Key       string     `json:"key"`
	SecretKey string     `json:"secret_key"`
	TargetURL string     `json:"target_url"`
	IsActive  bool       `json:"is_active"`
	IsCustom  bool       `json:"is_custom"`
	Clicks    int64      `json:"clicks"`
	OwnerID   int64      `json:"owner_id"`
	ExpiresAt *time.Time `json:"expires_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// IsExpired reports whether the link has an expiration instant at or before now.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && !now.Before(*l.ExpiresAt)
}

type CreateLinkRequest struct {
	TargetURL string     `json:"target_url" validate:"required,url,max=2048"`
	CustomKey string     `json:"custom_key,omitempty" validate:"omitempty,min=4,max=20,alias"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

type UpdateLinkRequest struct {
	TargetURL string `json:"target_url" validate:"required,url,max=2048"`
}

type LinkFilter struct {
	ActiveOnly bool
	Search     string
}

type LinkInfo struct {
	Link
	URL      string `json:"url"`
	AdminURL string `json:"admin_url"`
	QRCode   string `json:"qr_code,omitempty"`
}

type LinkList struct {
	Items      []LinkInfo `json:"items"`
	Total      int64      `json:"total"`
	Page       int        `json:"page"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
}
