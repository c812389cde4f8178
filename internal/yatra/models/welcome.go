package models

// ============================================================
// Welcome Popup & Admin
// ============================================================

type WelcomePopup struct {
	ID        string `json:"id"`
	ImageURL  string `json:"image_url"`
	Active    bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

type Admin struct {
	ID           string `json:"id"`
	Login        string `json:"login"`
	PasswordHash string `json:"-"`
	CreatedAt    string `json:"created_at"`
}
