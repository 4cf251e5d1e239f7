package api

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const flashCookie = "portal_flash"

// Flash categories.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
)

// Flash is a one-shot notice shown on the next rendered admin page.
type Flash struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

func setFlashes(w http.ResponseWriter, flashes ...Flash) {
	if len(flashes) == 0 {
		return
	}
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/admin",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the pending notices and clears the cookie. A missing or
// garbled cookie yields nil.
func popFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Path:     "/admin",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}
