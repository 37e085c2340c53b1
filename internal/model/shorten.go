package model

import "strings"

// ShortenRequest представляет один слот пакетного запроса на сокращение URL.
// Все поля приходят как есть из формы/JSON, пустые значения допустимы.
type ShortenRequest struct {
	OriginalURL        string `json:"original_url"`
	ValidityMinutes    string `json:"validity_minutes"`
	PreferredShortcode string `json:"preferred_shortcode"`
}

// IsEmpty сообщает, что слот не заполнен и должен быть пропущен.
func (r ShortenRequest) IsEmpty() bool {
	return r.OriginalURL == ""
}

// Preferred возвращает желаемый shortcode, если пользователь его указал.
func (r ShortenRequest) Preferred() (string, bool) {
	if r.PreferredShortcode == "" {
		return "", false
	}
	return r.PreferredShortcode, true
}

// Validity возвращает срок жизни в минутах в виде текста без пробелов по краям.
func (r ShortenRequest) Validity() string {
	return strings.TrimSpace(r.ValidityMinutes)
}

// ShortenedRecord представляет результат сокращения одного слота.
type ShortenedRecord struct {
	OriginalURL  string `json:"original_url"`
	Shortcode    string `json:"shortcode"`
	ShortenedURL string `json:"shortened_url"`
	Expiry       Expiry `json:"expiry_timestamp"`
}
