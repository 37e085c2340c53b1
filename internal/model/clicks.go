package model

// ClickRequest - тело запроса на учёт клика по сокращённой ссылке.
type ClickRequest struct {
	ShortURL string `json:"short_url"`
}

// ClickResponse - текущее значение счётчика для shortcode.
type ClickResponse struct {
	Shortcode string `json:"shortcode"`
	Count     int64  `json:"count"`
}
