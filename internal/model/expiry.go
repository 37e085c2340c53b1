package model

import (
	"encoding/json"
	"time"
)

// notAvailable выводится вместо даты, если срок жизни не задан.
const notAvailable = "N/A"

// Expiry - момент истечения ссылки. Нулевое значение означает "никогда".
type Expiry struct {
	at  time.Time
	set bool
}

// Never возвращает бессрочный Expiry.
func Never() Expiry {
	return Expiry{}
}

// At возвращает Expiry, истекающий в момент t.
func At(t time.Time) Expiry {
	return Expiry{at: t, set: true}
}

// IsSet сообщает, задан ли срок жизни.
func (e Expiry) IsSet() bool {
	return e.set
}

// Time возвращает момент истечения и признак его наличия.
func (e Expiry) Time() (time.Time, bool) {
	return e.at, e.set
}

// Expired проверяет, истекла ли ссылка к моменту now. Бессрочные ссылки не истекают.
func (e Expiry) Expired(now time.Time) bool {
	if !e.set {
		return false
	}
	return !now.Before(e.at)
}

// String возвращает дату в RFC3339 (UTC) либо "N/A".
func (e Expiry) String() string {
	if !e.set {
		return notAvailable
	}
	return e.at.UTC().Format(time.RFC3339)
}

// MarshalJSON кодирует Expiry как строку RFC3339 или null.
func (e Expiry) MarshalJSON() ([]byte, error) {
	if !e.set {
		return []byte("null"), nil
	}
	return json.Marshal(e.at.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON принимает строку RFC3339 или null.
func (e *Expiry) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*e = Never()
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return err
	}
	*e = At(t)
	return nil
}
