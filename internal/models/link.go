package models

import "time"

const (
	// CodeMinLength минимальная длина короткого кода.
	CodeMinLength = 3
	// CodeMaxLength максимальная длина короткого кода.
	CodeMaxLength = 50
	// GeneratedCodeLength длина генерируемого кода.
	GeneratedCodeLength = 7
)

// LinkStatus хранимый статус ссылки. Истечение срока статусом не является —
// оно выводится на чтении из expires_at и всегда сильнее статуса.
type LinkStatus string

const (
	LinkStatusActive   LinkStatus = "active"
	LinkStatusInactive LinkStatus = "inactive"
)

// Link структура модели короткой ссылки.
type Link struct {
	ID        uint      `json:"ID" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Code      string     `json:"code" gorm:"uniqueIndex;size:50;not null"`
	TargetURL string     `json:"targetURL" gorm:"size:2048;not null"`
	// OwnerUUID владелец ссылки, пустая строка — анонимная ссылка.
	OwnerUUID string     `json:"ownerUUID" gorm:"size:36;index"`
	Status    LinkStatus `json:"status" gorm:"size:16;not null"`
	ExpiresAt *time.Time `json:"expiresAt"`
}

// IsExpired сообщает, истек ли срок жизни ссылки на момент now.
// Нулевой expires_at — ссылка вечная.
func (l *Link) IsExpired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// IsResolvable сообщает, можно ли отдавать ссылку на резолве: статус активен
// и срок не истек.
func (l *Link) IsResolvable(now time.Time) bool {
	return l.Status == LinkStatusActive && !l.IsExpired(now)
}
