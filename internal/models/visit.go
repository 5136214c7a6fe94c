package models

import "time"

// VisitOutcome исход резолва, с которым записано событие.
type VisitOutcome string

const (
	// VisitOutcomeServed код отдан клиенту.
	VisitOutcomeServed VisitOutcome = "served"
	// VisitOutcomeBlocked код существовал, но был неактивен либо истек.
	VisitOutcomeBlocked VisitOutcome = "blocked"
)

// Visit событие резолва. Ссылается на код слабо, без внешнего ключа: ссылку
// могут жестко удалить, а её события остаются.
type Visit struct {
	ID        uint      `json:"ID" gorm:"primarykey"`
	CreatedAt time.Time `json:"createdAt"`

	Code       string       `json:"code" gorm:"size:50;index;not null"`
	OccurredAt time.Time    `json:"occurredAt" gorm:"index;not null"`
	Outcome    VisitOutcome `json:"outcome" gorm:"size:16;not null"`
	ClientIP   string       `json:"clientIP" gorm:"size:45"`
	UserAgent  string       `json:"userAgent" gorm:"size:512"`
	Referrer   string       `json:"referrer" gorm:"size:2048"`
}

// VisitStats агрегат событий за полуинтервал [From, To).
type VisitStats struct {
	Total   int64     `json:"total"`
	Served  int64     `json:"served"`
	Blocked int64     `json:"blocked"`
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
}
