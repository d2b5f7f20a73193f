package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByRoom struct {
	Kind   string
	RoomID uuid.UUID
}

func (s ByRoom) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("room_kind = ? AND room_id = ?", s.Kind, s.RoomID)
}
