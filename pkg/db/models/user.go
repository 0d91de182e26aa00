package models

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
)

// User is the slice of the account table the order pipeline needs.
type User struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement"`
	Name      string         `gorm:"column:name;not null"`
	Email     string         `gorm:"column:email;not null;uniqueIndex"`
	Role      enums.UserRole `gorm:"column:role;type:varchar(32);not null"`
	PushToken *string        `gorm:"column:push_token"`
	CreatedAt time.Time      `gorm:"column:created_at;not null"`
}

func (User) TableName() string { return "users" }
