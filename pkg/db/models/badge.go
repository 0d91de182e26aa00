package models

import (
	"time"

	"github.com/angelmondragon/tienda-backend/pkg/enums"
)

type Badge struct {
	ID          uint64             `gorm:"primaryKey;autoIncrement"`
	Name        string             `gorm:"column:name;not null"`
	Description string             `gorm:"column:description;not null"`
	IconURL     *string            `gorm:"column:icon_url"`
	RuleKey     enums.BadgeRuleKey `gorm:"column:rule_key;type:varchar(64);not null"`
	Active      bool               `gorm:"column:active;not null"`
}

func (Badge) TableName() string { return "badges" }

// BadgeAward is unique per (user, badge) and never revoked.
type BadgeAward struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;uniqueIndex:idx_badge_awards_user_badge"`
	BadgeID   uint64    `gorm:"column:badge_id;not null;uniqueIndex:idx_badge_awards_user_badge"`
	AwardedAt time.Time `gorm:"column:awarded_at;not null"`

	Badge *Badge `gorm:"foreignKey:BadgeID"`
}

func (BadgeAward) TableName() string { return "badge_awards" }

type ShareEvent struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement"`
	UserID    uint64    `gorm:"column:user_id;not null;index"`
	ProductID *uint64   `gorm:"column:product_id"`
	VariantID *uint64   `gorm:"column:variant_id"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (ShareEvent) TableName() string { return "share_events" }
