package model

import "time"

// TimeSlot 可预约的免费体验课时间段，独占拥有其下的 Group
// swagger:model TimeSlot
type TimeSlot struct {
	BaseModel
	StartAt time.Time `gorm:"index;not null" json:"startAt"`
	EndAt   time.Time `gorm:"not null" json:"endAt"`
	Active  bool      `gorm:"default:true" json:"active"`
	Groups  []Group   `gorm:"foreignKey:SlotID;constraint:OnDelete:CASCADE" json:"groups,omitempty"`
}

func (TimeSlot) TableName() string {
	return "time_slots"
}
