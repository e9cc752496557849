package model

// Group 时段内的一个小组，容量受 MaxParticipants 限制。
// Version 用于并发改座时的乐观锁校验。
// swagger:model Group
type Group struct {
	BaseModel
	SlotID          uint   `gorm:"index;not null" json:"slotId"`
	Name            string `gorm:"size:100;not null" json:"name"`
	Level           string `gorm:"size:50" json:"level"` // 面向的语言等级分类
	InstructorID    *uint  `gorm:"index" json:"instructorId,omitempty"`
	MaxParticipants int    `gorm:"default:6" json:"maxParticipants"`
	Version         uint   `gorm:"default:0" json:"-"`

	Bookings []Booking `gorm:"foreignKey:GroupID" json:"bookings,omitempty"`
}

func (Group) TableName() string {
	return "session_groups"
}
