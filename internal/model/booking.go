package model

const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Booking 学员对某个小组座位的占用，同一时刻只属于一个小组
// swagger:model Booking
type Booking struct {
	BaseModel
	UserID  uint   `gorm:"index;not null" json:"userId"`
	GroupID uint   `gorm:"index;not null" json:"groupId"`
	SlotID  uint   `gorm:"index;not null" json:"slotId"`
	Level   string `gorm:"size:50" json:"level"` // 报名时的等级分类
	Status  string `gorm:"size:20;default:'pending';index" json:"status"`
	Note    string `gorm:"size:255" json:"note"`
}

func (Booking) TableName() string {
	return "bookings"
}

func (b *Booking) Active() bool {
	return b.Status != BookingCancelled
}

// AttendanceRecord 管理员对小组课到课情况的标记
type AttendanceRecord struct {
	BaseModel
	BookingID uint   `gorm:"uniqueIndex" json:"bookingId"`
	GroupID   uint   `gorm:"index" json:"groupId"`
	Attended  bool   `gorm:"default:false" json:"attended"`
	MarkedBy  uint   `json:"markedBy"`
	Note      string `gorm:"size:255" json:"note"`
}

func (AttendanceRecord) TableName() string {
	return "attendance_records"
}
