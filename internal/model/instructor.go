package model

// InstructorProfile 可排课教师目录
// swagger:model InstructorProfile
type InstructorProfile struct {
	BaseModel
	UserID     uint   `gorm:"uniqueIndex;not null" json:"userId"`
	Name       string `gorm:"size:100;not null" json:"name"`
	Bio        string `gorm:"type:text" json:"bio"`
	Languages  string `gorm:"size:255" json:"languages"` // 逗号分隔的可授语言
	Avatar     string `gorm:"size:255" json:"avatar"`
	Assignable bool   `gorm:"default:true" json:"assignable"`
}

func (InstructorProfile) TableName() string {
	return "instructor_profiles"
}
