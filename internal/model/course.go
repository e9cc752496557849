package model

// swagger:model Course
type Course struct {
	BaseModel
	Title       string `gorm:"size:255;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Language    string `gorm:"size:10;not null" json:"language"` // 授课语言
	Level       string `gorm:"size:50" json:"level"`
	CoverURL    string `gorm:"size:255" json:"coverUrl"`
	IsPublished bool   `gorm:"default:false" json:"isPublished"`

	Packages []CoursePackage `gorm:"foreignKey:CourseID" json:"packages,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CoursePackage 课时套餐，价格以最小货币单位存储
// swagger:model CoursePackage
type CoursePackage struct {
	BaseModel
	CourseID    uint   `gorm:"index;not null" json:"courseId"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Sessions    int    `gorm:"default:0" json:"sessions"` // 包含课时数
	PriceMinor  int64  `gorm:"not null" json:"priceMinor"`
	Currency    string `gorm:"size:3;default:'USD'" json:"currency"`
	IsPublished bool   `gorm:"default:true" json:"isPublished"`
}

func (CoursePackage) TableName() string {
	return "course_packages"
}
