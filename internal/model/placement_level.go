package model

import "encoding/json"

// PlacementLevel 分级测试的一个等级，Rank 严格递增，最大 Rank 为终点等级
// swagger:model PlacementLevel
type PlacementLevel struct {
	BaseModel
	Rank        int    `gorm:"uniqueIndex;not null" json:"rank"`
	Name        string `gorm:"size:50;not null" json:"name"` // e.g. A1, A2, B1
	Description string `gorm:"type:text" json:"description"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (PlacementLevel) TableName() string {
	return "placement_levels"
}

// swagger:model PlacementQuestion
type PlacementQuestion struct {
	BaseModel
	LevelID      uint            `gorm:"index" json:"levelId"`
	Prompt       string          `gorm:"type:text;not null" json:"prompt"`
	Options      json.RawMessage `gorm:"type:json" json:"options"` // JSON array of choice texts
	CorrectIndex int             `gorm:"default:0" json:"-"`       // 不下发给学生
	Order        int             `gorm:"default:0" json:"order"`
	Explanation  string          `gorm:"type:text" json:"explanation"`
}

func (PlacementQuestion) TableName() string {
	return "placement_questions"
}
