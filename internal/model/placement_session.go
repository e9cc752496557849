package model

import "time"

const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
)

// PlacementSession 一次分级测试。CurrentCount/CurrentCorrect 只统计
// 当前等级的作答，晋级时清零；完整作答轨迹见 PlacementAnswer。
// Active 是进行中标记：进行中为 true，完成后置 NULL。配合 UserID 的
// 联合唯一索引，数据库层面保证一个学员最多一个进行中的会话。
// swagger:model PlacementSession
type PlacementSession struct {
	UUIDBase
	UserID         uint       `gorm:"index;not null;uniqueIndex:idx_user_active_session" json:"userId"`
	Active         *bool      `gorm:"uniqueIndex:idx_user_active_session" json:"-"`
	CurrentLevelID uint       `gorm:"index" json:"currentLevelId"`
	CurrentCount   int        `gorm:"default:0" json:"currentCount"`   // 当前等级已作答题数
	CurrentCorrect int        `gorm:"default:0" json:"currentCorrect"` // 当前等级答对题数
	Status         string     `gorm:"size:20;default:'in_progress';index" json:"status"`
	FinalLevelID   *uint      `json:"finalLevelId,omitempty"` // 完成后才有值
	StartedAt      time.Time  `json:"startedAt"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
}

func (PlacementSession) TableName() string {
	return "placement_sessions"
}

// PlacementAnswer 累计作答记录（跨等级的审计轨迹）
type PlacementAnswer struct {
	BaseModel
	SessionID   string `gorm:"index;type:varchar(36)" json:"sessionId"`
	LevelID     uint   `gorm:"index" json:"levelId"`
	QuestionID  uint   `gorm:"index" json:"questionId"`
	AnswerIndex int    `json:"answerIndex"`
	Correct     bool   `gorm:"default:false" json:"correct"`
	Order       int    `gorm:"default:0" json:"order"` // 全局作答序号
}

func (PlacementAnswer) TableName() string {
	return "placement_answers"
}

// PlacementResult 完成的测试归档为结果记录
// swagger:model PlacementResult
type PlacementResult struct {
	BaseModel
	SessionID    string    `gorm:"index;type:varchar(36)" json:"sessionId"`
	UserID       uint      `gorm:"index" json:"userId"`
	FinalLevelID uint      `json:"finalLevelId"`
	FinalLevel   string    `gorm:"size:50" json:"finalLevel"`
	TotalAnswers int       `json:"totalAnswers"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (PlacementResult) TableName() string {
	return "placement_results"
}
