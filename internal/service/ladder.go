package service

import (
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"
)

// LevelLadder 分级测试的等级阶梯，按 Rank 升序的只读快照。
// 晋级只能逐级进行，最高 Rank 为终点等级。
type LevelLadder struct {
	levels    []model.PlacementLevel
	questions map[uint][]model.PlacementQuestion
	position  map[uint]int // level ID -> index in levels
}

func NewLevelLadder(levels []model.PlacementLevel, questions map[uint][]model.PlacementQuestion) *LevelLadder {
	position := make(map[uint]int, len(levels))
	for i, l := range levels {
		position[l.ID] = i
	}
	return &LevelLadder{
		levels:    levels,
		questions: questions,
		position:  position,
	}
}

func (l *LevelLadder) Empty() bool {
	return len(l.levels) == 0
}

// Levels 按 Rank 升序的全部等级
func (l *LevelLadder) Levels() []model.PlacementLevel {
	return l.levels
}

func (l *LevelLadder) First() (*model.PlacementLevel, error) {
	if len(l.levels) == 0 {
		return nil, util.ErrLevelNotFound
	}
	return &l.levels[0], nil
}

func (l *LevelLadder) LevelByID(id uint) (*model.PlacementLevel, error) {
	idx, ok := l.position[id]
	if !ok {
		return nil, util.ErrLevelNotFound
	}
	return &l.levels[idx], nil
}

// QuestionsFor 等级的有序题目，未知等级返回 ErrLevelNotFound
func (l *LevelLadder) QuestionsFor(levelID uint) ([]model.PlacementQuestion, error) {
	if _, ok := l.position[levelID]; !ok {
		return nil, util.ErrLevelNotFound
	}
	return l.questions[levelID], nil
}

// NextLevel 下一等级；终点等级返回 false
func (l *LevelLadder) NextLevel(levelID uint) (*model.PlacementLevel, bool) {
	idx, ok := l.position[levelID]
	if !ok || idx+1 >= len(l.levels) {
		return nil, false
	}
	return &l.levels[idx+1], true
}

func (l *LevelLadder) IsTerminal(levelID uint) bool {
	idx, ok := l.position[levelID]
	return ok && idx == len(l.levels)-1
}
