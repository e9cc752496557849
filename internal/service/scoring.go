package service

// PromotionDecision 某等级答完后的去向
type PromotionDecision struct {
	Promote     bool    `json:"promote"`
	NextLevelID uint    `json:"nextLevelId,omitempty"`
	FinalLevel  uint    `json:"finalLevelId,omitempty"`
	Ratio       float64 `json:"ratio"`
}

// DecidePromotion 纯函数：按当前等级累计的答对数决定晋级或定级。
// 正确率达到阈值且存在上一级则晋级；终点等级无论正确率都定级。
// 会话状态机答满一个等级时走这条路径。
func DecidePromotion(ladder *LevelLadder, levelID uint, correct, total int, threshold float64) (PromotionDecision, error) {
	if _, err := ladder.LevelByID(levelID); err != nil {
		return PromotionDecision{}, err
	}

	ratio := 0.0
	if total > 0 {
		ratio = float64(correct) / float64(total)
	}

	decision := PromotionDecision{Ratio: ratio}

	next, ok := ladder.NextLevel(levelID)
	if ok && ratio >= threshold {
		decision.Promote = true
		decision.NextLevelID = next.ID
		return decision, nil
	}

	decision.FinalLevel = levelID
	return decision, nil
}
