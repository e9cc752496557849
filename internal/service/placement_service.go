package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"
	"lingua_edu_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const ladderCacheKey = "placement:ladder"

type PlacementService struct {
	Repo        *repository.PlacementRepository
	SessionRepo *repository.PlacementSessionRepository
	Notifier    Notifier
	Cfg         *config.Config
	DB          *gorm.DB
	Redis       *redis.Client
}

func NewPlacementService(
	repo *repository.PlacementRepository,
	sessionRepo *repository.PlacementSessionRepository,
	notifier Notifier,
	cfg *config.Config,
	db *gorm.DB,
	rdb *redis.Client,
) *PlacementService {
	return &PlacementService{
		Repo:        repo,
		SessionRepo: sessionRepo,
		Notifier:    notifier,
		Cfg:         cfg,
		DB:          db,
		Redis:       rdb,
	}
}

type ladderSnapshot struct {
	Levels    []model.PlacementLevel             `json:"levels"`
	Questions map[uint][]model.PlacementQuestion `json:"questions"`
}

// Ladder 加载等级阶梯，带 Redis 缓存（题库变更时失效）
func (s *PlacementService) Ladder() (*LevelLadder, error) {
	if s.Redis != nil {
		val, err := s.Redis.Get(context.Background(), ladderCacheKey).Result()
		if err == nil {
			var snap ladderSnapshot
			if json.Unmarshal([]byte(val), &snap) == nil {
				return NewLevelLadder(snap.Levels, snap.Questions), nil
			}
		}
		// redis.Nil 或缓存故障时直接回源
	}

	levels, err := s.Repo.ListLevels()
	if err != nil {
		return nil, err
	}

	questions := make(map[uint][]model.PlacementQuestion, len(levels))
	for _, l := range levels {
		qs, err := s.Repo.ListQuestions(l.ID)
		if err != nil {
			return nil, err
		}
		questions[l.ID] = qs
	}

	if s.Redis != nil {
		if data, err := json.Marshal(ladderSnapshot{Levels: levels, Questions: questions}); err == nil {
			s.Redis.Set(context.Background(), ladderCacheKey, data, 10*time.Minute)
		}
	}

	return NewLevelLadder(levels, questions), nil
}

// Levels 对外公开的等级列表（不含题目）
func (s *PlacementService) Levels() ([]model.PlacementLevel, error) {
	ladder, err := s.Ladder()
	if err != nil {
		return nil, err
	}
	return ladder.Levels(), nil
}

func (s *PlacementService) invalidateLadder() {
	if s.Redis != nil {
		s.Redis.Del(context.Background(), ladderCacheKey)
	}
}

// SessionView 会话状态 + 当前待答题目（不含答案）
type SessionView struct {
	Session      *model.PlacementSession  `json:"session"`
	LevelName    string                   `json:"levelName"`
	QuestionNo   int                      `json:"questionNo"` // 1-based，完成后为 0
	TotalInLevel int                      `json:"totalInLevel"`
	Question     *model.PlacementQuestion `json:"question,omitempty"`
	Resumed      bool                     `json:"resumed"`
}

// Start 开始（或恢复）分级测试。已有进行中的会话时：
// fresh=false 返回原会话快照，fresh=true 返回 ErrTestInProgress。
func (s *PlacementService) Start(userID uint, fresh bool) (*SessionView, error) {
	existing, err := s.SessionRepo.FindInProgressByUser(userID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		if fresh {
			return nil, util.ErrTestInProgress
		}
		view, err := s.sessionView(existing)
		if err != nil {
			return nil, err
		}
		view.Resumed = true
		return view, nil
	}

	ladder, err := s.Ladder()
	if err != nil {
		return nil, err
	}
	first, err := ladder.First()
	if err != nil {
		return nil, err
	}

	active := true
	session := &model.PlacementSession{
		UserID:         userID,
		Active:         &active,
		CurrentLevelID: first.ID,
		Status:         model.SessionInProgress,
		StartedAt:      time.Now(),
	}
	if err := s.SessionRepo.Create(session); err != nil {
		// 两个并发 Start 都没查到会话时，唯一索引保证只有一个能插入，
		// 输家转入恢复路径
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if fresh {
				return nil, util.ErrTestInProgress
			}
			winner, err := s.SessionRepo.FindInProgressByUser(userID)
			if err != nil {
				return nil, err
			}
			view, err := s.sessionView(winner)
			if err != nil {
				return nil, err
			}
			view.Resumed = true
			return view, nil
		}
		return nil, err
	}

	return s.sessionView(session)
}

// SubmitResult 一次作答后的会话去向
type SubmitResult struct {
	Session        *model.PlacementSession `json:"session"`
	LevelCompleted bool                    `json:"levelCompleted"`
	Promoted       bool                    `json:"promoted"`
	Completed      bool                    `json:"completed"`
	FinalLevel     string                  `json:"finalLevel,omitempty"`
	Next           *SessionView            `json:"next,omitempty"`
}

// SubmitAnswer 追加一次作答；答满当前等级题数时同步评定并转移状态。
// 会话在事务内重读，计数推进走以读到进度为前提的守卫更新：两个并发
// 作答只有一个能落库，输家的作答记录随事务一起回滚，收到
// ErrConcurrentModify 后重试即可看到赢家推进后的进度。
func (s *PlacementService) SubmitAnswer(userID uint, sessionID string, answerIndex int) (*SubmitResult, error) {
	ladder, err := s.Ladder()
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{}
	var session *model.PlacementSession
	var finalLevelName string

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		var sess model.PlacementSession
		if err := tx.Where("id = ?", sessionID).First(&sess).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrSessionNotFound
			}
			return err
		}
		if sess.UserID != userID {
			return util.ErrPermissionDenied
		}
		if sess.Status == model.SessionCompleted {
			return util.ErrSessionCompleted
		}

		questions, err := ladder.QuestionsFor(sess.CurrentLevelID)
		if err != nil {
			return err
		}
		if sess.CurrentCount >= len(questions) {
			// 不变量：当前等级作答数不会超过题数
			return util.ErrSessionCompleted
		}

		question := questions[sess.CurrentCount]
		correct := answerIndex == question.CorrectIndex

		var answered int64
		if err := tx.Model(&model.PlacementAnswer{}).
			Where("session_id = ?", sess.ID).Count(&answered).Error; err != nil {
			return err
		}

		answer := &model.PlacementAnswer{
			SessionID:   sess.ID,
			LevelID:     sess.CurrentLevelID,
			QuestionID:  question.ID,
			AnswerIndex: answerIndex,
			Correct:     correct,
			Order:       int(answered) + 1,
		}
		if err := tx.Create(answer).Error; err != nil {
			return err
		}

		newCount := sess.CurrentCount + 1
		newCorrect := sess.CurrentCorrect
		if correct {
			newCorrect++
		}
		updates := map[string]interface{}{
			"current_count":   newCount,
			"current_correct": newCorrect,
		}

		if newCount == len(questions) {
			result.LevelCompleted = true

			decision, err := DecidePromotion(ladder, sess.CurrentLevelID,
				newCorrect, len(questions), s.Cfg.Placement.PromotionThreshold)
			if err != nil {
				return err
			}

			if decision.Promote {
				result.Promoted = true
				updates["current_level_id"] = decision.NextLevelID
				updates["current_count"] = 0
				updates["current_correct"] = 0

				if err := s.SessionRepo.AdvanceGuarded(tx, &sess, updates); err != nil {
					return err
				}
				sess.CurrentLevelID = decision.NextLevelID
				sess.CurrentCount = 0
				sess.CurrentCorrect = 0
			} else {
				now := time.Now()
				final, err := ladder.LevelByID(decision.FinalLevel)
				if err != nil {
					return err
				}
				finalLevelName = final.Name

				updates["status"] = model.SessionCompleted
				updates["final_level_id"] = decision.FinalLevel
				updates["completed_at"] = now
				updates["active"] = nil // 释放进行中标记，允许下次重测

				if err := s.SessionRepo.AdvanceGuarded(tx, &sess, updates); err != nil {
					return err
				}
				sess.Status = model.SessionCompleted
				sess.FinalLevelID = &decision.FinalLevel
				sess.CompletedAt = &now
				sess.Active = nil
				result.Completed = true
				result.FinalLevel = final.Name

				record := &model.PlacementResult{
					SessionID:    sess.ID,
					UserID:       sess.UserID,
					FinalLevelID: final.ID,
					FinalLevel:   final.Name,
					TotalAnswers: int(answered) + 1,
					CompletedAt:  now,
				}
				if err := tx.Create(record).Error; err != nil {
					return err
				}
			}
		} else {
			if err := s.SessionRepo.AdvanceGuarded(tx, &sess, updates); err != nil {
				return err
			}
			sess.CurrentCount = newCount
			sess.CurrentCorrect = newCorrect
		}

		session = &sess
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Session = session

	if result.Completed {
		monitoring.PlacementCompletions.WithLabelValues(finalLevelName).Inc()
		s.Notifier.PlacementCompleted(session.UserID, finalLevelName)
	} else {
		next, err := s.sessionView(session)
		if err != nil {
			return nil, err
		}
		result.Next = next
	}

	return result, nil
}

// Result 学员最近一次完成的定级
func (s *PlacementService) Result(userID uint) (*model.PlacementResult, error) {
	result, err := s.SessionRepo.FindResultByUser(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrSessionNotFound
		}
		return nil, err
	}
	return result, nil
}

func (s *PlacementService) ListResults(page, limit int) ([]model.PlacementResult, int64, error) {
	return s.SessionRepo.ListResults(page, limit)
}

type PlacementQuestionRequest struct {
	LevelID      uint            `json:"levelId" binding:"required"`
	Prompt       string          `json:"prompt" binding:"required"`
	Options      json.RawMessage `json:"options" binding:"required"`
	CorrectIndex int             `json:"correctIndex"`
	Order        int             `json:"order"`
	Explanation  string          `json:"explanation"`
}

func (s *PlacementService) AddQuestion(req PlacementQuestionRequest) (*model.PlacementQuestion, error) {
	if _, err := s.Repo.FindLevelByID(req.LevelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}

	question := &model.PlacementQuestion{
		LevelID:      req.LevelID,
		Prompt:       req.Prompt,
		Options:      req.Options,
		CorrectIndex: req.CorrectIndex,
		Order:        req.Order,
		Explanation:  req.Explanation,
	}
	if err := s.Repo.CreateQuestion(question); err != nil {
		return nil, err
	}

	s.invalidateLadder()
	return question, nil
}

func (s *PlacementService) DeleteQuestion(id uint) error {
	if err := s.Repo.DeleteQuestion(id); err != nil {
		return err
	}
	s.invalidateLadder()
	return nil
}

func (s *PlacementService) sessionView(session *model.PlacementSession) (*SessionView, error) {
	ladder, err := s.Ladder()
	if err != nil {
		return nil, err
	}
	level, err := ladder.LevelByID(session.CurrentLevelID)
	if err != nil {
		return nil, err
	}
	questions, err := ladder.QuestionsFor(session.CurrentLevelID)
	if err != nil {
		return nil, err
	}

	view := &SessionView{
		Session:      session,
		LevelName:    level.Name,
		TotalInLevel: len(questions),
	}
	if session.Status == model.SessionInProgress && session.CurrentCount < len(questions) {
		q := questions[session.CurrentCount]
		view.Question = &q
		view.QuestionNo = session.CurrentCount + 1
	}
	return view, nil
}
