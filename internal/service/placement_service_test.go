package service

import (
	"errors"
	"testing"
	"time"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

func newPlacementService(db *gorm.DB) *PlacementService {
	return NewPlacementService(
		repository.NewPlacementRepository(db),
		repository.NewPlacementSessionRepository(db),
		NewLogNotifier(),
		testConfig(),
		db,
		nil,
	)
}

func TestPlacementService_StartAtFirstLevel(t *testing.T) {
	db := newTestDB(t)
	levels := seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if view.Session.CurrentLevelID != levels[0].ID {
		t.Fatalf("expected session at level %d, got %d", levels[0].ID, view.Session.CurrentLevelID)
	}
	if view.LevelName != "A1" || view.QuestionNo != 1 || view.TotalInLevel != 2 {
		t.Fatalf("unexpected view: level=%s no=%d total=%d", view.LevelName, view.QuestionNo, view.TotalInLevel)
	}
	if view.Question == nil {
		t.Fatalf("expected a pending question")
	}
	if view.Resumed {
		t.Fatalf("fresh session must not be marked resumed")
	}
}

func TestPlacementService_StartResumesInProgress(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	first, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	second, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("resume: %v", err)
	}
	if !second.Resumed {
		t.Fatalf("expected resumed view")
	}
	if second.Session.ID != first.Session.ID {
		t.Fatalf("resume created a new session")
	}
}

func TestPlacementService_StartFreshConflicts(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	if _, err := svc.Start(1, false); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.Start(1, true); !errors.Is(err, util.ErrTestInProgress) {
		t.Fatalf("expected ErrTestInProgress, got %v", err)
	}
}

func TestPlacementService_SubmitAnswerPromotes(t *testing.T) {
	db := newTestDB(t)
	levels := seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sessionID := view.Session.ID

	result, err := svc.SubmitAnswer(1, sessionID, 0)
	if err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if result.LevelCompleted {
		t.Fatalf("level must not be complete after one of two answers")
	}

	result, err = svc.SubmitAnswer(1, sessionID, 0)
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if !result.LevelCompleted || !result.Promoted || result.Completed {
		t.Fatalf("expected promotion, got %+v", result)
	}
	if result.Session.CurrentLevelID != levels[1].ID {
		t.Fatalf("expected session at level %d, got %d", levels[1].ID, result.Session.CurrentLevelID)
	}
	// 晋级后计数清零，从下一等级第一题继续
	if result.Session.CurrentCount != 0 || result.Session.CurrentCorrect != 0 {
		t.Fatalf("counters not reset: count=%d correct=%d", result.Session.CurrentCount, result.Session.CurrentCorrect)
	}
	if result.Next == nil || result.Next.QuestionNo != 1 || result.Next.LevelName != "A2" {
		t.Fatalf("unexpected next view: %+v", result.Next)
	}
}

func TestPlacementService_SubmitAnswerFinalizes(t *testing.T) {
	db := newTestDB(t)
	levels := seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sessionID := view.Session.ID

	// 2 题全错，正确率 0 低于阈值，定级在 A1
	if _, err := svc.SubmitAnswer(1, sessionID, 2); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	result, err := svc.SubmitAnswer(1, sessionID, 2)
	if err != nil {
		t.Fatalf("second answer: %v", err)
	}
	if !result.Completed || result.FinalLevel != "A1" {
		t.Fatalf("expected finalization at A1, got %+v", result)
	}
	if result.Session.Status != model.SessionCompleted {
		t.Fatalf("session not completed: %s", result.Session.Status)
	}
	if result.Session.FinalLevelID == nil || *result.Session.FinalLevelID != levels[0].ID {
		t.Fatalf("final level not recorded on session")
	}

	// 结果已归档
	record, err := svc.Result(1)
	if err != nil {
		t.Fatalf("result: %v", err)
	}
	if record.FinalLevel != "A1" || record.TotalAnswers != 2 {
		t.Fatalf("unexpected archived result: %+v", record)
	}

	// 完成后的会话拒绝继续作答
	if _, err := svc.SubmitAnswer(1, sessionID, 0); !errors.Is(err, util.ErrSessionCompleted) {
		t.Fatalf("expected ErrSessionCompleted, got %v", err)
	}
}

func TestPlacementService_TerminalLevelFinalizesOnSuccess(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 1, 1)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 终点等级全对也定级，不再晋级
	result, err := svc.SubmitAnswer(1, view.Session.ID, 0)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !result.Completed || result.Promoted {
		t.Fatalf("terminal level must finalize, got %+v", result)
	}
	if result.FinalLevel != "A1" {
		t.Fatalf("expected final level A1, got %s", result.FinalLevel)
	}
}

func TestPlacementService_SubmitAnswerOwnership(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := svc.SubmitAnswer(2, view.Session.ID, 0); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if _, err := svc.SubmitAnswer(1, "no-such-session", 0); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPlacementService_StaleProgressRejected(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// 两次推进基于同一份进度快照，只有先落库的生效
	first, err := svc.SessionRepo.FindByID(view.Session.ID)
	if err != nil {
		t.Fatalf("load first copy: %v", err)
	}
	second, err := svc.SessionRepo.FindByID(view.Session.ID)
	if err != nil {
		t.Fatalf("load second copy: %v", err)
	}

	if err := svc.SessionRepo.AdvanceGuarded(nil, first, map[string]interface{}{
		"current_count":   1,
		"current_correct": 1,
	}); err != nil {
		t.Fatalf("first advance: %v", err)
	}
	err = svc.SessionRepo.AdvanceGuarded(nil, second, map[string]interface{}{
		"current_count": 1,
	})
	if !errors.Is(err, util.ErrConcurrentModify) {
		t.Fatalf("expected ErrConcurrentModify for stale advance, got %v", err)
	}

	// 输家没有覆盖赢家的进度
	reloaded, err := svc.SessionRepo.FindByID(view.Session.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.CurrentCount != 1 || reloaded.CurrentCorrect != 1 {
		t.Fatalf("winner state overwritten: count=%d correct=%d",
			reloaded.CurrentCount, reloaded.CurrentCorrect)
	}
}

func TestPlacementService_AuditTrailMatchesProgress(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	sessionID := view.Session.ID

	// A1 两题全对晋级，A2 再答一题
	for i := 0; i < 3; i++ {
		if _, err := svc.SubmitAnswer(1, sessionID, 0); err != nil {
			t.Fatalf("answer %d: %v", i+1, err)
		}
	}

	answered, err := svc.SessionRepo.CountAnswers(sessionID)
	if err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answered != 3 {
		t.Fatalf("expected 3 audit answers, got %d", answered)
	}

	answers, err := svc.SessionRepo.ListAnswers(sessionID)
	if err != nil {
		t.Fatalf("list answers: %v", err)
	}
	for i, a := range answers {
		if a.Order != i+1 {
			t.Fatalf("answer %d has order %d", i, a.Order)
		}
	}

	session, err := svc.SessionRepo.FindByID(sessionID)
	if err != nil {
		t.Fatalf("reload session: %v", err)
	}
	if session.CurrentCount != 1 {
		t.Fatalf("expected one answer counted on current level, got %d", session.CurrentCount)
	}
}

func TestPlacementService_DuplicateActiveSessionRejected(t *testing.T) {
	db := newTestDB(t)
	levels := seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	if _, err := svc.Start(1, false); err != nil {
		t.Fatalf("start: %v", err)
	}

	// 绕过查重直接插入第二个进行中会话，唯一索引兜底
	active := true
	dup := &model.PlacementSession{
		UserID:         1,
		Active:         &active,
		CurrentLevelID: levels[0].ID,
		Status:         model.SessionInProgress,
		StartedAt:      time.Now(),
	}
	if err := svc.SessionRepo.Create(dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected ErrDuplicatedKey, got %v", err)
	}

	// 撞上唯一索引的 Start 仍走恢复路径
	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start after conflict: %v", err)
	}
	if !view.Resumed {
		t.Fatalf("expected resumed view")
	}
}

func TestPlacementService_RestartAfterCompletion(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 1, 1)
	svc := newPlacementService(db)

	view, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := svc.SubmitAnswer(1, view.Session.ID, 0); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// 完成释放进行中标记，可以重测
	again, err := svc.Start(1, false)
	if err != nil {
		t.Fatalf("restart: %v", err)
	}
	if again.Resumed {
		t.Fatalf("completed session must not resume")
	}
	if again.Session.ID == view.Session.ID {
		t.Fatalf("restart reused the completed session")
	}
}

func TestPlacementService_ResultWithoutCompletion(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 2, 2)
	svc := newPlacementService(db)

	if _, err := svc.Result(7); !errors.Is(err, util.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestPlacementService_AddQuestionUnknownLevel(t *testing.T) {
	db := newTestDB(t)
	seedLadder(t, db, 1, 1)
	svc := newPlacementService(db)

	_, err := svc.AddQuestion(PlacementQuestionRequest{
		LevelID: 99,
		Prompt:  "orphan",
		Options: []byte(`["a","b"]`),
	})
	if !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}
