package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/pkg/database"
	"lingua_edu_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// newTestDB 每个测试一个独立的内存库，表结构与生产一致
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		Placement: config.PlacementConfig{PromotionThreshold: 0.6},
		Booking:   config.BookingConfig{UpcomingWindowDays: 14, DefaultGroupCapacity: 6},
	}
}

// seedLadder 建 count 个等级，每级 perLevel 道题，正确答案都是选项 0
func seedLadder(t *testing.T, db *gorm.DB, count, perLevel int) []model.PlacementLevel {
	t.Helper()

	levels := make([]model.PlacementLevel, 0, count)
	names := []string{"A1", "A2", "B1", "B2", "C1"}
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("L%d", i+1)
		if i < len(names) {
			name = names[i]
		}
		level := model.PlacementLevel{Rank: i + 1, Name: name, Enabled: true}
		if err := db.Create(&level).Error; err != nil {
			t.Fatalf("create level: %v", err)
		}
		for q := 0; q < perLevel; q++ {
			question := model.PlacementQuestion{
				LevelID:      level.ID,
				Prompt:       fmt.Sprintf("%s question %d", name, q+1),
				Options:      json.RawMessage(`["right","wrong","wrong"]`),
				CorrectIndex: 0,
				Order:        q + 1,
			}
			if err := db.Create(&question).Error; err != nil {
				t.Fatalf("create question: %v", err)
			}
		}
		levels = append(levels, level)
	}
	return levels
}

func seedGroup(t *testing.T, db *gorm.DB, slotID uint, name string, capacity int) *model.Group {
	t.Helper()

	group := &model.Group{SlotID: slotID, Name: name, MaxParticipants: capacity}
	if err := db.Create(group).Error; err != nil {
		t.Fatalf("create group: %v", err)
	}
	return group
}

func seedBooking(t *testing.T, db *gorm.DB, userID uint, group *model.Group, status string) *model.Booking {
	t.Helper()

	booking := &model.Booking{
		UserID:  userID,
		GroupID: group.ID,
		SlotID:  group.SlotID,
		Status:  status,
	}
	if err := db.Create(booking).Error; err != nil {
		t.Fatalf("create booking: %v", err)
	}
	return booking
}
