package database

import (
	"fmt"
	"log"

	"lingua_edu_backend/internal/config"
	"lingua_edu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// 会话唯一索引冲突要映射成 gorm.ErrDuplicatedKey
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedPlacementLadder(db)

	return db, nil
}

// Migrate 同步全部表结构，测试环境（sqlite）也复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.InstructorProfile{},
		&model.PlacementLevel{},
		&model.PlacementQuestion{},
		&model.PlacementSession{},
		&model.PlacementAnswer{},
		&model.PlacementResult{},
		&model.TimeSlot{},
		&model.Group{},
		&model.Booking{},
		&model.AttendanceRecord{},
		&model.Course{},
		&model.CoursePackage{},
	)
}

// 默认的分级阶梯（库为空时插入，正式题库由管理员维护）
func seedPlacementLadder(db *gorm.DB) {
	var count int64
	db.Model(&model.PlacementLevel{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.PlacementLevel{
		{Rank: 1, Name: "A1", Description: "Beginner", Enabled: true},
		{Rank: 2, Name: "A2", Description: "Elementary", Enabled: true},
		{Rank: 3, Name: "B1", Description: "Intermediate", Enabled: true},
		{Rank: 4, Name: "B2", Description: "Upper intermediate", Enabled: true},
		{Rank: 5, Name: "C1", Description: "Advanced", Enabled: true},
	}
	for i := range defaults {
		db.Create(&defaults[i])
	}
}
