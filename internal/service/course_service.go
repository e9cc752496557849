package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const catalogCacheTTL = 5 * time.Minute

type CourseService struct {
	CourseRepo *repository.CourseRepository
	Storage    *StorageService
	Redis      *redis.Client
}

func NewCourseService(courseRepo *repository.CourseRepository, storage *StorageService, rdb *redis.Client) *CourseService {
	return &CourseService{
		CourseRepo: courseRepo,
		Storage:    storage,
		Redis:      rdb,
	}
}

type catalogPage struct {
	Courses []model.Course `json:"courses"`
	Total   int64          `json:"total"`
}

// ListPublished 对外课程目录，按语言过滤，短 TTL 缓存兜流量
func (s *CourseService) ListPublished(language string, page, limit int) ([]model.Course, int64, error) {
	key := fmt.Sprintf("courses:catalog:%s:%d:%d", language, page, limit)

	if s.Redis != nil {
		if val, err := s.Redis.Get(context.Background(), key).Result(); err == nil {
			var cached catalogPage
			if json.Unmarshal([]byte(val), &cached) == nil {
				return cached.Courses, cached.Total, nil
			}
		}
	}

	courses, total, err := s.CourseRepo.ListPublished(language, page, limit)
	if err != nil {
		return nil, 0, err
	}

	if s.Redis != nil {
		if data, err := json.Marshal(catalogPage{Courses: courses, Total: total}); err == nil {
			s.Redis.Set(context.Background(), key, data, catalogCacheTTL)
		}
	}
	return courses, total, nil
}

func (s *CourseService) GetCourse(id uint) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

type CourseRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Language    string `json:"language" binding:"required"`
	Level       string `json:"level"`
	CoverURL    string `json:"coverUrl"`
	IsPublished bool   `json:"isPublished"`
}

func (s *CourseService) CreateCourse(req CourseRequest) (*model.Course, error) {
	course := &model.Course{
		Title:       req.Title,
		Description: req.Description,
		Language:    req.Language,
		Level:       req.Level,
		CoverURL:    req.CoverURL,
		IsPublished: req.IsPublished,
	}
	if err := s.CourseRepo.Create(course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(course.Language)
	return course, nil
}

func (s *CourseService) UpdateCourse(id uint, req CourseRequest) (*model.Course, error) {
	course, err := s.GetCourse(id)
	if err != nil {
		return nil, err
	}

	course.Title = req.Title
	course.Description = req.Description
	course.Language = req.Language
	course.Level = req.Level
	course.CoverURL = req.CoverURL
	course.IsPublished = req.IsPublished

	if err := s.CourseRepo.Update(course); err != nil {
		return nil, err
	}
	s.invalidateCatalog(course.Language)
	return course, nil
}

type PackageRequest struct {
	Name        string `json:"name" binding:"required"`
	Sessions    int    `json:"sessions"`
	PriceMinor  int64  `json:"priceMinor" binding:"required"`
	Currency    string `json:"currency"`
	IsPublished *bool  `json:"isPublished"`
}

func (s *CourseService) AddPackage(courseID uint, req PackageRequest) (*model.CoursePackage, error) {
	course, err := s.GetCourse(courseID)
	if err != nil {
		return nil, err
	}

	pkg := &model.CoursePackage{
		CourseID:    course.ID,
		Name:        req.Name,
		Sessions:    req.Sessions,
		PriceMinor:  req.PriceMinor,
		Currency:    req.Currency,
		IsPublished: true,
	}
	if pkg.Currency == "" {
		pkg.Currency = "USD"
	}
	if req.IsPublished != nil {
		pkg.IsPublished = *req.IsPublished
	}

	if err := s.CourseRepo.CreatePackage(pkg); err != nil {
		return nil, err
	}
	s.invalidateCatalog(course.Language)
	return pkg, nil
}

// 目录缓存按页存储，失效时扫描该语言的全部分页键
func (s *CourseService) invalidateCatalog(language string) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	pattern := fmt.Sprintf("courses:catalog:%s:*", language)
	iter := s.Redis.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		s.Redis.Del(ctx, iter.Val())
	}
}
