package service

import (
	"errors"

	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/repository"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

type InstructorService struct {
	InstructorRepo *repository.InstructorRepository
	UserRepo       *repository.UserRepository
}

func NewInstructorService(instructorRepo *repository.InstructorRepository, userRepo *repository.UserRepository) *InstructorService {
	return &InstructorService{
		InstructorRepo: instructorRepo,
		UserRepo:       userRepo,
	}
}

type InstructorRequest struct {
	UserID     uint   `json:"userId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Bio        string `json:"bio"`
	Languages  string `json:"languages"`
	Avatar     string `json:"avatar"`
	Assignable *bool  `json:"assignable"`
}

func (s *InstructorService) Create(req InstructorRequest) (*model.InstructorProfile, error) {
	user, err := s.UserRepo.FindByID(req.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	// 建档同时提升角色
	if user.Role == model.Student {
		user.Role = model.Instructor
		if err := s.UserRepo.Update(user); err != nil {
			return nil, err
		}
	}

	profile := &model.InstructorProfile{
		UserID:     user.ID,
		Name:       req.Name,
		Bio:        req.Bio,
		Languages:  req.Languages,
		Avatar:     req.Avatar,
		Assignable: true,
	}
	if req.Assignable != nil {
		profile.Assignable = *req.Assignable
	}

	if err := s.InstructorRepo.Create(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *InstructorService) Update(id uint, req InstructorRequest) (*model.InstructorProfile, error) {
	profile, err := s.InstructorRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrInstructorUnknown
		}
		return nil, err
	}

	profile.Name = req.Name
	profile.Bio = req.Bio
	profile.Languages = req.Languages
	profile.Avatar = req.Avatar
	if req.Assignable != nil {
		profile.Assignable = *req.Assignable
	}

	if err := s.InstructorRepo.Update(profile); err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *InstructorService) ListAssignable() ([]model.InstructorProfile, error) {
	return s.InstructorRepo.ListAssignable()
}

func (s *InstructorService) List(page, limit int) ([]model.InstructorProfile, int64, error) {
	return s.InstructorRepo.ListAll(page, limit)
}
