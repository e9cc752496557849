package repository

import (
	"lingua_edu_backend/internal/model"
	"lingua_edu_backend/internal/util"

	"gorm.io/gorm"
)

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.DB.Create(group).Error
}

// UpdateGuarded 列级更新并推进版本号，与占座/改座走同一套乐观锁：
// 读到的版本已被别的提交覆盖时一行都不更新，返回 ErrConcurrentModify。
// 成功后同步推进 group.Version。整行 Save 会把过期版本号写回去，
// 小组一律走这里。
func (r *GroupRepository) UpdateGuarded(tx *gorm.DB, group *model.Group, updates map[string]interface{}) error {
	if tx == nil {
		tx = r.DB
	}
	updates["version"] = group.Version + 1
	res := tx.Model(&model.Group{}).
		Where("id = ? AND version = ?", group.ID, group.Version).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return util.ErrConcurrentModify
	}
	group.Version++
	return nil
}

func (r *GroupRepository) Delete(id uint) error {
	return r.DB.Delete(&model.Group{}, id).Error
}

func (r *GroupRepository) FindByID(id uint) (*model.Group, error) {
	var group model.Group
	if err := r.DB.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *GroupRepository) FindBySlot(slotID uint) ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.Where("slot_id = ?", slotID).Find(&groups).Error
	return groups, err
}

// ActiveSeatCount 未取消预约的占座数
func (r *GroupRepository) ActiveSeatCount(groupID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Booking{}).
		Where("group_id = ? AND status <> ?", groupID, model.BookingCancelled).
		Count(&count).Error
	return count, err
}

// ListUnassigned 没有教师的小组
func (r *GroupRepository) ListUnassigned() ([]model.Group, error) {
	var groups []model.Group
	err := r.DB.Where("instructor_id IS NULL").Find(&groups).Error
	return groups, err
}

// CountAssignments 某教师当前被分配的小组数，用于轮转指派
func (r *GroupRepository) CountAssignments(instructorID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Group{}).
		Where("instructor_id = ?", instructorID).
		Count(&count).Error
	return count, err
}
