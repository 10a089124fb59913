package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/nstclasses/tutor-api/database"
	"github.com/nstclasses/tutor-api/model"
)

// UserService backs the admin user-management operations. Every mutation
// saves the full record through the two-store layer so the live tree copy
// tracks the database row.
type UserService struct {
	db     *gorm.DB
	remote *database.RemoteStore
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, remote *database.RemoteStore) *UserService {
	return &UserService{db: db, remote: remote}
}

// List returns users ordered by registration date, newest first
func (s *UserService) List(ctx context.Context, limit, offset int) ([]model.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	var total int64
	if err := s.db.WithContext(ctx).Model(&model.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []model.User
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	return users, total, err
}

// Get loads one user by id through the two-store layer
func (s *UserService) Get(ctx context.Context, id uint) (*model.User, error) {
	return s.remote.GetUser(ctx, id)
}

// SetChatBan bans or unbans a user from chat
func (s *UserService) SetChatBan(ctx context.Context, id uint, banned bool) (*model.User, error) {
	return s.mutate(ctx, id, func(u *model.User) {
		u.IsChatBanned = banned
	})
}

// AdjustCredits adds delta to a user's credit balance, clamping at zero
func (s *UserService) AdjustCredits(ctx context.Context, id uint, delta int) (*model.User, error) {
	return s.mutate(ctx, id, func(u *model.User) {
		u.Credits += delta
		if u.Credits < 0 {
			u.Credits = 0
		}
	})
}

// SetSubscription updates a user's premium flag, tier and level
func (s *UserService) SetSubscription(ctx context.Context, id uint, premium bool, tier, level string) (*model.User, error) {
	return s.mutate(ctx, id, func(u *model.User) {
		u.IsPremium = premium
		if tier != "" {
			u.SubscriptionTier = tier
		}
		if level != "" {
			u.SubscriptionLevel = level
		}
	})
}

// SetEnrollmentDate records when a student's plan progression starts
func (s *UserService) SetEnrollmentDate(ctx context.Context, id uint, date time.Time) (*model.User, error) {
	return s.mutate(ctx, id, func(u *model.User) {
		d := date.UTC()
		u.EnrollmentDate = &d
	})
}

// UpdateProgress moves a student's current chapter index for one subject.
// Negative indexes reset the subject to the beginning.
func (s *UserService) UpdateProgress(ctx context.Context, id uint, subjectID string, chapterIndex int) (*model.User, error) {
	if chapterIndex < 0 {
		chapterIndex = 0
	}
	return s.mutate(ctx, id, func(u *model.User) {
		if u.Progress == nil {
			u.Progress = model.ProgressMap{}
		}
		u.Progress[subjectID] = model.SubjectProgress{CurrentChapterIndex: chapterIndex}
	})
}

// mutate loads a user from the document store, applies the change and writes
// the full record back through both stores
func (s *UserService) mutate(ctx context.Context, id uint, fn func(*model.User)) (*model.User, error) {
	var user model.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}

	fn(&user)

	if err := s.remote.SaveUser(ctx, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
