package repositories

import (
	"errors"
	"strconv"

	"gorm.io/gorm"

	"quizly/api/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)

type UserRepository struct {
	DB *gorm.DB
}

// CreateUser inserts user. The database must be opened with TranslateError
// so a unique email violation surfaces as ErrEmailTaken.
func (r *UserRepository) CreateUser(user *models.User) error {
	err := r.DB.Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetUserByID(userID string) (*models.User, error) {
	id, err := strconv.ParseUint(userID, 10, 64)
	if err != nil {
		return nil, ErrUserNotFound
	}
	var user models.User
	err = r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs returns the users that exist, keyed by decimal ID. Unknown or
// malformed IDs are skipped.
func (r *UserRepository) GetUsersByIDs(userIDs []string) (map[string]models.User, error) {
	ids := make([]uint64, 0, len(userIDs))
	for _, s := range userIDs {
		if id, err := strconv.ParseUint(s, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}

	found := make(map[string]models.User, len(ids))
	if len(ids) == 0 {
		return found, nil
	}

	var users []models.User
	if err := r.DB.Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	for _, u := range users {
		found[strconv.FormatUint(uint64(u.ID), 10)] = u
	}
	return found, nil
}
