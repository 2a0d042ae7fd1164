package repository

import (
	"context"

	"farmcloud/internal/models"

	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context, opts ListOptions) ([]models.User, int64, error)
	ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
}

var userList = listSpec{
	filters: map[string]filterField{
		"role":      {column: "role"},
		"status":    {column: "status"},
		"is_active": {column: "is_active", kind: filterBool},
	},
	searchColumns: []string{"username", "email", "first_name", "last_name"},
	orderable: map[string]string{
		"id":          "id",
		"username":    "username",
		"date_joined": "date_joined",
		"last_login":  "last_login",
	},
	defaultOrder: "date_joined DESC, id DESC",
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context, opts ListOptions) ([]models.User, int64, error) {
	return list[models.User](ctx, r.db, userList, opts)
}

func (r *userRepository) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := r.db.WithContext(ctx).Where("role = ?", role).Order(userList.defaultOrder).Find(&users).Error
	return users, translate(err)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Omit("date_joined").Save(user).Error)
}

func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return deleted(r.db.WithContext(ctx).Delete(&models.User{}, id))
}
