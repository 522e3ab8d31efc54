package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sitecms/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserInactive       = errors.New("user is inactive")
	ErrRoleInvalid        = errors.New("role is invalid")
)

const minPasswordLength = 8

// UserService 处理后台账号的登录与维护。
type UserService struct {
	db *gorm.DB
}

// NewUserService creates a UserService instance.
func NewUserService(gdb *gorm.DB) *UserService {
	return &UserService{db: gdb}
}

// Authenticate 按用户名或邮箱校验密码；账号不存在、停用或密码错误统一返回 ErrInvalidCredentials。
func (s *UserService) Authenticate(ctx context.Context, login, password string) (*db.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	var user db.User
	err := s.db.WithContext(ctx).
		Where("username = ? OR email = ?", login, strings.ToLower(login)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

// FindActive 返回仍处于启用状态的用户。
func (s *UserService) FindActive(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return &user, nil
}

// Upsert 创建用户，已存在同名用户时重置其邮箱、密码与角色并重新启用。
func (s *UserService) Upsert(ctx context.Context, username, email, password, role string) (*db.User, bool, error) {
	username = strings.TrimSpace(username)
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = db.RoleAdmin
	}

	vErr := &ValidationError{}
	if username == "" {
		vErr.Add("username", "用户名不能为空")
	}
	if email == "" {
		email = username + "@localhost"
	} else if !isEmail(email) {
		vErr.Add("email", "邮箱格式不正确")
	}
	if len(password) < minPasswordLength {
		vErr.Add("password", fmt.Sprintf("密码至少 %d 位", minPasswordLength))
	}
	if err := vErr.OrNil(); err != nil {
		return nil, false, err
	}
	if role != db.RoleAdmin && role != db.RoleEditor {
		return nil, false, ErrRoleInvalid
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, err
	}

	var (
		user    db.User
		created bool
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("username = ?", username).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			user = db.User{Username: username, Email: email, Password: string(hashed), Role: role, IsActive: true}
			created = true
			return tx.Create(&user).Error
		case err != nil:
			return err
		}
		return tx.Model(&user).Updates(map[string]interface{}{
			"email":     email,
			"password":  string(hashed),
			"role":      role,
			"is_active": true,
		}).Error
	})
	if err != nil {
		if isDuplicateKey(err) {
			return nil, false, NewValidationError("email", "邮箱已被其他账号使用")
		}
		return nil, false, err
	}
	return &user, created, nil
}
