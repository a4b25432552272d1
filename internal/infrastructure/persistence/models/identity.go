package models

import (
	"time"

	"github.com/logidocs/backend/internal/domain/identity"
	"github.com/logidocs/backend/internal/domain/shared"
)

// UserModel is the persistence model for the User aggregate
type UserModel struct {
	AggregateModel
	Username       string              `gorm:"type:varchar(50);not null;uniqueIndex"`
	Email          string              `gorm:"type:varchar(200);not null;uniqueIndex"`
	DisplayName    string              `gorm:"type:varchar(100)"`
	PasswordHash   string              `gorm:"type:varchar(255);not null"`
	Department     shared.Department   `gorm:"type:varchar(20);not null;index"`
	IsAdmin        bool                `gorm:"not null;default:false"`
	Status         identity.UserStatus `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
	FailedAttempts int                 `gorm:"not null;default:0"`
	LockedUntil    *time.Time
	LastLoginAt    *time.Time
	LastLoginIP    string `gorm:"type:varchar(45)"`
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Username:          m.Username,
		Email:             m.Email,
		DisplayName:       m.DisplayName,
		PasswordHash:      m.PasswordHash,
		Department:        m.Department,
		IsAdmin:           m.IsAdmin,
		Status:            m.Status,
		FailedAttempts:    m.FailedAttempts,
		LockedUntil:       m.LockedUntil,
		LastLoginAt:       m.LastLoginAt,
		LastLoginIP:       m.LastLoginIP,
	}
}

// UserModelFromDomain creates a persistence model from a domain User
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{
		Username:       u.Username,
		Email:          u.Email,
		DisplayName:    u.DisplayName,
		PasswordHash:   u.PasswordHash,
		Department:     u.Department,
		IsAdmin:        u.IsAdmin,
		Status:         u.Status,
		FailedAttempts: u.FailedAttempts,
		LockedUntil:    u.LockedUntil,
		LastLoginAt:    u.LastLoginAt,
		LastLoginIP:    u.LastLoginIP,
	}
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	return m
}
