package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SalarySnapshot records one salary/advance change for a staff member.
// History is append-only: every change pushes a new snapshot.
type SalarySnapshot struct {
	Amount  float64   `json:"amount"`
	Advance float64   `json:"advance"`
	Paid    float64   `json:"paid"`
	Date    time.Time `json:"date"`
}

// User represents a staff account (admin, kitchen or waiter). The role flags
// are not mutually exclusive; admin supersedes the others.
type User struct {
	ID            uint             `gorm:"primaryKey" json:"id"`
	Name          string           `gorm:"not null" json:"name"`
	Email         string           `gorm:"uniqueIndex;not null" json:"email"`
	Password      string           `gorm:"not null" json:"-"`
	IsAdmin       bool             `gorm:"not null;default:false" json:"isAdmin"`
	IsKitchen     bool             `gorm:"not null;default:false" json:"isKitchen"`
	IsWaiter      bool             `gorm:"not null;default:false" json:"isWaiter"`
	Salary        float64          `gorm:"not null;default:0" json:"salary"`
	Advance       float64          `gorm:"not null;default:0" json:"advance"`
	SalaryHistory []SalarySnapshot `gorm:"serializer:json" json:"salaryHistory,omitempty"`
	LoginHistory  []time.Time      `gorm:"serializer:json" json:"loginHistory,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// BeforeSave hashes the password whenever it is set to a plaintext value.
// Already-hashed values (on updates that don't touch the password) pass
// through untouched.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if u.Password == "" || isBcryptHash(u.Password) {
		return nil
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// MatchPassword compares a plaintext password against the stored hash.
func (u *User) MatchPassword(entered string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(entered)) == nil
}

func isBcryptHash(s string) bool {
	return len(s) == 60 && (s[:4] == "$2a$" || s[:4] == "$2b$" || s[:4] == "$2y$")
}
