package models

import (
	"gorm.io/gorm"
)

// User is the owner of campaigns and email accounts. Registration and
// session management live in the auth service; this backend only needs
// enough to resolve a token to an account.
type User struct {
	gorm.Model
	Email string `gorm:"uniqueIndex;not null" json:"email"`
	Name  string `json:"name"`

	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`

	// Relations
	Campaigns     []Campaign     `gorm:"foreignKey:UserID" json:"campaigns,omitempty"`
	EmailAccounts []EmailAccount `gorm:"foreignKey:UserID" json:"email_accounts,omitempty"`
}
