package models

// AdminUser can sign in to the back office.
type AdminUser struct {
	BaseModel
	Username     string `gorm:"uniqueIndex;not null" json:"username"`
	Email        string `json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (AdminUser) TableName() string { return "admin_users" }
