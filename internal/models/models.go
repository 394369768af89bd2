package models

import "time"

type User struct {
	ID                  uint       `gorm:"primaryKey;autoIncrement" json:"id"`
	Username            string     `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash        string     `gorm:"not null" json:"-"`
	IsActive            bool       `gorm:"not null;default:true" json:"isActive"`
	IsLoggedIn          bool       `gorm:"not null;default:false" json:"isLoggedIn"`
	FailedLoginAttempts int        `gorm:"not null;default:0" json:"failedLoginAttempts"`
	LastLoginAttempt    *time.Time `json:"lastLoginAttempt,omitempty"`
	IPAddress           *string    `json:"ipAddress,omitempty"`
	CreatedAt           time.Time  `json:"createdAt"`
}

type Post struct {
	ID        uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	Number    int         `gorm:"uniqueIndex;not null" json:"number"`
	Title     string      `gorm:"not null" json:"title"`
	Content   string      `gorm:"type:text;not null" json:"content"`
	FileURL   StringArray `gorm:"type:text" json:"fileUrl"`
	Views     int64       `gorm:"not null;default:0" json:"views"`
	CreatedBy *string     `json:"createdBy,omitempty"`
	UpdatedBy *string     `json:"updatedBy,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// PostViewLog records the first view of a post by an identified user. The
// composite unique index makes a repeat view an insert conflict instead of a
// prior SELECT, so deduplication holds under concurrent requests.
type PostViewLog struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	PostID    uint      `gorm:"uniqueIndex:idx_post_viewer;not null" json:"postId"`
	Username  string    `gorm:"uniqueIndex:idx_post_viewer;not null" json:"username"`
	UserAgent *string   `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Contact struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Reference string    `gorm:"uniqueIndex;size:36;not null" json:"reference"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Phone     string    `json:"phone"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	Status    string    `gorm:"not null;default:pending" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// All lists every model for AutoMigrate.
func All() []any {
	return []any{&User{}, &Post{}, &PostViewLog{}, &Contact{}}
}
