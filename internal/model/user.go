package model

// User stores Telegram user metadata.
type User struct {
	ID         uint   `gorm:"primaryKey"`
	Username   string `gorm:"uniqueIndex"`
	FirstName  string
	LastName   string
	TelegramID int64
	ChatID     int64
}
