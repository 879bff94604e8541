package model

import "time"

type Attachment struct {
	URL       string `json:"url"`
	LocalPath string `json:"localPath"`
}

type Message struct {
	ID          string       `gorm:"primaryKey;type:uuid" json:"id"`
	ChatID      string       `gorm:"type:uuid;index;not null" json:"chatId"`
	SenderID    string       `gorm:"type:uuid;not null" json:"senderId"`
	Sender      *User        `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Content     string       `json:"content"`
	Attachments []Attachment `gorm:"serializer:json" json:"attachments"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}
