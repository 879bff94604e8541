package model

import "time"

type Chat struct {
	ID            string    `gorm:"primaryKey;type:uuid" json:"id"`
	Name          string    `gorm:"not null" json:"name"`
	IsGroupChat   bool      `gorm:"default:false" json:"isGroupChat"`
	AdminID       string    `gorm:"type:uuid" json:"adminId"`
	LastMessageID *string   `gorm:"type:uuid" json:"lastMessageId"`
	Participants  []User    `gorm:"many2many:chat_participants" json:"participants"`
	LastMessage   *Message  `gorm:"foreignKey:LastMessageID" json:"lastMessage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (c *Chat) IsParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// ParticipantIDs returns the user ids of every participant.
func (c *Chat) ParticipantIDs() []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		ids = append(ids, p.ID)
	}
	return ids
}

// OtherParticipantIDs returns every participant id except the given one.
// The live layer uses these as identity-room keys for fan-out.
func (c *Chat) OtherParticipantIDs(userID string) []string {
	ids := make([]string, 0, len(c.Participants))
	for _, p := range c.Participants {
		if p.ID == userID {
			continue
		}
		ids = append(ids, p.ID)
	}
	return ids
}
