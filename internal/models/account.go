package models

import (
	"time"
)

// Account is an admin console login. Distinct from User, which is an end
// user chatting with the bot.
type Account struct {
	ID           string    `json:"id" badgerhold:"key"` // acct_{uuid}
	Email        string    `json:"email" badgerhold:"index"`
	PasswordHash string    `json:"-"` // PBKDF2-SHA256, never serialized
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
