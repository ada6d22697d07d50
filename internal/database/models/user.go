package models

import "time"

// User is a Telegram user the bot has seen at least once.
type User struct {
	UserID    int64     `bson:"user_id"`
	Username  string    `bson:"username"`
	FirstSeen time.Time `bson:"first_seen"`
	LastSeen  time.Time `bson:"last_seen"`
}
