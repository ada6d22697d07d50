package models

import "time"

// DefaultChannelName is used when neither Telegram nor the admin provided a title.
const DefaultChannelName = "Premium Channel"

// Channel is a restricted chat premium members get invited into.
// ChannelID is either a numeric chat id ("-100...") or a public username ("@name").
type Channel struct {
	ChannelID   string    `bson:"channel_id"`
	ChannelName string    `bson:"channel_name"`
	AddedDate   time.Time `bson:"added_date"`
	AddedBy     int64     `bson:"added_by"`
}
