package models

import "time"

// PremiumMember marks a user as premium. Presence of the record is the premium status.
type PremiumMember struct {
	UserID    int64     `bson:"user_id"`
	AddedDate time.Time `bson:"added_date"`
	AddedBy   int64     `bson:"added_by"`
}

// Ban blocks every bot interaction for the user.
type Ban struct {
	UserID     int64     `bson:"user_id"`
	BannedDate time.Time `bson:"banned_date"`
	BannedBy   int64     `bson:"banned_by"`
}
