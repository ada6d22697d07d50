package models

import "time"

// BroadcastLog is the audit record of one premium broadcast.
type BroadcastLog struct {
	AdminID         int64     `bson:"admin_id"`
	MessageText     string    `bson:"message_text"`
	Timestamp       time.Time `bson:"timestamp"`
	TotalUsers      int       `bson:"total_users"`
	SuccessfulSends int       `bson:"successful_sends"`
	FailedSends     int       `bson:"failed_sends"`
}
