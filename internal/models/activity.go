package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ActivityKind names something a user did.
// Valid values are the Activity* constants below.
type ActivityKind string

const (
	ActivityUserRegistered ActivityKind = "user.registered"
	ActivitySessionStarted ActivityKind = "session.started"
	ActivitySessionEnded   ActivityKind = "session.ended"
	ActivityJournalCreated ActivityKind = "journal.created"
	ActivityEntryCreated   ActivityKind = "entry.created"
	ActivityEntryUpdated   ActivityKind = "entry.updated"
	ActivityEntryDeleted   ActivityKind = "entry.deleted"
)

// Activity is stored in MongoDB, one document per event.
type Activity struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Kind      ActivityKind       `bson:"kind" json:"kind"`
	UserID    string             `bson:"user_id" json:"user_id"`
	SubjectID string             `bson:"subject_id,omitempty" json:"subject_id,omitempty"`
	IPAddress string             `bson:"ip_address,omitempty" json:"ip_address,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
