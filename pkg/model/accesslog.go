package model

import "time"

// Dispatch audit actions. Records are append-only and never mutated.
const (
	ActionTriggerSent         = "trigger_sent"
	ActionTriggerFailed       = "trigger_failed"
	ActionDoorOpenedFeedback  = "door_opened_feedback"
	ActionPersistenceDeferred = "persistence_deferred"
)

// Dispatch audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AccessLog is a model of the persistency layer
type AccessLog struct {
	ID        string
	RoomName  string
	Action    string
	Outcome   string
	Detail    string
	Timestamp time.Time
	CreatedAt time.Time
}
