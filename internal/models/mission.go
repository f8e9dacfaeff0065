package models

import "time"

// MissionStatus represents the state of an agent assignment
type MissionStatus string

const (
	MissionStatusPending   MissionStatus = "PENDING"
	MissionStatusAccepted  MissionStatus = "ACCEPTED"
	MissionStatusCompleted MissionStatus = "COMPLETED"
	MissionStatusCancelled MissionStatus = "CANCELLED"
)

// Mission links a property to the agent who facilitated its lease.
// Read-only input to the split: an ACCEPTED or COMPLETED mission on the
// lease's property means an agent commission applies.
type Mission struct {
	ID         int           `json:"id"`
	PropertyID int           `json:"property_id"`
	AgentID    int           `json:"agent_id"`
	Status     MissionStatus `json:"status"`
	CreatedAt  time.Time     `json:"created_at"`
}
