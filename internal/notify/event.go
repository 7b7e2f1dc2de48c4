// Package notify carries schedule mutations between service instances
// over Redis pub/sub, standing in for the hosted change-feed the client
// used to subscribe to. Events are broadcast unfiltered; consumers
// filter on doctor id because the transport offers no server-side
// predicate.
package notify

import "time"

const (
	CollectionAppointments = "appointments"
	CollectionSlots        = "schedule_slots"

	channelPrefix = "changefeed:"
)

const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent describes one row mutation. DoctorID comes from the new
// row where one exists; OldDoctorID from the previous row on updates
// and deletes.
type ChangeEvent struct {
	Collection  string    `json:"collection"`
	Op          string    `json:"op"`
	RecordID    string    `json:"record_id,omitempty"`
	DoctorID    string    `json:"doctor_id,omitempty"`
	OldDoctorID string    `json:"old_doctor_id,omitempty"`
	At          time.Time `json:"at"`
}

// Matches reports whether the event concerns the given doctor, checking
// both the new and old row owner.
func (e ChangeEvent) Matches(doctorID string) bool {
	if doctorID == "" {
		return false
	}
	return e.DoctorID == doctorID || e.OldDoctorID == doctorID
}

func channelFor(collection string) string {
	return channelPrefix + collection
}
