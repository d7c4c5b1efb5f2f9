package domain

import (
	"fmt"
	"time"
)

// Event is the serialized event payload received from the bookings provider.
type Event struct {
	Agenda        string    `json:"agenda"`
	Slug          string    `json:"slug"`
	PrimaryEvent  string    `json:"primary_event,omitempty"`
	Label         string    `json:"label"`
	StartDatetime time.Time `json:"start_datetime"`
}

// CombinedSlug returns "agenda@slug", using the primary event slug for
// occurrences of recurring events.
func (e Event) CombinedSlug() string {
	slug := e.Slug
	if e.PrimaryEvent != "" {
		slug = e.PrimaryEvent
	}
	return fmt.Sprintf("%s@%s", e.Agenda, slug)
}

// EventSlug returns "agenda@slug" with the occurrence's own slug.
func (e Event) EventSlug() string {
	return fmt.Sprintf("%s@%s", e.Agenda, e.Slug)
}

// Date returns the event occurrence date.
func (e Event) Date() time.Time {
	y, m, d := e.StartDatetime.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Booking is the serialized booking payload attached to a check status entry.
type Booking struct {
	ComputedDuration int64          `json:"computed_duration,omitempty"`
	AdjustedDuration int64          `json:"adjusted_duration,omitempty"`
	Extra            map[string]any `json:"extra_data,omitempty"`
}

// CheckStatus is the check result for one user and event occurrence.
type CheckStatus struct {
	Status    string `json:"status"`
	CheckType string `json:"check_type,omitempty"`
}

// CheckStatusEntry groups an event, its booking and its check status, as
// returned by the bookings provider for one user over a period.
type CheckStatusEntry struct {
	Event       Event       `json:"event"`
	Booking     Booking     `json:"booking"`
	CheckStatus CheckStatus `json:"check_status"`
}

// Agenda is the activity calendar owning events.
type Agenda struct {
	Slug            string
	Label           string
	PartialBookings bool
}

// CheckTypeKey identifies a check type within its group for a booking status.
type CheckTypeKey struct {
	Slug   string
	Group  string
	Status string
}

// CheckType describes a configured absence/presence check type. A group may
// designate one of its presence types as the "unexpected presence" type,
// which is billed instead of prepaid.
type CheckType struct {
	Slug               string
	Group              string
	Label              string
	Kind               string
	UnexpectedPresence bool
}

// CheckTypeIndex looks up check types by (slug, group, status).
type CheckTypeIndex map[CheckTypeKey]CheckType

// Find returns the check type configured for the given booking details.
func (idx CheckTypeIndex) Find(details BookingDetails) (CheckType, bool) {
	ct, ok := idx[CheckTypeKey{Slug: details.CheckType, Group: details.CheckTypeGroup, Status: details.Status}]
	return ct, ok
}

// Subscription links a user to an agenda over a period.
type Subscription struct {
	UserExternalID string `json:"user_external_id"`
	UserFirstName  string `json:"user_first_name"`
	UserLastName   string `json:"user_last_name"`
}

// User identifies one billed user of the population under a campaign.
type User struct {
	ExternalID string
	FirstName  string
	LastName   string
}
