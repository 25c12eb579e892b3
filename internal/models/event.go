package models

import "fmt"

// RsvpStatus is a user's answer to an event.
type RsvpStatus string

const (
	RsvpGoing    RsvpStatus = "going"
	RsvpMaybe    RsvpStatus = "maybe"
	RsvpNotGoing RsvpStatus = "not_going"
)

// ParseRsvpStatus validates an RSVP status.
func ParseRsvpStatus(s string) (RsvpStatus, error) {
	switch st := RsvpStatus(s); st {
	case RsvpGoing, RsvpMaybe, RsvpNotGoing:
		return st, nil
	}
	return "", fmt.Errorf("unknown rsvp status %q", s)
}

// EventRsvp is unique per (channel, user).
type EventRsvp struct {
	ChannelID string
	UserID    string
	Status    RsvpStatus
	UpdatedAt int64
}

// ChecklistItem is a to-do entry on an event.
type ChecklistItem struct {
	ID          string
	ChannelID   string
	Item        string
	AssignedTo  string
	IsCompleted bool
	CreatedBy   string
	CreatedAt   int64
}

// BookingStatus is shared by flights and accommodations.
type BookingStatus string

const (
	BookingOption BookingStatus = "option"
	BookingBooked BookingStatus = "booked"
)

// ParseBookingStatus validates a booking status.
func ParseBookingStatus(s string) (BookingStatus, error) {
	switch st := BookingStatus(s); st {
	case BookingOption, BookingBooked:
		return st, nil
	}
	return "", fmt.Errorf("unknown booking status %q", s)
}

// Flight is a proposed or booked flight for an event.
type Flight struct {
	ID               string
	ChannelID        string
	CreatedBy        string
	Airline          string
	FlightNumber     string
	DepartureAirport string
	ArrivalAirport   string
	DepartureTime    int64
	ArrivalTime      int64
	Status           BookingStatus
	Passengers       []string
	Notes            string
	CreatedAt        int64
}

// AccommodationType is a closed set of lodging kinds.
type AccommodationType string

const (
	AccommodationAirbnb AccommodationType = "airbnb"
	AccommodationHotel  AccommodationType = "hotel"
	AccommodationHostel AccommodationType = "hostel"
	AccommodationOther  AccommodationType = "other"
)

// ParseAccommodationType validates a lodging kind.
func ParseAccommodationType(s string) (AccommodationType, error) {
	switch t := AccommodationType(s); t {
	case AccommodationAirbnb, AccommodationHotel, AccommodationHostel, AccommodationOther:
		return t, nil
	}
	return "", fmt.Errorf("unknown accommodation type %q", s)
}

// Accommodation is a proposed or booked place to stay.
type Accommodation struct {
	ID            string
	ChannelID     string
	CreatedBy     string
	Name          string
	Type          AccommodationType
	Address       string
	CheckIn       int64
	CheckOut      int64
	BookingLink   string
	PricePerNight int64
	TotalPrice    int64
	Status        BookingStatus
	Guests        []string
	Notes         string
	CreatedAt     int64
}
