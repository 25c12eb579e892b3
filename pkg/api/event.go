package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"
)

const (
	EventServiceName = "crewchat.v1.EventService"

	EventServiceSetRsvpProcedure                   = "/crewchat.v1.EventService/SetRsvp"
	EventServiceListRsvpsProcedure                 = "/crewchat.v1.EventService/ListRsvps"
	EventServiceAddChecklistItemProcedure          = "/crewchat.v1.EventService/AddChecklistItem"
	EventServiceSetChecklistItemCompletedProcedure = "/crewchat.v1.EventService/SetChecklistItemCompleted"
	EventServiceListChecklistProcedure             = "/crewchat.v1.EventService/ListChecklist"
	EventServiceAddFlightProcedure                 = "/crewchat.v1.EventService/AddFlight"
	EventServiceJoinFlightProcedure                = "/crewchat.v1.EventService/JoinFlight"
	EventServiceLeaveFlightProcedure               = "/crewchat.v1.EventService/LeaveFlight"
	EventServiceUpdateFlightStatusProcedure        = "/crewchat.v1.EventService/UpdateFlightStatus"
	EventServiceDeleteFlightProcedure              = "/crewchat.v1.EventService/DeleteFlight"
	EventServiceListFlightsProcedure               = "/crewchat.v1.EventService/ListFlights"
	EventServiceAddAccommodationProcedure          = "/crewchat.v1.EventService/AddAccommodation"
	EventServiceJoinAccommodationProcedure         = "/crewchat.v1.EventService/JoinAccommodation"
	EventServiceLeaveAccommodationProcedure        = "/crewchat.v1.EventService/LeaveAccommodation"
	EventServiceUpdateAccommodationStatusProcedure = "/crewchat.v1.EventService/UpdateAccommodationStatus"
	EventServiceDeleteAccommodationProcedure       = "/crewchat.v1.EventService/DeleteAccommodation"
	EventServiceListAccommodationsProcedure        = "/crewchat.v1.EventService/ListAccommodations"
)

// EventChannelRequest addresses one event channel.
type EventChannelRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
}

type SetRsvpRequest struct {
	ChannelID string `json:"channelId" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=going maybe not_going"`
}

type RsvpResponse struct {
	Rsvp *Rsvp `json:"rsvp"`
}

type ListRsvpsResponse struct {
	Rsvps []*Rsvp `json:"rsvps"`
}

type AddChecklistItemRequest struct {
	ChannelID  string `json:"channelId" validate:"required"`
	Item       string `json:"item" validate:"required,max=200"`
	AssignedTo string `json:"assignedTo"`
}

type SetChecklistItemCompletedRequest struct {
	ItemID    string `json:"itemId" validate:"required"`
	Completed bool   `json:"completed"`
}

type ChecklistItemResponse struct {
	Item *ChecklistItem `json:"item"`
}

type ListChecklistResponse struct {
	Items []*ChecklistItem `json:"items"`
}

type AddFlightRequest struct {
	ChannelID        string `json:"channelId" validate:"required"`
	Airline          string `json:"airline" validate:"required,max=100"`
	FlightNumber     string `json:"flightNumber" validate:"max=20"`
	DepartureAirport string `json:"departureAirport" validate:"required,max=10"`
	ArrivalAirport   string `json:"arrivalAirport" validate:"required,max=10"`
	DepartureTime    int64  `json:"departureTime" validate:"gt=0"`
	ArrivalTime      int64  `json:"arrivalTime" validate:"min=0"`
	Status           string `json:"status" validate:"omitempty,oneof=option booked"`
	Notes            string `json:"notes" validate:"max=1000"`
}

type FlightRequest struct {
	FlightID string `json:"flightId" validate:"required"`
}

type UpdateFlightStatusRequest struct {
	FlightID string `json:"flightId" validate:"required"`
	Status   string `json:"status" validate:"required,oneof=option booked"`
}

type FlightResponse struct {
	Flight *Flight `json:"flight"`
}

type ListFlightsResponse struct {
	Flights []*Flight `json:"flights"`
}

type AddAccommodationRequest struct {
	ChannelID     string `json:"channelId" validate:"required"`
	Name          string `json:"name" validate:"required,max=200"`
	Type          string `json:"type" validate:"required,oneof=airbnb hotel hostel other"`
	Address       string `json:"address" validate:"max=300"`
	CheckIn       int64  `json:"checkIn" validate:"gt=0"`
	CheckOut      int64  `json:"checkOut" validate:"gtfield=CheckIn"`
	BookingLink   string `json:"bookingLink" validate:"omitempty,url"`
	PricePerNight int64  `json:"pricePerNight" validate:"min=0"`
	TotalPrice    int64  `json:"totalPrice" validate:"min=0"`
	Status        string `json:"status" validate:"omitempty,oneof=option booked"`
	Notes         string `json:"notes" validate:"max=1000"`
}

type AccommodationRequest struct {
	AccommodationID string `json:"accommodationId" validate:"required"`
}

type UpdateAccommodationStatusRequest struct {
	AccommodationID string `json:"accommodationId" validate:"required"`
	Status          string `json:"status" validate:"required,oneof=option booked"`
}

type AccommodationResponse struct {
	Accommodation *Accommodation `json:"accommodation"`
}

type ListAccommodationsResponse struct {
	Accommodations []*Accommodation `json:"accommodations"`
}

type EventServiceHandler interface {
	SetRsvp(context.Context, *connect.Request[SetRsvpRequest]) (*connect.Response[RsvpResponse], error)
	ListRsvps(context.Context, *connect.Request[EventChannelRequest]) (*connect.Response[ListRsvpsResponse], error)

	AddChecklistItem(context.Context, *connect.Request[AddChecklistItemRequest]) (*connect.Response[ChecklistItemResponse], error)
	SetChecklistItemCompleted(context.Context, *connect.Request[SetChecklistItemCompletedRequest]) (*connect.Response[ChecklistItemResponse], error)
	ListChecklist(context.Context, *connect.Request[EventChannelRequest]) (*connect.Response[ListChecklistResponse], error)

	AddFlight(context.Context, *connect.Request[AddFlightRequest]) (*connect.Response[FlightResponse], error)
	JoinFlight(context.Context, *connect.Request[FlightRequest]) (*connect.Response[FlightResponse], error)
	LeaveFlight(context.Context, *connect.Request[FlightRequest]) (*connect.Response[FlightResponse], error)
	UpdateFlightStatus(context.Context, *connect.Request[UpdateFlightStatusRequest]) (*connect.Response[FlightResponse], error)
	DeleteFlight(context.Context, *connect.Request[FlightRequest]) (*connect.Response[emptypb.Empty], error)
	ListFlights(context.Context, *connect.Request[EventChannelRequest]) (*connect.Response[ListFlightsResponse], error)

	AddAccommodation(context.Context, *connect.Request[AddAccommodationRequest]) (*connect.Response[AccommodationResponse], error)
	JoinAccommodation(context.Context, *connect.Request[AccommodationRequest]) (*connect.Response[AccommodationResponse], error)
	LeaveAccommodation(context.Context, *connect.Request[AccommodationRequest]) (*connect.Response[AccommodationResponse], error)
	UpdateAccommodationStatus(context.Context, *connect.Request[UpdateAccommodationStatusRequest]) (*connect.Response[AccommodationResponse], error)
	DeleteAccommodation(context.Context, *connect.Request[AccommodationRequest]) (*connect.Response[emptypb.Empty], error)
	ListAccommodations(context.Context, *connect.Request[EventChannelRequest]) (*connect.Response[ListAccommodationsResponse], error)
}

// NewEventServiceHandler returns the mount path and handler for svc.
func NewEventServiceHandler(svc EventServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, EventServiceSetRsvpProcedure, svc.SetRsvp, opts)
	route(mux, EventServiceListRsvpsProcedure, svc.ListRsvps, opts)
	route(mux, EventServiceAddChecklistItemProcedure, svc.AddChecklistItem, opts)
	route(mux, EventServiceSetChecklistItemCompletedProcedure, svc.SetChecklistItemCompleted, opts)
	route(mux, EventServiceListChecklistProcedure, svc.ListChecklist, opts)
	route(mux, EventServiceAddFlightProcedure, svc.AddFlight, opts)
	route(mux, EventServiceJoinFlightProcedure, svc.JoinFlight, opts)
	route(mux, EventServiceLeaveFlightProcedure, svc.LeaveFlight, opts)
	route(mux, EventServiceUpdateFlightStatusProcedure, svc.UpdateFlightStatus, opts)
	route(mux, EventServiceDeleteFlightProcedure, svc.DeleteFlight, opts)
	route(mux, EventServiceListFlightsProcedure, svc.ListFlights, opts)
	route(mux, EventServiceAddAccommodationProcedure, svc.AddAccommodation, opts)
	route(mux, EventServiceJoinAccommodationProcedure, svc.JoinAccommodation, opts)
	route(mux, EventServiceLeaveAccommodationProcedure, svc.LeaveAccommodation, opts)
	route(mux, EventServiceUpdateAccommodationStatusProcedure, svc.UpdateAccommodationStatus, opts)
	route(mux, EventServiceDeleteAccommodationProcedure, svc.DeleteAccommodation, opts)
	route(mux, EventServiceListAccommodationsProcedure, svc.ListAccommodations, opts)
	return "/" + EventServiceName + "/", mux
}
