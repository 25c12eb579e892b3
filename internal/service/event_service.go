package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/emptypb"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/storage"
	"github.com/mmynk/crewchat/pkg/api"
)

// EventService implements the Connect EventService: RSVPs, the packing
// checklist and shared travel plans of an event channel.
type EventService struct {
	store storage.Store
}

func NewEventService(store storage.Store) *EventService {
	return &EventService{store: store}
}

func addID(ids []string, id string) []string {
	if slices.Contains(ids, id) {
		return ids
	}
	return append(ids, id)
}

func removeID(ids []string, id string) []string {
	return slices.DeleteFunc(slices.Clone(ids), func(x string) bool { return x == id })
}

func bookingStatus(s string) (models.BookingStatus, error) {
	if s == "" {
		return models.BookingOption, nil
	}
	st, err := models.ParseBookingStatus(s)
	if err != nil {
		return "", apperr.Invalid(err.Error())
	}
	return st, nil
}

// SetRsvp records the caller's answer. Going RSVPs share unclaimed split
// remainders.
func (s *EventService) SetRsvp(ctx context.Context, req *connect.Request[api.SetRsvpRequest]) (*connect.Response[api.RsvpResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	status, err := models.ParseRsvpStatus(msg.Status)
	if err != nil {
		return nil, fail("SetRsvp", apperr.Invalid(err.Error()))
	}

	rsvp := &models.EventRsvp{ChannelID: msg.ChannelID, UserID: user.ID, Status: status}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		return q.UpsertRsvp(ctx, rsvp)
	})
	if err != nil {
		return nil, fail("SetRsvp", err, "channel_id", msg.ChannelID)
	}
	slog.Info("RSVP set", "channel_id", msg.ChannelID, "user_id", user.ID, "status", status)
	return connect.NewResponse(&api.RsvpResponse{Rsvp: toAPIRsvp(rsvp)}), nil
}

func (s *EventService) ListRsvps(ctx context.Context, req *connect.Request[api.EventChannelRequest]) (*connect.Response[api.ListRsvpsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListRsvps", err, "channel_id", channelID)
	}
	rsvps, err := s.store.ListRsvps(ctx, channelID)
	if err != nil {
		return nil, fail("ListRsvps", err, "channel_id", channelID)
	}
	out := make([]*api.Rsvp, len(rsvps))
	for i, r := range rsvps {
		out[i] = toAPIRsvp(r)
	}
	return connect.NewResponse(&api.ListRsvpsResponse{Rsvps: out}), nil
}

func (s *EventService) AddChecklistItem(ctx context.Context, req *connect.Request[api.AddChecklistItemRequest]) (*connect.Response[api.ChecklistItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	text := strings.TrimSpace(msg.Item)
	if text == "" {
		return nil, fail("AddChecklistItem", apperr.Invalid("checklist item cannot be empty"))
	}

	item := &models.ChecklistItem{
		ChannelID:  msg.ChannelID,
		Item:       text,
		AssignedTo: msg.AssignedTo,
		CreatedBy:  user.ID,
	}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		channel, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember)
		if err != nil {
			return err
		}
		if item.AssignedTo != "" {
			_, err := q.GetMembership(ctx, channel.GroupID, item.AssignedTo)
			if errors.Is(err, apperr.ErrNotFound) {
				return apperr.Invalid("assignee is not a group member")
			}
			if err != nil {
				return err
			}
		}
		return q.CreateChecklistItem(ctx, item)
	})
	if err != nil {
		return nil, fail("AddChecklistItem", err, "channel_id", msg.ChannelID)
	}
	return connect.NewResponse(&api.ChecklistItemResponse{Item: toAPIChecklistItem(item)}), nil
}

func (s *EventService) SetChecklistItemCompleted(ctx context.Context, req *connect.Request[api.SetChecklistItemCompletedRequest]) (*connect.Response[api.ChecklistItemResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg

	var item *models.ChecklistItem
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		it, err := q.GetChecklistItem(ctx, msg.ItemID)
		if err != nil {
			return err
		}
		if _, _, err := channelAccess(ctx, q, it.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if err := q.SetChecklistItemCompleted(ctx, it.ID, msg.Completed); err != nil {
			return err
		}
		it.IsCompleted = msg.Completed
		item = it
		return nil
	})
	if err != nil {
		return nil, fail("SetChecklistItemCompleted", err, "item_id", msg.ItemID)
	}
	return connect.NewResponse(&api.ChecklistItemResponse{Item: toAPIChecklistItem(item)}), nil
}

func (s *EventService) ListChecklist(ctx context.Context, req *connect.Request[api.EventChannelRequest]) (*connect.Response[api.ListChecklistResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListChecklist", err, "channel_id", channelID)
	}
	items, err := s.store.ListChecklist(ctx, channelID)
	if err != nil {
		return nil, fail("ListChecklist", err, "channel_id", channelID)
	}
	out := make([]*api.ChecklistItem, len(items))
	for i, it := range items {
		out[i] = toAPIChecklistItem(it)
	}
	return connect.NewResponse(&api.ListChecklistResponse{Items: out}), nil
}

// AddFlight proposes a flight. The caller is its first passenger.
func (s *EventService) AddFlight(ctx context.Context, req *connect.Request[api.AddFlightRequest]) (*connect.Response[api.FlightResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	status, err := bookingStatus(msg.Status)
	if err != nil {
		return nil, fail("AddFlight", err)
	}

	flight := &models.Flight{
		ChannelID:        msg.ChannelID,
		CreatedBy:        user.ID,
		Airline:          msg.Airline,
		FlightNumber:     msg.FlightNumber,
		DepartureAirport: strings.ToUpper(msg.DepartureAirport),
		ArrivalAirport:   strings.ToUpper(msg.ArrivalAirport),
		DepartureTime:    msg.DepartureTime,
		ArrivalTime:      msg.ArrivalTime,
		Status:           status,
		Passengers:       []string{user.ID},
		Notes:            msg.Notes,
	}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		return q.CreateFlight(ctx, flight)
	})
	if err != nil {
		return nil, fail("AddFlight", err, "channel_id", msg.ChannelID)
	}
	slog.Info("Flight added", "flight_id", flight.ID, "channel_id", flight.ChannelID)
	return connect.NewResponse(&api.FlightResponse{Flight: toAPIFlight(flight)}), nil
}

// flightOp loads a flight, checks membership and runs op on it.
func (s *EventService) flightOp(ctx context.Context, name, flightID string, creatorOnly bool, op func(q storage.Queries, f *models.Flight, userID string) error) (*models.Flight, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	var flight *models.Flight
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		f, err := q.GetFlight(ctx, flightID)
		if err != nil {
			return err
		}
		if _, _, err := channelAccess(ctx, q, f.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if creatorOnly && f.CreatedBy != user.ID {
			return apperr.Denied("only the creator can change this flight")
		}
		flight = f
		return op(q, f, user.ID)
	})
	if err != nil {
		return nil, fail(name, err, "flight_id", flightID)
	}
	return flight, nil
}

func (s *EventService) JoinFlight(ctx context.Context, req *connect.Request[api.FlightRequest]) (*connect.Response[api.FlightResponse], error) {
	f, err := s.flightOp(ctx, "JoinFlight", req.Msg.FlightID, false, func(q storage.Queries, f *models.Flight, userID string) error {
		f.Passengers = addID(f.Passengers, userID)
		return q.SetFlightPassengers(ctx, f.ID, f.Passengers)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.FlightResponse{Flight: toAPIFlight(f)}), nil
}

func (s *EventService) LeaveFlight(ctx context.Context, req *connect.Request[api.FlightRequest]) (*connect.Response[api.FlightResponse], error) {
	f, err := s.flightOp(ctx, "LeaveFlight", req.Msg.FlightID, false, func(q storage.Queries, f *models.Flight, userID string) error {
		f.Passengers = removeID(f.Passengers, userID)
		return q.SetFlightPassengers(ctx, f.ID, f.Passengers)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.FlightResponse{Flight: toAPIFlight(f)}), nil
}

// UpdateFlightStatus moves a flight between option and booked. Creator only.
func (s *EventService) UpdateFlightStatus(ctx context.Context, req *connect.Request[api.UpdateFlightStatusRequest]) (*connect.Response[api.FlightResponse], error) {
	status, err := models.ParseBookingStatus(req.Msg.Status)
	if err != nil {
		return nil, fail("UpdateFlightStatus", apperr.Invalid(err.Error()))
	}
	f, err := s.flightOp(ctx, "UpdateFlightStatus", req.Msg.FlightID, true, func(q storage.Queries, f *models.Flight, _ string) error {
		f.Status = status
		return q.SetFlightStatus(ctx, f.ID, status)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.FlightResponse{Flight: toAPIFlight(f)}), nil
}

// DeleteFlight removes a flight. Creator only.
func (s *EventService) DeleteFlight(ctx context.Context, req *connect.Request[api.FlightRequest]) (*connect.Response[emptypb.Empty], error) {
	_, err := s.flightOp(ctx, "DeleteFlight", req.Msg.FlightID, true, func(q storage.Queries, f *models.Flight, _ string) error {
		return q.DeleteFlight(ctx, f.ID)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *EventService) ListFlights(ctx context.Context, req *connect.Request[api.EventChannelRequest]) (*connect.Response[api.ListFlightsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListFlights", err, "channel_id", channelID)
	}
	flights, err := s.store.ListFlights(ctx, channelID)
	if err != nil {
		return nil, fail("ListFlights", err, "channel_id", channelID)
	}
	out := make([]*api.Flight, len(flights))
	for i, f := range flights {
		out[i] = toAPIFlight(f)
	}
	return connect.NewResponse(&api.ListFlightsResponse{Flights: out}), nil
}

// AddAccommodation proposes a place to stay. The caller is its first guest.
func (s *EventService) AddAccommodation(ctx context.Context, req *connect.Request[api.AddAccommodationRequest]) (*connect.Response[api.AccommodationResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	msg := req.Msg
	typ, err := models.ParseAccommodationType(msg.Type)
	if err != nil {
		return nil, fail("AddAccommodation", apperr.Invalid(err.Error()))
	}
	status, err := bookingStatus(msg.Status)
	if err != nil {
		return nil, fail("AddAccommodation", err)
	}
	if msg.CheckOut <= msg.CheckIn {
		return nil, fail("AddAccommodation", apperr.Invalid("check-out must be after check-in"))
	}

	acc := &models.Accommodation{
		ChannelID:     msg.ChannelID,
		CreatedBy:     user.ID,
		Name:          msg.Name,
		Type:          typ,
		Address:       msg.Address,
		CheckIn:       msg.CheckIn,
		CheckOut:      msg.CheckOut,
		BookingLink:   msg.BookingLink,
		PricePerNight: msg.PricePerNight,
		TotalPrice:    msg.TotalPrice,
		Status:        status,
		Guests:        []string{user.ID},
		Notes:         msg.Notes,
	}
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		if _, _, err := channelAccess(ctx, q, msg.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		return q.CreateAccommodation(ctx, acc)
	})
	if err != nil {
		return nil, fail("AddAccommodation", err, "channel_id", msg.ChannelID)
	}
	slog.Info("Accommodation added", "accommodation_id", acc.ID, "channel_id", acc.ChannelID)
	return connect.NewResponse(&api.AccommodationResponse{Accommodation: toAPIAccommodation(acc)}), nil
}

// accommodationOp loads an accommodation, checks membership and runs op on it.
func (s *EventService) accommodationOp(ctx context.Context, name, accID string, creatorOnly bool, op func(q storage.Queries, a *models.Accommodation, userID string) error) (*models.Accommodation, error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	var acc *models.Accommodation
	err = s.store.RunInTx(ctx, func(q storage.Queries) error {
		a, err := q.GetAccommodation(ctx, accID)
		if err != nil {
			return err
		}
		if _, _, err := channelAccess(ctx, q, a.ChannelID, user.ID, models.RoleMember); err != nil {
			return err
		}
		if creatorOnly && a.CreatedBy != user.ID {
			return apperr.Denied("only the creator can change this accommodation")
		}
		acc = a
		return op(q, a, user.ID)
	})
	if err != nil {
		return nil, fail(name, err, "accommodation_id", accID)
	}
	return acc, nil
}

func (s *EventService) JoinAccommodation(ctx context.Context, req *connect.Request[api.AccommodationRequest]) (*connect.Response[api.AccommodationResponse], error) {
	a, err := s.accommodationOp(ctx, "JoinAccommodation", req.Msg.AccommodationID, false, func(q storage.Queries, a *models.Accommodation, userID string) error {
		a.Guests = addID(a.Guests, userID)
		return q.SetAccommodationGuests(ctx, a.ID, a.Guests)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AccommodationResponse{Accommodation: toAPIAccommodation(a)}), nil
}

func (s *EventService) LeaveAccommodation(ctx context.Context, req *connect.Request[api.AccommodationRequest]) (*connect.Response[api.AccommodationResponse], error) {
	a, err := s.accommodationOp(ctx, "LeaveAccommodation", req.Msg.AccommodationID, false, func(q storage.Queries, a *models.Accommodation, userID string) error {
		a.Guests = removeID(a.Guests, userID)
		return q.SetAccommodationGuests(ctx, a.ID, a.Guests)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AccommodationResponse{Accommodation: toAPIAccommodation(a)}), nil
}

// UpdateAccommodationStatus moves an accommodation between option and
// booked. Creator only.
func (s *EventService) UpdateAccommodationStatus(ctx context.Context, req *connect.Request[api.UpdateAccommodationStatusRequest]) (*connect.Response[api.AccommodationResponse], error) {
	status, err := models.ParseBookingStatus(req.Msg.Status)
	if err != nil {
		return nil, fail("UpdateAccommodationStatus", apperr.Invalid(err.Error()))
	}
	a, err := s.accommodationOp(ctx, "UpdateAccommodationStatus", req.Msg.AccommodationID, true, func(q storage.Queries, a *models.Accommodation, _ string) error {
		a.Status = status
		return q.SetAccommodationStatus(ctx, a.ID, status)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.AccommodationResponse{Accommodation: toAPIAccommodation(a)}), nil
}

// DeleteAccommodation removes an accommodation. Creator only.
func (s *EventService) DeleteAccommodation(ctx context.Context, req *connect.Request[api.AccommodationRequest]) (*connect.Response[emptypb.Empty], error) {
	_, err := s.accommodationOp(ctx, "DeleteAccommodation", req.Msg.AccommodationID, true, func(q storage.Queries, a *models.Accommodation, _ string) error {
		return q.DeleteAccommodation(ctx, a.ID)
	})
	if err != nil {
		return nil, err
	}
	return connect.NewResponse(&emptypb.Empty{}), nil
}

func (s *EventService) ListAccommodations(ctx context.Context, req *connect.Request[api.EventChannelRequest]) (*connect.Response[api.ListAccommodationsResponse], error) {
	user, err := currentUser(ctx)
	if err != nil {
		return nil, err
	}
	channelID := req.Msg.ChannelID
	if _, _, err := channelAccess(ctx, s.store, channelID, user.ID, models.RoleMember); err != nil {
		return nil, fail("ListAccommodations", err, "channel_id", channelID)
	}
	accs, err := s.store.ListAccommodations(ctx, channelID)
	if err != nil {
		return nil, fail("ListAccommodations", err, "channel_id", channelID)
	}
	out := make([]*api.Accommodation, len(accs))
	for i, a := range accs {
		out[i] = toAPIAccommodation(a)
	}
	return connect.NewResponse(&api.ListAccommodationsResponse{Accommodations: out}), nil
}
