package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mmynk/crewchat/internal/apperr"
	"github.com/mmynk/crewchat/internal/models"
)

// UpsertRsvp creates or replaces a user's RSVP for an event channel.
func (q *queries) UpsertRsvp(ctx context.Context, rsvp *models.EventRsvp) error {
	if rsvp.UpdatedAt == 0 {
		rsvp.UpdatedAt = models.NowMillis()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO event_rsvps (channel_id, user_id, status, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (channel_id, user_id) DO UPDATE SET
			status = excluded.status,
			updated_at = excluded.updated_at`,
		rsvp.ChannelID, rsvp.UserID, string(rsvp.Status), rsvp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert rsvp: %w", err)
	}
	return nil
}

// ListRsvps returns every RSVP of an event channel.
func (q *queries) ListRsvps(ctx context.Context, channelID string) ([]*models.EventRsvp, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT channel_id, user_id, status, updated_at FROM event_rsvps
		WHERE channel_id = ? ORDER BY updated_at, user_id`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list rsvps: %w", err)
	}
	defer rows.Close()

	var rsvps []*models.EventRsvp
	for rows.Next() {
		r := &models.EventRsvp{}
		var status string
		if err := rows.Scan(&r.ChannelID, &r.UserID, &status, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan rsvp: %w", err)
		}
		r.Status = models.RsvpStatus(status)
		rsvps = append(rsvps, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rsvps: %w", err)
	}
	return rsvps, nil
}

// ListGoingUserIDs returns the users who answered "going", sorted by ID.
func (q *queries) ListGoingUserIDs(ctx context.Context, channelID string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT user_id FROM event_rsvps WHERE channel_id = ? AND status = 'going' ORDER BY user_id`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list going users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating going users: %w", err)
	}
	return ids, nil
}

// CreateChecklistItem inserts a checklist entry.
func (q *queries) CreateChecklistItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		item.ID = newID()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = models.NowMillis()
	}
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO event_checklist (id, channel_id, item, assigned_to, is_completed, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ChannelID, item.Item, nullable(item.AssignedTo),
		boolToInt(item.IsCompleted), item.CreatedBy, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create checklist item: %w", err)
	}
	return nil
}

const checklistColumns = `id, channel_id, item, assigned_to, is_completed, created_by, created_at`

// GetChecklistItem retrieves a checklist entry.
func (q *queries) GetChecklistItem(ctx context.Context, itemID string) (*models.ChecklistItem, error) {
	item, err := scanChecklistItem(q.db.QueryRowContext(ctx,
		`SELECT `+checklistColumns+` FROM event_checklist WHERE id = ?`, itemID))
	if isNoRows(err) {
		return nil, apperr.NotFound("checklist item", itemID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get checklist item: %w", err)
	}
	return item, nil
}

// SetChecklistItemCompleted toggles completion.
func (q *queries) SetChecklistItemCompleted(ctx context.Context, itemID string, completed bool) error {
	err := q.execOne(ctx, apperr.NotFound("checklist item", itemID),
		`UPDATE event_checklist SET is_completed = ? WHERE id = ?`, boolToInt(completed), itemID)
	if err != nil {
		return fmt.Errorf("failed to update checklist item: %w", err)
	}
	return nil
}

// ListChecklist returns an event's checklist in creation order.
func (q *queries) ListChecklist(ctx context.Context, channelID string) ([]*models.ChecklistItem, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+checklistColumns+` FROM event_checklist WHERE channel_id = ? ORDER BY created_at, rowid`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist: %w", err)
	}
	defer rows.Close()

	var items []*models.ChecklistItem
	for rows.Next() {
		item, err := scanChecklistItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist: %w", err)
	}
	return items, nil
}

const flightColumns = `id, channel_id, created_by, airline, flight_number, departure_airport,
	arrival_airport, departure_time, arrival_time, status, passengers, notes, created_at`

// CreateFlight inserts a flight. Passengers are stored as a JSON array.
func (q *queries) CreateFlight(ctx context.Context, f *models.Flight) error {
	if f.ID == "" {
		f.ID = newID()
	}
	if f.CreatedAt == 0 {
		f.CreatedAt = models.NowMillis()
	}
	passengers, err := encodeIDs(f.Passengers)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO event_flights (`+flightColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ChannelID, f.CreatedBy, f.Airline, f.FlightNumber, f.DepartureAirport,
		f.ArrivalAirport, f.DepartureTime, f.ArrivalTime, string(f.Status), passengers,
		nullable(f.Notes), f.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

// GetFlight retrieves a flight.
func (q *queries) GetFlight(ctx context.Context, flightID string) (*models.Flight, error) {
	f, err := scanFlight(q.db.QueryRowContext(ctx,
		`SELECT `+flightColumns+` FROM event_flights WHERE id = ?`, flightID))
	if isNoRows(err) {
		return nil, apperr.NotFound("flight", flightID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get flight: %w", err)
	}
	return f, nil
}

// ListFlights returns an event's flights by departure time.
func (q *queries) ListFlights(ctx context.Context, channelID string) ([]*models.Flight, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+flightColumns+` FROM event_flights WHERE channel_id = ? ORDER BY departure_time, created_at`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	defer rows.Close()

	var flights []*models.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan flight: %w", err)
		}
		flights = append(flights, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating flights: %w", err)
	}
	return flights, nil
}

// SetFlightPassengers replaces the passenger list.
func (q *queries) SetFlightPassengers(ctx context.Context, flightID string, passengers []string) error {
	encoded, err := encodeIDs(passengers)
	if err != nil {
		return err
	}
	err = q.execOne(ctx, apperr.NotFound("flight", flightID),
		`UPDATE event_flights SET passengers = ? WHERE id = ?`, encoded, flightID)
	if err != nil {
		return fmt.Errorf("failed to update flight passengers: %w", err)
	}
	return nil
}

// SetFlightStatus changes the booking status of a flight.
func (q *queries) SetFlightStatus(ctx context.Context, flightID string, status models.BookingStatus) error {
	err := q.execOne(ctx, apperr.NotFound("flight", flightID),
		`UPDATE event_flights SET status = ? WHERE id = ?`, string(status), flightID)
	if err != nil {
		return fmt.Errorf("failed to update flight status: %w", err)
	}
	return nil
}

// DeleteFlight removes a flight.
func (q *queries) DeleteFlight(ctx context.Context, flightID string) error {
	err := q.execOne(ctx, apperr.NotFound("flight", flightID),
		`DELETE FROM event_flights WHERE id = ?`, flightID)
	if err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	return nil
}

const accommodationColumns = `id, channel_id, created_by, name, type, address, check_in, check_out,
	booking_link, price_per_night, total_price, status, guests, notes, created_at`

// CreateAccommodation inserts a lodging option. Guests are stored as a JSON array.
func (q *queries) CreateAccommodation(ctx context.Context, a *models.Accommodation) error {
	if a.ID == "" {
		a.ID = newID()
	}
	if a.CreatedAt == 0 {
		a.CreatedAt = models.NowMillis()
	}
	guests, err := encodeIDs(a.Guests)
	if err != nil {
		return err
	}
	_, err = q.db.ExecContext(ctx,
		`INSERT INTO event_accommodations (`+accommodationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.ChannelID, a.CreatedBy, a.Name, string(a.Type), nullable(a.Address),
		nullableInt(a.CheckIn), nullableInt(a.CheckOut), nullable(a.BookingLink),
		nullableInt(a.PricePerNight), nullableInt(a.TotalPrice), string(a.Status), guests,
		nullable(a.Notes), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create accommodation: %w", err)
	}
	return nil
}

// GetAccommodation retrieves a lodging option.
func (q *queries) GetAccommodation(ctx context.Context, accID string) (*models.Accommodation, error) {
	a, err := scanAccommodation(q.db.QueryRowContext(ctx,
		`SELECT `+accommodationColumns+` FROM event_accommodations WHERE id = ?`, accID))
	if isNoRows(err) {
		return nil, apperr.NotFound("accommodation", accID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get accommodation: %w", err)
	}
	return a, nil
}

// ListAccommodations returns an event's lodging options in creation order.
func (q *queries) ListAccommodations(ctx context.Context, channelID string) ([]*models.Accommodation, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+accommodationColumns+` FROM event_accommodations WHERE channel_id = ? ORDER BY created_at, rowid`, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accommodations: %w", err)
	}
	defer rows.Close()

	var accs []*models.Accommodation
	for rows.Next() {
		a, err := scanAccommodation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan accommodation: %w", err)
		}
		accs = append(accs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating accommodations: %w", err)
	}
	return accs, nil
}

// SetAccommodationGuests replaces the guest list.
func (q *queries) SetAccommodationGuests(ctx context.Context, accID string, guests []string) error {
	encoded, err := encodeIDs(guests)
	if err != nil {
		return err
	}
	err = q.execOne(ctx, apperr.NotFound("accommodation", accID),
		`UPDATE event_accommodations SET guests = ? WHERE id = ?`, encoded, accID)
	if err != nil {
		return fmt.Errorf("failed to update accommodation guests: %w", err)
	}
	return nil
}

// SetAccommodationStatus changes the booking status.
func (q *queries) SetAccommodationStatus(ctx context.Context, accID string, status models.BookingStatus) error {
	err := q.execOne(ctx, apperr.NotFound("accommodation", accID),
		`UPDATE event_accommodations SET status = ? WHERE id = ?`, string(status), accID)
	if err != nil {
		return fmt.Errorf("failed to update accommodation status: %w", err)
	}
	return nil
}

// DeleteAccommodation removes a lodging option.
func (q *queries) DeleteAccommodation(ctx context.Context, accID string) error {
	err := q.execOne(ctx, apperr.NotFound("accommodation", accID),
		`DELETE FROM event_accommodations WHERE id = ?`, accID)
	if err != nil {
		return fmt.Errorf("failed to delete accommodation: %w", err)
	}
	return nil
}

func encodeIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode user ids: %w", err)
	}
	return string(b), nil
}

func decodeIDs(raw string) ([]string, error) {
	ids := []string{}
	if raw == "" {
		return ids, nil
	}
	if err := json.Unmarshal([]byte(raw), &ids); err != nil {
		return nil, fmt.Errorf("failed to decode user ids: %w", err)
	}
	return ids, nil
}

func scanChecklistItem(row rowScanner) (*models.ChecklistItem, error) {
	item := &models.ChecklistItem{}
	var (
		assigned  sql.NullString
		completed int
	)
	if err := row.Scan(&item.ID, &item.ChannelID, &item.Item, &assigned, &completed,
		&item.CreatedBy, &item.CreatedAt); err != nil {
		return nil, err
	}
	item.AssignedTo = assigned.String
	item.IsCompleted = completed != 0
	return item, nil
}

func scanFlight(row rowScanner) (*models.Flight, error) {
	f := &models.Flight{}
	var (
		status, passengers string
		notes              sql.NullString
	)
	if err := row.Scan(
		&f.ID, &f.ChannelID, &f.CreatedBy, &f.Airline, &f.FlightNumber, &f.DepartureAirport,
		&f.ArrivalAirport, &f.DepartureTime, &f.ArrivalTime, &status, &passengers, &notes, &f.CreatedAt,
	); err != nil {
		return nil, err
	}
	ids, err := decodeIDs(passengers)
	if err != nil {
		return nil, err
	}
	f.Status = models.BookingStatus(status)
	f.Passengers = ids
	f.Notes = notes.String
	return f, nil
}

func scanAccommodation(row rowScanner) (*models.Accommodation, error) {
	a := &models.Accommodation{}
	var (
		accType, status, guests   string
		address, link, notes      sql.NullString
		checkIn, checkOut         sql.NullInt64
		pricePerNight, totalPrice sql.NullInt64
	)
	if err := row.Scan(
		&a.ID, &a.ChannelID, &a.CreatedBy, &a.Name, &accType, &address, &checkIn, &checkOut,
		&link, &pricePerNight, &totalPrice, &status, &guests, &notes, &a.CreatedAt,
	); err != nil {
		return nil, err
	}
	ids, err := decodeIDs(guests)
	if err != nil {
		return nil, err
	}
	a.Type = models.AccommodationType(accType)
	a.Address = address.String
	a.CheckIn = checkIn.Int64
	a.CheckOut = checkOut.Int64
	a.BookingLink = link.String
	a.PricePerNight = pricePerNight.Int64
	a.TotalPrice = totalPrice.Int64
	a.Status = models.BookingStatus(status)
	a.Guests = ids
	a.Notes = notes.String
	return a, nil
}
