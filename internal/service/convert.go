package service

import (
	"github.com/mmynk/crewchat/internal/models"
	"github.com/mmynk/crewchat/internal/reactions"
	"github.com/mmynk/crewchat/pkg/api"
)

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:          u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		Username:    u.Username,
		CreatedAt:   u.CreatedAt,
	}
}

func toAPIGroup(g *models.Group) *api.Group {
	return &api.Group{
		ID:                  g.ID,
		Name:                g.Name,
		CreatedBy:           g.CreatedBy,
		CreatedAt:           g.CreatedAt,
		InviteCode:          g.InviteCode,
		HallOfFameThreshold: g.Threshold(),
		SenpaiEnabled:       g.SenpaiEnabled,
		SenpaiFrequency:     string(g.SenpaiFrequency),
		SenpaiPersonality:   g.SenpaiPersonality,
	}
}

func toAPIMembers(members []*models.Member) []*api.Member {
	out := make([]*api.Member, len(members))
	for i, m := range members {
		out[i] = &api.Member{
			UserID:       m.UserID,
			DisplayName:  m.DisplayName,
			Username:     m.Username,
			Role:         string(m.Role),
			JoinedAt:     m.JoinedAt,
			LastActiveAt: m.LastActiveAt,
		}
	}
	return out
}

func toAPIChannel(c *models.Channel) *api.Channel {
	return &api.Channel{
		ID:              c.ID,
		GroupID:         c.GroupID,
		Name:            c.Name,
		Icon:            c.Icon,
		Type:            string(c.Type),
		CreatedBy:       c.CreatedBy,
		CreatedAt:       c.CreatedAt,
		ParentChannelID: c.ParentChannelID,
		ParentMessageID: c.ParentMessageID,
		ForkDepth:       c.ForkDepth,
		IsArchived:      c.IsArchived,
		ArchivedAt:      c.ArchivedAt,
		EventDate:       c.EventDate,
		EventEndDate:    c.EventEndDate,
		EventLocation:   c.EventLocation,
		BracketQuestion: c.BracketQuestion,
		BracketStatus:   c.BracketStatus,
	}
}

func toAPIMessage(m *models.Message) *api.Message {
	return &api.Message{
		ID:                m.ID,
		ChannelID:         m.ChannelID,
		AuthorID:          m.AuthorID,
		Body:              m.Body,
		CreatedAt:         m.CreatedAt,
		EditedAt:          m.EditedAt,
		IsDeleted:         m.IsDeleted,
		ThreadParentID:    m.ThreadParentID,
		ThreadReplyCount:  m.ThreadReplyCount,
		ThreadLastReplyAt: m.ThreadLastReplyAt,
		ForkedToChannelID: m.ForkedToChannelID,
		MessageType:       string(m.MessageType),
		SenpaiTrigger:     m.SenpaiTrigger,
	}
}

func toAPISummaries(summaries []reactions.Summary) []api.ReactionSummary {
	out := make([]api.ReactionSummary, len(summaries))
	for i, s := range summaries {
		out[i] = api.ReactionSummary{Emoji: s.Emoji, Count: s.Count, UserIDs: s.UserIDs}
	}
	return out
}

func toAPIPin(p *models.Pin) *api.Pin {
	return &api.Pin{
		ID:        p.ID,
		ChannelID: p.ChannelID,
		MessageID: p.MessageID,
		PinnedBy:  p.PinnedBy,
		PinnedAt:  p.PinnedAt,
	}
}

func toAPIHallOfFame(e *models.HallOfFameEntry) *api.HallOfFameEntry {
	return &api.HallOfFameEntry{
		ID:          e.ID,
		GroupID:     e.GroupID,
		MessageID:   e.MessageID,
		ChannelID:   e.ChannelID,
		AuthorID:    e.AuthorID,
		Body:        e.Body,
		TrophyCount: e.TrophyCount,
		EnshrinedAt: e.EnshrinedAt,
	}
}

func toAPISplitItem(item *models.SplitItem) *api.SplitItem {
	claimed := item.ClaimedBy
	if claimed == nil {
		claimed = []string{}
	}
	return &api.SplitItem{
		ID:        item.ID,
		SplitID:   item.SplitID,
		Name:      item.Name,
		Price:     item.Price,
		Quantity:  item.Quantity,
		ClaimedBy: claimed,
	}
}

func toAPISplit(s *models.Split) *api.Split {
	items := make([]api.SplitItem, len(s.Items))
	for i := range s.Items {
		items[i] = *toAPISplitItem(&s.Items[i])
	}
	return &api.Split{
		ID:          s.ID,
		ChannelID:   s.ChannelID,
		GroupID:     s.GroupID,
		Name:        s.Name,
		TotalAmount: s.TotalAmount,
		TaxAmount:   s.TaxAmount,
		TipAmount:   s.TipAmount,
		CreatedBy:   s.CreatedBy,
		CreatedAt:   s.CreatedAt,
		Status:      string(s.Status),
		Items:       items,
	}
}

func toAPIBalance(b *models.SplitBalance) *api.Balance {
	return &api.Balance{
		ID:         b.ID,
		SplitID:    b.SplitID,
		ChannelID:  b.ChannelID,
		GroupID:    b.GroupID,
		FromUserID: b.FromUserID,
		ToUserID:   b.ToUserID,
		Amount:     b.Amount,
		IsPaid:     b.IsPaid,
		PaidAt:     b.PaidAt,
	}
}

func toAPIBalances(balances []*models.SplitBalance) []*api.Balance {
	out := make([]*api.Balance, len(balances))
	for i, b := range balances {
		out[i] = toAPIBalance(b)
	}
	return out
}

func toAPIRsvp(r *models.EventRsvp) *api.Rsvp {
	return &api.Rsvp{
		ChannelID: r.ChannelID,
		UserID:    r.UserID,
		Status:    string(r.Status),
		UpdatedAt: r.UpdatedAt,
	}
}

func toAPIChecklistItem(c *models.ChecklistItem) *api.ChecklistItem {
	return &api.ChecklistItem{
		ID:          c.ID,
		ChannelID:   c.ChannelID,
		Item:        c.Item,
		AssignedTo:  c.AssignedTo,
		IsCompleted: c.IsCompleted,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
	}
}

func toAPIFlight(f *models.Flight) *api.Flight {
	passengers := f.Passengers
	if passengers == nil {
		passengers = []string{}
	}
	return &api.Flight{
		ID:               f.ID,
		ChannelID:        f.ChannelID,
		CreatedBy:        f.CreatedBy,
		Airline:          f.Airline,
		FlightNumber:     f.FlightNumber,
		DepartureAirport: f.DepartureAirport,
		ArrivalAirport:   f.ArrivalAirport,
		DepartureTime:    f.DepartureTime,
		ArrivalTime:      f.ArrivalTime,
		Status:           string(f.Status),
		Passengers:       passengers,
		Notes:            f.Notes,
		CreatedAt:        f.CreatedAt,
	}
}

func toAPIAccommodation(a *models.Accommodation) *api.Accommodation {
	guests := a.Guests
	if guests == nil {
		guests = []string{}
	}
	return &api.Accommodation{
		ID:            a.ID,
		ChannelID:     a.ChannelID,
		CreatedBy:     a.CreatedBy,
		Name:          a.Name,
		Type:          string(a.Type),
		Address:       a.Address,
		CheckIn:       a.CheckIn,
		CheckOut:      a.CheckOut,
		BookingLink:   a.BookingLink,
		PricePerNight: a.PricePerNight,
		TotalPrice:    a.TotalPrice,
		Status:        string(a.Status),
		Guests:        guests,
		Notes:         a.Notes,
		CreatedAt:     a.CreatedAt,
	}
}
