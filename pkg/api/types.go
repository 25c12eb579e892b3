package api

// Timestamps are Unix milliseconds. Amounts are integer cents.

type User struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	CreatedAt   int64  `json:"createdAt"`
}

type Group struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	CreatedBy           string `json:"createdBy"`
	CreatedAt           int64  `json:"createdAt"`
	InviteCode          string `json:"inviteCode"`
	HallOfFameThreshold int    `json:"hallOfFameThreshold"`
	SenpaiEnabled       bool   `json:"senpaiEnabled"`
	SenpaiFrequency     string `json:"senpaiFrequency"`
	SenpaiPersonality   string `json:"senpaiPersonality,omitempty"`
}

type Member struct {
	UserID       string `json:"userId"`
	DisplayName  string `json:"displayName"`
	Username     string `json:"username"`
	Role         string `json:"role"`
	JoinedAt     int64  `json:"joinedAt"`
	LastActiveAt int64  `json:"lastActiveAt,omitempty"`
}

type Channel struct {
	ID              string `json:"id"`
	GroupID         string `json:"groupId"`
	Name            string `json:"name"`
	Icon            string `json:"icon,omitempty"`
	Type            string `json:"type"`
	CreatedBy       string `json:"createdBy"`
	CreatedAt       int64  `json:"createdAt"`
	ParentChannelID string `json:"parentChannelId,omitempty"`
	ParentMessageID string `json:"parentMessageId,omitempty"`
	ForkDepth       int    `json:"forkDepth"`
	IsArchived      bool   `json:"isArchived"`
	ArchivedAt      int64  `json:"archivedAt,omitempty"`
	EventDate       int64  `json:"eventDate,omitempty"`
	EventEndDate    int64  `json:"eventEndDate,omitempty"`
	EventLocation   string `json:"eventLocation,omitempty"`
	BracketQuestion string `json:"bracketQuestion,omitempty"`
	BracketStatus   string `json:"bracketStatus,omitempty"`
}

type Message struct {
	ID                string            `json:"id"`
	ChannelID         string            `json:"channelId"`
	AuthorID          string            `json:"authorId"`
	Body              string            `json:"body"`
	CreatedAt         int64             `json:"createdAt"`
	EditedAt          int64             `json:"editedAt,omitempty"`
	IsDeleted         bool              `json:"isDeleted"`
	ThreadParentID    string            `json:"threadParentId,omitempty"`
	ThreadReplyCount  int               `json:"threadReplyCount"`
	ThreadLastReplyAt int64             `json:"threadLastReplyAt,omitempty"`
	ForkedToChannelID string            `json:"forkedToChannelId,omitempty"`
	MessageType       string            `json:"messageType"`
	SenpaiTrigger     string            `json:"senpaiTrigger,omitempty"`
	Reactions         []ReactionSummary `json:"reactions,omitempty"`
}

type ReactionSummary struct {
	Emoji   string   `json:"emoji"`
	Count   int      `json:"count"`
	UserIDs []string `json:"userIds"`
}

type Pin struct {
	ID        string `json:"id"`
	ChannelID string `json:"channelId"`
	MessageID string `json:"messageId"`
	PinnedBy  string `json:"pinnedBy"`
	PinnedAt  int64  `json:"pinnedAt"`
}

type HallOfFameEntry struct {
	ID          string `json:"id"`
	GroupID     string `json:"groupId"`
	MessageID   string `json:"messageId"`
	ChannelID   string `json:"channelId"`
	AuthorID    string `json:"authorId"`
	Body        string `json:"body"`
	TrophyCount int    `json:"trophyCount"`
	EnshrinedAt int64  `json:"enshrinedAt"`
}

type Split struct {
	ID          string      `json:"id"`
	ChannelID   string      `json:"channelId"`
	GroupID     string      `json:"groupId"`
	Name        string      `json:"name"`
	TotalAmount int64       `json:"totalAmount"`
	TaxAmount   int64       `json:"taxAmount"`
	TipAmount   int64       `json:"tipAmount"`
	CreatedBy   string      `json:"createdBy"`
	CreatedAt   int64       `json:"createdAt"`
	Status      string      `json:"status"`
	Items       []SplitItem `json:"items"`
}

type SplitItem struct {
	ID        string   `json:"id"`
	SplitID   string   `json:"splitId"`
	Name      string   `json:"name"`
	Price     int64    `json:"price"`
	Quantity  int      `json:"quantity"`
	ClaimedBy []string `json:"claimedBy"`
}

type Balance struct {
	ID         string `json:"id"`
	SplitID    string `json:"splitId"`
	ChannelID  string `json:"channelId"`
	GroupID    string `json:"groupId"`
	FromUserID string `json:"fromUserId"`
	ToUserID   string `json:"toUserId"`
	Amount     int64  `json:"amount"`
	IsPaid     bool   `json:"isPaid"`
	PaidAt     int64  `json:"paidAt,omitempty"`
}

type Rsvp struct {
	ChannelID string `json:"channelId"`
	UserID    string `json:"userId"`
	Status    string `json:"status"`
	UpdatedAt int64  `json:"updatedAt"`
}

type ChecklistItem struct {
	ID          string `json:"id"`
	ChannelID   string `json:"channelId"`
	Item        string `json:"item"`
	AssignedTo  string `json:"assignedTo,omitempty"`
	IsCompleted bool   `json:"isCompleted"`
	CreatedBy   string `json:"createdBy"`
	CreatedAt   int64  `json:"createdAt"`
}

type Flight struct {
	ID               string   `json:"id"`
	ChannelID        string   `json:"channelId"`
	CreatedBy        string   `json:"createdBy"`
	Airline          string   `json:"airline"`
	FlightNumber     string   `json:"flightNumber,omitempty"`
	DepartureAirport string   `json:"departureAirport"`
	ArrivalAirport   string   `json:"arrivalAirport"`
	DepartureTime    int64    `json:"departureTime"`
	ArrivalTime      int64    `json:"arrivalTime,omitempty"`
	Status           string   `json:"status"`
	Passengers       []string `json:"passengers"`
	Notes            string   `json:"notes,omitempty"`
	CreatedAt        int64    `json:"createdAt"`
}

type Accommodation struct {
	ID            string   `json:"id"`
	ChannelID     string   `json:"channelId"`
	CreatedBy     string   `json:"createdBy"`
	Name          string   `json:"name"`
	Type          string   `json:"type"`
	Address       string   `json:"address,omitempty"`
	CheckIn       int64    `json:"checkIn"`
	CheckOut      int64    `json:"checkOut"`
	BookingLink   string   `json:"bookingLink,omitempty"`
	PricePerNight int64    `json:"pricePerNight,omitempty"`
	TotalPrice    int64    `json:"totalPrice,omitempty"`
	Status        string   `json:"status"`
	Guests        []string `json:"guests"`
	Notes         string   `json:"notes,omitempty"`
	CreatedAt     int64    `json:"createdAt"`
}
