package database

import "time"

// Entity statuses. Announcements and premium services go pending→approved or
// pending→rejected, never backwards. Autopost tasks and pinned posts expire
// by time; shop orders complete instead of approve.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusActive    = "active"
	StatusExpired   = "expired"
	StatusCompleted = "completed"
)

// Product types sold in the shop.
const (
	ProductUC    = "uc"
	ProductStars = "stars"
)

// User is a Telegram user known to the bot. Upserted on every inbound event.
type User struct {
	ID        int64
	Username  *string
	FirstName *string
	LastName  *string
	JoinedAt  time.Time
}

// DisplayName renders "@username" or the first name, the way the original
// moderation cards do.
func (u *User) DisplayName() string {
	if u.Username != nil && *u.Username != "" {
		return "@" + *u.Username
	}
	if u.FirstName != nil {
		return *u.FirstName
	}
	return ""
}

// EntitySpan is one rich-text span captured from a submitted message:
// a premium custom emoji or a hyperlink. Offsets are in UTF-16 code units,
// as Telegram counts them.
type EntitySpan struct {
	Type     string `json:"type"` // "custom_emoji" or "text_link"
	CustomID string `json:"id,omitempty"`
	URL      string `json:"url,omitempty"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
}

// Announcement is a user-submitted classified post.
type Announcement struct {
	ID          int64
	UserID      int64
	Category    string
	Text        string
	Photo       *string // Telegram file ID, nil for text-only posts
	Entities    []EntitySpan
	Status      string
	CreatedAt   time.Time
	PublishedAt *time.Time
}

// AnnouncementWithUser joins the submitter for moderation cards.
type AnnouncementWithUser struct {
	Announcement
	User User
}

// PremiumService is a paid placement request (autopost or pin).
type PremiumService struct {
	ID                int64
	UserID            int64
	ServiceType       string
	AnnouncementID    *int64 // nil until bound (pin: at request, autopost: after approval)
	Duration          int    // hours, copied from the catalog at creation
	Status            string
	PaymentScreenshot *string
	CreatedAt         time.Time
	ApprovedAt        *time.Time
	ExpiresAt         *time.Time
}

// PremiumServiceWithUser joins the buyer for moderation cards.
type PremiumServiceWithUser struct {
	PremiumService
	User User
}

// AutopostTask is a recurring-publication job: one post per hour until
// expires_at. Duration doubles as the total intended publication count.
type AutopostTask struct {
	ID             int64
	AnnouncementID *int64 // nil until the user authors the recurring post
	UserID         int64
	Duration       int
	Status         string
	LastPosted     *time.Time
	ExpiresAt      time.Time
	NotifiedEnding bool
	NotifiedLast   bool
	CreatedAt      time.Time
}

// AutopostTaskContent joins the linked announcement for republication.
type AutopostTaskContent struct {
	AutopostTask
	Category string
	Text     string
	Photo    *string
	Entities []EntitySpan
}

// PinnedPost is a time-boxed featured-slot grant.
type PinnedPost struct {
	ID             int64
	AnnouncementID *int64
	UserID         int64
	MessageID      *int64
	Status         string
	ExpiresAt      time.Time
	CreatedAt      time.Time
}

// PinnedPostWithUser joins the owner for the admin pins screen.
type PinnedPostWithUser struct {
	PinnedPost
	User User
}

// ShopOrder is a manual-fulfillment purchase of UC or Stars.
type ShopOrder struct {
	ID                int64
	UserID            int64
	ProductType       string
	Amount            int
	Price             float64
	GameID            string
	PaymentScreenshot *string
	Status            string
	CreatedAt         time.Time
	CompletedAt       *time.Time
}

// ShopOrderWithUser joins the buyer for moderation cards.
type ShopOrderWithUser struct {
	ShopOrder
	User User
}

// RequiredChannel is a channel users must join before submitting
// announcements.
type RequiredChannel struct {
	ID          int64
	ChannelID   string
	ChannelName string
	AddedAt     time.Time
}
