package database

import (
	"context"
	"time"
)

// UserRepository defines user data operations.
type UserRepository interface {
	// UpsertUser creates or refreshes a user record. Called on every
	// inbound event.
	UpsertUser(ctx context.Context, userID int64, username, firstName, lastName string) error
	// ListUserIDs returns the IDs of every known user (broadcast fan-out).
	ListUserIDs(ctx context.Context) ([]int64, error)
	ListRecentUsers(ctx context.Context, limit int) ([]User, error)
	CountUsers(ctx context.Context) (int64, error)
}

// AnnouncementRepository defines announcement lifecycle operations.
type AnnouncementRepository interface {
	CreateAnnouncement(ctx context.Context, a *Announcement) (int64, error)
	GetAnnouncementByID(ctx context.Context, id int64) (*Announcement, error)
	GetAnnouncementWithUser(ctx context.Context, id int64) (*AnnouncementWithUser, error)
	// ApproveAnnouncement stamps published_at and sets status=approved.
	// Only a pending row transitions; anything else reports ErrNotFound,
	// so the stale second button on a moderation card is a no-op.
	ApproveAnnouncement(ctx context.Context, id int64, publishedAt time.Time) error
	RejectAnnouncement(ctx context.Context, id int64) error
	ListPendingAnnouncements(ctx context.Context, limit int) ([]AnnouncementWithUser, error)
	ListApprovedByUser(ctx context.Context, userID int64, limit int) ([]Announcement, error)
}

// PremiumRepository defines premium-service lifecycle operations.
type PremiumRepository interface {
	CreatePremiumService(ctx context.Context, s *PremiumService) (int64, error)
	GetPremiumServiceByID(ctx context.Context, id int64) (*PremiumService, error)
	// ApprovePremiumService stamps approved_at and expires_at. Only a
	// pending row transitions; anything else reports ErrNotFound.
	ApprovePremiumService(ctx context.Context, id int64, approvedAt, expiresAt time.Time) error
	RejectPremiumService(ctx context.Context, id int64) error
	// AttachAnnouncement binds the announcement authored after an autopost
	// purchase was approved.
	AttachAnnouncement(ctx context.Context, serviceID, announcementID int64) error
	ListPendingPremiumServices(ctx context.Context, limit int) ([]PremiumServiceWithUser, error)
	GetPendingPremiumWithAnnouncement(ctx context.Context, id int64) (*PremiumServiceWithUser, *Announcement, error)
}

// AutopostRepository defines autopost-task operations driven by the
// moderation workflow and the scheduler sweeps.
type AutopostRepository interface {
	CreateAutopostTask(ctx context.Context, t *AutopostTask) (int64, error)
	// ActivatePendingTask binds the announcement to the user's most recent
	// pending task and flips it to active. Returns the task ID.
	ActivatePendingTask(ctx context.Context, userID, announcementID int64) (int64, error)
	// ListActiveTasks returns active tasks that have not expired yet,
	// joined with their announcement content for republication.
	ListActiveTasks(ctx context.Context, now time.Time) ([]AutopostTaskContent, error)
	MarkPosted(ctx context.Context, taskID int64, postedAt time.Time) error
	// ListEndingUnnotified returns active tasks expiring within [from, to)
	// that have not received the "ending soon" warning.
	ListEndingUnnotified(ctx context.Context, from, to time.Time) ([]AutopostTask, error)
	// ListLastUnnotified returns active tasks expiring within [from, to)
	// that have not received the "last publication" warning.
	ListLastUnnotified(ctx context.Context, from, to time.Time) ([]AutopostTask, error)
	ListExpiredActive(ctx context.Context, now time.Time) ([]AutopostTask, error)
	SetNotifiedEnding(ctx context.Context, taskID int64) error
	SetNotifiedLast(ctx context.Context, taskID int64) error
	// ExpireTasks bulk-expires active tasks past expires_at. Idempotent.
	ExpireTasks(ctx context.Context, now time.Time) (int64, error)
}

// PinnedRepository defines pinned-post slot operations.
type PinnedRepository interface {
	CreatePinnedPost(ctx context.Context, p *PinnedPost) (int64, error)
	// CountActivePins counts unexpired pins (slot admission control).
	CountActivePins(ctx context.Context, now time.Time) (int, error)
	// NextPinExpiry returns the earliest unexpired pin expiry, nil when
	// there are no active pins.
	NextPinExpiry(ctx context.Context, now time.Time) (*time.Time, error)
	ListActivePins(ctx context.Context, now time.Time) ([]PinnedPostWithUser, error)
	// ExpirePins bulk-expires pins past expires_at. Idempotent.
	ExpirePins(ctx context.Context, now time.Time) (int64, error)
}

// ShopRepository defines shop-order lifecycle operations.
type ShopRepository interface {
	CreateShopOrder(ctx context.Context, o *ShopOrder) (int64, error)
	GetShopOrderByID(ctx context.Context, id int64) (*ShopOrder, error)
	// CompleteShopOrder stamps completed_at. Only a pending row
	// transitions; anything else reports ErrNotFound.
	CompleteShopOrder(ctx context.Context, id int64, completedAt time.Time) error
	RejectShopOrder(ctx context.Context, id int64) error
	ListPendingShopOrders(ctx context.Context, limit int) ([]ShopOrderWithUser, error)
	GetShopOrderWithUser(ctx context.Context, id int64) (*ShopOrderWithUser, error)
}

// ChannelRepository defines required-channel operations for the
// subscription gate.
type ChannelRepository interface {
	// AddRequiredChannel inserts a channel; adding an existing channel_id
	// is a no-op.
	AddRequiredChannel(ctx context.Context, channelID, channelName string) error
	RemoveRequiredChannel(ctx context.Context, channelID string) error
	ListRequiredChannels(ctx context.Context) ([]RequiredChannel, error)
}
