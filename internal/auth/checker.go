package auth

import "fmt"

// AdminCheckerInterface abstracts the admin check for handlers and tests.
type AdminCheckerInterface interface {
	IsAdmin(userID int64) bool
}

// AdminChecker checks users against the static admin allow-list from config.
// There is no auth beyond this list; everything admin-facing goes through it.
type AdminChecker struct {
	adminIDs map[int64]struct{}
}

// NewAdminChecker creates a new AdminChecker from the configured ID list.
func NewAdminChecker(adminIDs []int64) (*AdminChecker, error) {
	if len(adminIDs) == 0 {
		return nil, fmt.Errorf("admin ID list cannot be empty")
	}
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	return &AdminChecker{adminIDs: ids}, nil
}

// IsAdmin reports whether the user is on the allow-list.
func (ac *AdminChecker) IsAdmin(userID int64) bool {
	_, ok := ac.adminIDs[userID]
	return ok
}
