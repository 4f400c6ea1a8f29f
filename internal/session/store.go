package session

import "sync"

// Action names the multi-step dialog a user is currently in.
type Action string

const (
	ActionNone             Action = ""
	ActionAwaitingText     Action = "awaiting_announcement_text"
	ActionPremiumPayment   Action = "premium_payment"
	ActionShopPayment      Action = "shop_payment"
	ActionShopGameID       Action = "shop_game_id"
	ActionSelectCategory   Action = "autopost_select_category"
	ActionAutopostText     Action = "autopost_awaiting_text"
	ActionAwaitingChannel  Action = "awaiting_channel"
	ActionBroadcastMessage Action = "broadcast_message"
)

// State is the transient dialog state of a single user. A zero State
// means the user is not in any dialog.
type State struct {
	Action   Action
	Category string

	// Premium purchase fields.
	ServiceKey       string
	AnnouncementID   int64
	PremiumServiceID int64

	// Shop purchase fields.
	ProductType string
	Amount      int
	Price       float64
	GameID      string
}

// Store keeps per-user dialog state between updates.
type Store interface {
	Get(userID int64) (State, bool)
	Set(userID int64, state State)
	Clear(userID int64)
}

// MemoryStore is an in-memory Store. State does not survive restarts;
// users simply start their dialog over.
type MemoryStore struct {
	mu     sync.RWMutex
	states map[int64]State
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{states: make(map[int64]State)}
}

func (s *MemoryStore) Get(userID int64) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[userID]
	return state, ok
}

func (s *MemoryStore) Set(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[userID] = state
}

func (s *MemoryStore) Clear(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, userID)
}
