package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/kaskroutek/internal/models"
)

// memState is the whole dataset of a MemoryStore.
type memState struct {
	breads       []models.Bread
	toppings     []models.Topping
	orders       []models.Order
	accounts     map[string]models.LoyaltyAccount
	transactions []models.PointsTransaction
	timers       map[models.TimerKind][]models.TimerSlot
	admins       []models.AdminUser
}

func newMemState() *memState {
	return &memState{
		accounts: make(map[string]models.LoyaltyAccount),
		timers:   make(map[models.TimerKind][]models.TimerSlot),
	}
}

func (st *memState) clone() memState {
	out := memState{
		breads:       append([]models.Bread(nil), st.breads...),
		toppings:     append([]models.Topping(nil), st.toppings...),
		orders:       append([]models.Order(nil), st.orders...),
		accounts:     make(map[string]models.LoyaltyAccount, len(st.accounts)),
		transactions: append([]models.PointsTransaction(nil), st.transactions...),
		timers:       make(map[models.TimerKind][]models.TimerSlot, len(st.timers)),
		admins:       append([]models.AdminUser(nil), st.admins...),
	}
	for k, v := range st.accounts {
		out.accounts[k] = v
	}
	for k, v := range st.timers {
		out.timers[k] = append([]models.TimerSlot(nil), v...)
	}
	return out
}

// MemoryStore is a process-local Store used by the memory storage driver and by tests.
// Records are kept by value; every read returns a copy.
type MemoryStore struct {
	mu    *sync.Mutex
	state *memState
	inTx  bool
	now   func() time.Time
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		mu:    &sync.Mutex{},
		state: newMemState(),
		now:   time.Now,
	}
}

// lock acquires the store mutex unless the caller already holds it through Transaction.
func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.state.clone()
	tx := &MemoryStore{mu: s.mu, state: s.state, inTx: true, now: s.now}
	if err := fn(tx); err != nil {
		*s.state = backup
		return err
	}
	return nil
}

func (s *MemoryStore) stamp(base *models.BaseModel) {
	base.EnsureID()
	now := s.now()
	if base.CreatedAt.IsZero() {
		base.CreatedAt = now
	}
	base.UpdatedAt = now
}

// Catalog

func (s *MemoryStore) ListBreads(ctx context.Context) ([]models.Bread, error) {
	defer s.lock()()
	return append([]models.Bread(nil), s.state.breads...), nil
}

func (s *MemoryStore) GetBread(ctx context.Context, id uuid.UUID) (*models.Bread, error) {
	defer s.lock()()
	for _, bread := range s.state.breads {
		if bread.ID == id {
			return &bread, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateBread(ctx context.Context, bread *models.Bread) error {
	defer s.lock()()
	s.stamp(&bread.BaseModel)
	bread.FillNames()
	s.state.breads = append(s.state.breads, *bread)
	return nil
}

func (s *MemoryStore) UpdateBread(ctx context.Context, bread *models.Bread) error {
	defer s.lock()()
	for i := range s.state.breads {
		if s.state.breads[i].ID == bread.ID {
			bread.CreatedAt = s.state.breads[i].CreatedAt
			s.stamp(&bread.BaseModel)
			bread.FillNames()
			s.state.breads[i] = *bread
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteBread(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	for i := range s.state.breads {
		if s.state.breads[i].ID == id {
			s.state.breads = append(s.state.breads[:i:i], s.state.breads[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) ListToppings(ctx context.Context) ([]models.Topping, error) {
	defer s.lock()()
	toppings := append([]models.Topping(nil), s.state.toppings...)
	sort.SliceStable(toppings, func(i, j int) bool {
		return toppings[i].Category < toppings[j].Category
	})
	return toppings, nil
}

func (s *MemoryStore) GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error) {
	defer s.lock()()
	for _, topping := range s.state.toppings {
		if topping.ID == id {
			return &topping, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateTopping(ctx context.Context, topping *models.Topping) error {
	defer s.lock()()
	s.stamp(&topping.BaseModel)
	topping.FillNames()
	s.state.toppings = append(s.state.toppings, *topping)
	return nil
}

func (s *MemoryStore) UpdateTopping(ctx context.Context, topping *models.Topping) error {
	defer s.lock()()
	for i := range s.state.toppings {
		if s.state.toppings[i].ID == topping.ID {
			topping.CreatedAt = s.state.toppings[i].CreatedAt
			s.stamp(&topping.BaseModel)
			topping.FillNames()
			s.state.toppings[i] = *topping
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteTopping(ctx context.Context, id uuid.UUID) error {
	defer s.lock()()
	for i := range s.state.toppings {
		if s.state.toppings[i].ID == id {
			s.state.toppings = append(s.state.toppings[:i:i], s.state.toppings[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

// Orders

func (s *MemoryStore) CreateOrder(ctx context.Context, order *models.Order) error {
	defer s.lock()()
	s.stamp(&order.BaseModel)
	stored := *order
	stored.Bread = nil
	s.state.orders = append(s.state.orders, stored)
	return nil
}

func (s *MemoryStore) withBread(order models.Order) models.Order {
	for _, bread := range s.state.breads {
		if bread.ID == order.BreadID {
			b := bread
			order.Bread = &b
			break
		}
	}
	return order
}

func (s *MemoryStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	defer s.lock()()
	for _, order := range s.state.orders {
		if order.ID == id {
			found := s.withBread(order)
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

// LockOrder is GetOrder; the store mutex held by Transaction already serialises writers.
func (s *MemoryStore) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.GetOrder(ctx, id)
}

func (s *MemoryStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	defer s.lock()()

	statuses := make(map[models.OrderStatus]bool, len(filter.Statuses))
	for _, status := range filter.Statuses {
		statuses[status] = true
	}

	var matched []models.Order
	for i := len(s.state.orders) - 1; i >= 0; i-- {
		order := s.state.orders[i]
		if len(statuses) > 0 && !statuses[order.Status] {
			continue
		}
		if filter.PhoneNumber != "" && order.PhoneNumber != filter.PhoneNumber {
			continue
		}
		matched = append(matched, s.withBread(order))
	}

	total := int64(len(matched))
	if filter.Limit > 0 {
		if filter.Offset >= len(matched) {
			return []models.Order{}, total, nil
		}
		end := filter.Offset + filter.Limit
		if end > len(matched) {
			end = len(matched)
		}
		matched = matched[filter.Offset:end]
	}
	return matched, total, nil
}

func (s *MemoryStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, deliveredAt *time.Time) error {
	defer s.lock()()
	for i := range s.state.orders {
		if s.state.orders[i].ID == id {
			s.state.orders[i].Status = status
			if deliveredAt != nil {
				at := *deliveredAt
				s.state.orders[i].DeliveredAt = &at
			}
			s.state.orders[i].UpdatedAt = s.now()
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) OrderStats(ctx context.Context) (*OrderStats, error) {
	defer s.lock()()
	stats := &OrderStats{CountByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, status := range models.OrderStatuses {
		stats.CountByStatus[status] = 0
	}
	for _, order := range s.state.orders {
		stats.CountByStatus[order.Status]++
		if order.Status == models.StatusDelivered {
			stats.DeliveredRevenue = stats.DeliveredRevenue.Add(order.TotalPrice)
		}
	}
	return stats, nil
}

// Loyalty

func (s *MemoryStore) GetLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error) {
	defer s.lock()()
	account, ok := s.state.accounts[phone]
	if !ok {
		return nil, ErrNotFound
	}
	return &account, nil
}

func (s *MemoryStore) ListLoyaltyAccounts(ctx context.Context, limit, offset int) ([]models.LoyaltyAccount, int64, error) {
	defer s.lock()()
	accounts := make([]models.LoyaltyAccount, 0, len(s.state.accounts))
	for _, account := range s.state.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		if c := accounts[i].TotalPoints.Cmp(accounts[j].TotalPoints); c != 0 {
			return c > 0
		}
		return accounts[i].PhoneNumber < accounts[j].PhoneNumber
	})

	total := int64(len(accounts))
	if limit > 0 {
		if offset >= len(accounts) {
			return []models.LoyaltyAccount{}, total, nil
		}
		end := offset + limit
		if end > len(accounts) {
			end = len(accounts)
		}
		accounts = accounts[offset:end]
	}
	return accounts, total, nil
}

func (s *MemoryStore) AddPoints(ctx context.Context, phone, name string, delta decimal.Decimal) (*models.LoyaltyAccount, error) {
	defer s.lock()()
	account, ok := s.state.accounts[phone]
	if !ok {
		account = models.LoyaltyAccount{PhoneNumber: phone, TotalPoints: decimal.Zero}
	}
	if name != "" {
		account.CustomerName = name
	}
	account.TotalPoints = account.TotalPoints.Add(delta)
	s.stamp(&account.BaseModel)
	s.state.accounts[phone] = account
	return &account, nil
}

func (s *MemoryStore) DeductPoints(ctx context.Context, phone string, amount decimal.Decimal) (*models.LoyaltyAccount, error) {
	defer s.lock()()
	account, ok := s.state.accounts[phone]
	if !ok || account.TotalPoints.LessThan(amount) {
		return nil, ErrInsufficientPoints
	}
	account.TotalPoints = account.TotalPoints.Sub(amount)
	s.stamp(&account.BaseModel)
	s.state.accounts[phone] = account
	return &account, nil
}

func (s *MemoryStore) AppendPointsTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	defer s.lock()()
	s.stamp(&tx.BaseModel)
	s.state.transactions = append(s.state.transactions, *tx)
	return nil
}

func (s *MemoryStore) ListPointsTransactions(ctx context.Context, phone string) ([]models.PointsTransaction, error) {
	defer s.lock()()
	var txs []models.PointsTransaction
	for i := len(s.state.transactions) - 1; i >= 0; i-- {
		if s.state.transactions[i].PhoneNumber == phone {
			txs = append(txs, s.state.transactions[i])
		}
	}
	return txs, nil
}

// Timers

func (s *MemoryStore) ListTimerSlots(ctx context.Context, kind models.TimerKind) ([]models.TimerSlot, error) {
	defer s.lock()()
	slots := append([]models.TimerSlot(nil), s.state.timers[kind]...)
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].TimeOfDay < slots[j].TimeOfDay
	})
	return slots, nil
}

func (s *MemoryStore) ListTimerSlotsForDay(ctx context.Context, kind models.TimerKind, day time.Weekday) ([]models.TimerSlot, error) {
	all, err := s.ListTimerSlots(ctx, kind)
	if err != nil {
		return nil, err
	}
	var slots []models.TimerSlot
	for _, slot := range all {
		if slot.DayOfWeek == int(day) {
			slots = append(slots, slot)
		}
	}
	return slots, nil
}

func (s *MemoryStore) GetTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) (*models.TimerSlot, error) {
	defer s.lock()()
	for _, slot := range s.state.timers[kind] {
		if slot.ID == id {
			return &slot, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error {
	defer s.lock()()
	s.stamp(&slot.BaseModel)
	s.state.timers[kind] = append(s.state.timers[kind], *slot)
	return nil
}

func (s *MemoryStore) UpdateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error {
	defer s.lock()()
	slots := s.state.timers[kind]
	for i := range slots {
		if slots[i].ID == slot.ID {
			slot.CreatedAt = slots[i].CreatedAt
			s.stamp(&slot.BaseModel)
			slots[i] = *slot
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) DeleteTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) error {
	defer s.lock()()
	slots := s.state.timers[kind]
	for i := range slots {
		if slots[i].ID == id {
			s.state.timers[kind] = append(slots[:i:i], slots[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *MemoryStore) SetTimerActive(ctx context.Context, kind models.TimerKind, id uuid.UUID, active bool) error {
	defer s.lock()()
	slots := s.state.timers[kind]
	for i := range slots {
		if slots[i].ID == id {
			slots[i].Active = active
			slots[i].UpdatedAt = s.now()
			return nil
		}
	}
	return ErrNotFound
}

// Admins

func (s *MemoryStore) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	defer s.lock()()
	for _, admin := range s.state.admins {
		if admin.Username == username {
			return &admin, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	defer s.lock()()
	s.stamp(&admin.BaseModel)
	s.state.admins = append(s.state.admins, *admin)
	return nil
}
