package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/example/kaskroutek/internal/models"
)

// GormStore implements Store on top of a gorm connection.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore constructs GormStore.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func affected(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Catalog

func (s *GormStore) ListBreads(ctx context.Context) ([]models.Bread, error) {
	var breads []models.Bread
	err := s.db.WithContext(ctx).Order("created_at ASC").Find(&breads).Error
	return breads, err
}

func (s *GormStore) GetBread(ctx context.Context, id uuid.UUID) (*models.Bread, error) {
	var bread models.Bread
	if err := s.db.WithContext(ctx).First(&bread, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &bread, nil
}

func (s *GormStore) CreateBread(ctx context.Context, bread *models.Bread) error {
	if err := s.db.WithContext(ctx).Create(bread).Error; err != nil {
		return err
	}
	bread.FillNames()
	return nil
}

func (s *GormStore) UpdateBread(ctx context.Context, bread *models.Bread) error {
	result := s.db.WithContext(ctx).Model(&models.Bread{}).Where("id = ?", bread.ID).Updates(map[string]interface{}{
		"name":       bread.Name,
		"price":      bread.Price,
		"image_url":  bread.ImageURL,
		"updated_at": time.Now(),
	})
	if err := affected(result); err != nil {
		return err
	}
	bread.FillNames()
	return nil
}

func (s *GormStore) DeleteBread(ctx context.Context, id uuid.UUID) error {
	return affected(s.db.WithContext(ctx).Delete(&models.Bread{}, "id = ?", id))
}

func (s *GormStore) ListToppings(ctx context.Context) ([]models.Topping, error) {
	var toppings []models.Topping
	err := s.db.WithContext(ctx).Order("category ASC, created_at ASC").Find(&toppings).Error
	return toppings, err
}

func (s *GormStore) GetTopping(ctx context.Context, id uuid.UUID) (*models.Topping, error) {
	var topping models.Topping
	if err := s.db.WithContext(ctx).First(&topping, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &topping, nil
}

func (s *GormStore) CreateTopping(ctx context.Context, topping *models.Topping) error {
	if err := s.db.WithContext(ctx).Create(topping).Error; err != nil {
		return err
	}
	topping.FillNames()
	return nil
}

func (s *GormStore) UpdateTopping(ctx context.Context, topping *models.Topping) error {
	result := s.db.WithContext(ctx).Model(&models.Topping{}).Where("id = ?", topping.ID).Updates(map[string]interface{}{
		"name":       topping.Name,
		"price":      topping.Price,
		"image_url":  topping.ImageURL,
		"category":   topping.Category,
		"updated_at": time.Now(),
	})
	if err := affected(result); err != nil {
		return err
	}
	topping.FillNames()
	return nil
}

func (s *GormStore) DeleteTopping(ctx context.Context, id uuid.UUID) error {
	return affected(s.db.WithContext(ctx).Delete(&models.Topping{}, "id = ?", id))
}

// Orders

func (s *GormStore) CreateOrder(ctx context.Context, order *models.Order) error {
	return s.db.WithContext(ctx).Omit(clause.Associations).Create(order).Error
}

func (s *GormStore) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Bread").First(&order, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) LockOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &order, nil
}

func (s *GormStore) ListOrders(ctx context.Context, filter OrderFilter) ([]models.Order, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Order{})
	if len(filter.Statuses) > 0 {
		query = query.Where("status IN ?", filter.Statuses)
	}
	if filter.PhoneNumber != "" {
		query = query.Where("phone_number = ?", filter.PhoneNumber)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Preload("Bread").Order("created_at DESC")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit).Offset(filter.Offset)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (s *GormStore) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus, deliveredAt *time.Time) error {
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": time.Now(),
	}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	return affected(s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates))
}

func (s *GormStore) OrderStats(ctx context.Context) (*OrderStats, error) {
	var rows []struct {
		Status models.OrderStatus
		Count  int64
	}
	err := s.db.WithContext(ctx).Model(&models.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	stats := &OrderStats{CountByStatus: make(map[models.OrderStatus]int64, len(models.OrderStatuses))}
	for _, status := range models.OrderStatuses {
		stats.CountByStatus[status] = 0
	}
	for _, row := range rows {
		stats.CountByStatus[row.Status] = row.Count
	}

	var revenue decimal.NullDecimal
	err = s.db.WithContext(ctx).Model(&models.Order{}).
		Select("SUM(total_price)").
		Where("status = ?", models.StatusDelivered).
		Row().Scan(&revenue)
	if err != nil {
		return nil, err
	}
	if revenue.Valid {
		stats.DeliveredRevenue = revenue.Decimal
	}
	return stats, nil
}

// Loyalty

func (s *GormStore) GetLoyaltyAccount(ctx context.Context, phone string) (*models.LoyaltyAccount, error) {
	var account models.LoyaltyAccount
	if err := s.db.WithContext(ctx).First(&account, "phone_number = ?", phone).Error; err != nil {
		return nil, notFound(err)
	}
	return &account, nil
}

func (s *GormStore) ListLoyaltyAccounts(ctx context.Context, limit, offset int) ([]models.LoyaltyAccount, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.LoyaltyAccount{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = query.Order("total_points DESC, phone_number ASC")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var accounts []models.LoyaltyAccount
	if err := query.Find(&accounts).Error; err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

func (s *GormStore) AddPoints(ctx context.Context, phone, name string, delta decimal.Decimal) (*models.LoyaltyAccount, error) {
	account := models.LoyaltyAccount{
		PhoneNumber:  phone,
		CustomerName: name,
		TotalPoints:  delta,
	}

	assignments := map[string]interface{}{
		"total_points": gorm.Expr("loyalty_points.total_points + EXCLUDED.total_points"),
		"updated_at":   gorm.Expr("EXCLUDED.updated_at"),
	}
	if name != "" {
		assignments["customer_name"] = gorm.Expr("EXCLUDED.customer_name")
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "phone_number"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&account).Error
	if err != nil {
		return nil, err
	}

	return s.GetLoyaltyAccount(ctx, phone)
}

func (s *GormStore) DeductPoints(ctx context.Context, phone string, amount decimal.Decimal) (*models.LoyaltyAccount, error) {
	result := s.db.WithContext(ctx).Model(&models.LoyaltyAccount{}).
		Where("phone_number = ? AND total_points >= ?", phone, amount).
		Updates(map[string]interface{}{
			"total_points": gorm.Expr("total_points - ?", amount),
			"updated_at":   time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrInsufficientPoints
	}
	return s.GetLoyaltyAccount(ctx, phone)
}

func (s *GormStore) AppendPointsTransaction(ctx context.Context, tx *models.PointsTransaction) error {
	return s.db.WithContext(ctx).Create(tx).Error
}

func (s *GormStore) ListPointsTransactions(ctx context.Context, phone string) ([]models.PointsTransaction, error) {
	var txs []models.PointsTransaction
	err := s.db.WithContext(ctx).
		Where("phone_number = ?", phone).
		Order("created_at DESC").
		Find(&txs).Error
	return txs, err
}

// Timers

func (s *GormStore) timers(ctx context.Context, kind models.TimerKind) *gorm.DB {
	return s.db.WithContext(ctx).Table(kind.Table())
}

func (s *GormStore) ListTimerSlots(ctx context.Context, kind models.TimerKind) ([]models.TimerSlot, error) {
	var slots []models.TimerSlot
	err := s.timers(ctx, kind).Order("day_of_week ASC, time_of_day ASC").Find(&slots).Error
	return slots, err
}

func (s *GormStore) ListTimerSlotsForDay(ctx context.Context, kind models.TimerKind, day time.Weekday) ([]models.TimerSlot, error) {
	var slots []models.TimerSlot
	err := s.timers(ctx, kind).
		Where("day_of_week = ?", int(day)).
		Order("time_of_day ASC").
		Find(&slots).Error
	return slots, err
}

func (s *GormStore) GetTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) (*models.TimerSlot, error) {
	var slot models.TimerSlot
	if err := s.timers(ctx, kind).Where("id = ?", id).First(&slot).Error; err != nil {
		return nil, notFound(err)
	}
	return &slot, nil
}

func (s *GormStore) CreateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error {
	return s.timers(ctx, kind).Create(slot).Error
}

func (s *GormStore) UpdateTimerSlot(ctx context.Context, kind models.TimerKind, slot *models.TimerSlot) error {
	return affected(s.timers(ctx, kind).Where("id = ?", slot.ID).Updates(map[string]interface{}{
		"day_of_week": slot.DayOfWeek,
		"time_of_day": slot.TimeOfDay,
		"active":      slot.Active,
		"updated_at":  time.Now(),
	}))
}

func (s *GormStore) DeleteTimerSlot(ctx context.Context, kind models.TimerKind, id uuid.UUID) error {
	return affected(s.timers(ctx, kind).Where("id = ?", id).Delete(&models.TimerSlot{}))
}

func (s *GormStore) SetTimerActive(ctx context.Context, kind models.TimerKind, id uuid.UUID, active bool) error {
	return affected(s.timers(ctx, kind).Where("id = ?", id).Updates(map[string]interface{}{
		"active":     active,
		"updated_at": time.Now(),
	}))
}

// Admins

func (s *GormStore) GetAdminByUsername(ctx context.Context, username string) (*models.AdminUser, error) {
	var admin models.AdminUser
	if err := s.db.WithContext(ctx).First(&admin, "username = ?", username).Error; err != nil {
		return nil, notFound(err)
	}
	return &admin, nil
}

func (s *GormStore) CreateAdmin(ctx context.Context, admin *models.AdminUser) error {
	return s.db.WithContext(ctx).Create(admin).Error
}
