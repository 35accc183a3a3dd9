//go:build integration

package store

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/kaskroutek/internal/database"
	"github.com/example/kaskroutek/internal/database/dbtest"
	"github.com/example/kaskroutek/internal/models"
)

var pgDB *gorm.DB

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	env, err := dbtest.Setup(ctx)
	if err != nil {
		log.Fatalf("start postgres: %v", err)
	}
	pgDB, err = database.Connect(env.PGURL)
	if err != nil {
		env.Teardown(ctx)
		log.Fatalf("connect: %v", err)
	}

	code := m.Run()
	env.Teardown(ctx)
	os.Exit(code)
}

func postgresStore(t *testing.T) *GormStore {
	t.Helper()
	if pgDB == nil {
		t.Skip("postgres tests need docker; skipped in -short mode")
	}
	if err := dbtest.Reset(pgDB); err != nil {
		t.Fatalf("reset: %v", err)
	}
	return NewGormStore(pgDB)
}

func pts(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestGormAddPointsUpserts(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	account, err := s.AddPoints(ctx, "22123456", "Amine", pts("10"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !account.TotalPoints.Equal(pts("10")) || account.CustomerName != "Amine" {
		t.Fatalf("unexpected account %+v", account)
	}

	account, err = s.AddPoints(ctx, "22123456", "", pts("2.5"))
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if !account.TotalPoints.Equal(pts("12.5")) {
		t.Fatalf("balance = %s, want 12.5", account.TotalPoints)
	}
	if account.CustomerName != "Amine" {
		t.Fatalf("name overwritten with %q", account.CustomerName)
	}

	_, total, err := s.ListLoyaltyAccounts(ctx, 10, 0)
	if err != nil || total != 1 {
		t.Fatalf("expected one account row, got %d (%v)", total, err)
	}
}

func TestGormDeductPointsIsConditional(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	if _, err := s.AddPoints(ctx, "22123456", "Amine", pts("10")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := s.DeductPoints(ctx, "22123456", pts("10.01")); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("over balance: expected ErrInsufficientPoints, got %v", err)
	}
	account, err := s.DeductPoints(ctx, "22123456", pts("10"))
	if err != nil {
		t.Fatalf("exact balance: %v", err)
	}
	if !account.TotalPoints.IsZero() {
		t.Fatalf("balance = %s, want 0", account.TotalPoints)
	}
	if _, err := s.DeductPoints(ctx, "99999999", pts("1")); !errors.Is(err, ErrInsufficientPoints) {
		t.Fatalf("unknown phone: expected ErrInsufficientPoints, got %v", err)
	}
}

func TestGormConcurrentDeductionsNeverOverdraw(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	if _, err := s.AddPoints(ctx, "22123456", "Amine", pts("10")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	const workers = 25
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.DeductPoints(ctx, "22123456", pts("1"))
			if err != nil && !errors.Is(err, ErrInsufficientPoints) {
				t.Errorf("deduct: %v", err)
				return
			}
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected 10 successful deductions, got %d", succeeded)
	}
	account, err := s.GetLoyaltyAccount(ctx, "22123456")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !account.TotalPoints.IsZero() {
		t.Fatalf("balance = %s, want 0", account.TotalPoints)
	}
}

func TestGormTransactionRollsBack(t *testing.T) {
	s := postgresStore(t)
	ctx := context.Background()

	if _, err := s.AddPoints(ctx, "22123456", "Amine", pts("30")); err != nil {
		t.Fatalf("seed: %v", err)
	}

	boom := errors.New("order write failed")
	err := s.Transaction(ctx, func(tx Store) error {
		if _, err := tx.DeductPoints(ctx, "22123456", pts("20")); err != nil {
			return err
		}
		if err := tx.AppendPointsTransaction(ctx, &models.PointsTransaction{
			PhoneNumber: "22123456",
			Amount:      pts("-20"),
			Type:        models.PointsSpend,
		}); err != nil {
			return err
		}
		order := models.Order{
			CustomerName:   "Amine",
			PhoneNumber:    "22123456",
			TotalPrice:     pts("20"),
			Status:         models.StatusAwaitingConfirmation,
			PaymentMethod:  models.PaymentPoints,
			DeliveryMethod: models.DeliveryPickup,
		}
		if err := tx.CreateOrder(ctx, &order); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	account, err := s.GetLoyaltyAccount(ctx, "22123456")
	if err != nil || !account.TotalPoints.Equal(pts("30")) {
		t.Fatalf("deduction not rolled back: %+v %v", account, err)
	}
	if txs, _ := s.ListPointsTransactions(ctx, "22123456"); len(txs) != 0 {
		t.Fatalf("spend entry not rolled back: %+v", txs)
	}
	if _, total, _ := s.ListOrders(ctx, OrderFilter{}); total != 0 {
		t.Fatalf("order not rolled back: %d rows", total)
	}
}
