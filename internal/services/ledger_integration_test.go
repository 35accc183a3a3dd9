//go:build integration

package services

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/example/kaskroutek/internal/database"
	"github.com/example/kaskroutek/internal/database/dbtest"
	"github.com/example/kaskroutek/internal/models"
	"github.com/example/kaskroutek/internal/store"
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

type pgFixture struct {
	store  *store.GormStore
	ledger *Ledger
	bread  models.Bread
}

func newPostgresFixture(t *testing.T) *pgFixture {
	t.Helper()
	if pgDB == nil {
		t.Skip("postgres tests need docker; skipped in -short mode")
	}
	if err := dbtest.Reset(pgDB); err != nil {
		t.Fatalf("reset: %v", err)
	}

	s := store.NewGormStore(pgDB)
	bread := models.Bread{Name: "Baguette, Baguette", Price: dec("10.00")}
	if err := s.CreateBread(context.Background(), &bread); err != nil {
		t.Fatalf("create bread: %v", err)
	}
	return &pgFixture{
		store:  s,
		ledger: NewLedger(s, &recordingNotifier{}, time.UTC),
		bread:  bread,
	}
}

func (f *pgFixture) item(quantity int) CartItemInput {
	return CartItemInput{BreadID: f.bread.ID, Quantity: quantity}
}

func (f *pgFixture) checkoutInput(method models.PaymentMethod, quantity int) CheckoutInput {
	return CheckoutInput{
		CustomerName:  "Amine",
		PhoneNumber:   testPhone,
		Items:         []CartItemInput{f.item(quantity)},
		PaymentMethod: method,
	}
}

func (f *pgFixture) assertBalance(t *testing.T, want string) {
	t.Helper()
	ctx := context.Background()
	account, err := f.ledger.GetLoyaltyAccount(ctx, testPhone)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !account.TotalPoints.Equal(dec(want)) {
		t.Fatalf("balance = %s, want %s", account.TotalPoints, want)
	}

	txs, err := f.store.ListPointsTransactions(ctx, testPhone)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	sum := dec("0")
	for _, tx := range txs {
		sum = sum.Add(tx.Amount)
	}
	if !sum.Equal(account.TotalPoints) {
		t.Fatalf("balance %s != sum of transactions %s", account.TotalPoints, sum)
	}
}

func TestPostgresCheckoutRollsBackRedemption(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	if _, err := f.ledger.AdminAdjustPoints(ctx, testPhone, "Amine", dec("100")); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	created := 0
	ledger := NewLedger(failingStore{Store: f.store, failAfter: 1, created: &created}, nil, time.UTC)
	_, err := ledger.Checkout(ctx, f.checkoutInput(models.PaymentPoints, 2))
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}

	f.assertBalance(t, "100")
	if _, total, _ := f.store.ListOrders(ctx, store.OrderFilter{}); total != 0 {
		t.Fatalf("expected no orders after rollback, got %d", total)
	}
}

func TestPostgresConcurrentRedemptionsNeverOverdraw(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()
	if _, err := f.ledger.AdminAdjustPoints(ctx, testPhone, "Amine", dec("20")); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	const attempts = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.ledger.Checkout(ctx, f.checkoutInput(models.PaymentPoints, 1))
			if err != nil && !errors.Is(err, ErrInsufficientPoints) {
				t.Errorf("checkout: %v", err)
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

	if succeeded != 2 {
		t.Fatalf("expected 2 redemptions of 10 points, got %d", succeeded)
	}
	f.assertBalance(t, "0")
	if _, total, _ := f.store.ListOrders(ctx, store.OrderFilter{}); total != 2 {
		t.Fatalf("expected 2 orders, got %d", total)
	}
}

func TestPostgresConcurrentDeliveryAwardsOnce(t *testing.T) {
	f := newPostgresFixture(t)
	ctx := context.Background()

	orders, err := f.ledger.Checkout(ctx, f.checkoutInput(models.PaymentCash, 1))
	if err != nil {
		t.Fatalf("checkout: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.ledger.TransitionOrderStatus(ctx, orders[0].ID, models.StatusDelivered); err != nil {
				t.Errorf("deliver: %v", err)
			}
		}()
	}
	wg.Wait()

	txs, err := f.store.ListPointsTransactions(ctx, testPhone)
	if err != nil {
		t.Fatalf("transactions: %v", err)
	}
	if len(txs) != 1 || txs[0].Type != models.PointsEarn {
		t.Fatalf("expected a single earn entry, got %+v", txs)
	}
	// 5% of 10.00
	f.assertBalance(t, "0.5")
}
