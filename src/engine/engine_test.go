package engine

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"centavo-server/src/models"
)

// memStore is an in-memory Store for exercising the engine without Postgres.
// It mirrors the production locking discipline: BudgetForUpdate claims a
// per-budget mutex that is held until Commit or Rollback, and writes are
// staged so a failed unit of work leaves nothing behind.
type memStore struct {
	mu           sync.Mutex
	budgets      map[int]models.Budget
	categories   map[int]models.Category
	transactions map[int]models.Transaction
	budgetLocks  map[int]*sync.Mutex
	nextTxnID    int
}

func newMemStore() *memStore {
	return &memStore{
		budgets:      make(map[int]models.Budget),
		categories:   make(map[int]models.Category),
		transactions: make(map[int]models.Transaction),
		budgetLocks:  make(map[int]*sync.Mutex),
		nextTxnID:    1,
	}
}

func (s *memStore) budgetLock(budgetID int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.budgetLocks[budgetID]
	if !ok {
		l = &sync.Mutex{}
		s.budgetLocks[budgetID] = l
	}
	return l
}

func (s *memStore) Begin(_ context.Context) (Tx, error) {
	return &memTx{
		s:             s,
		stagedAmounts: make(map[int]float64),
		stagedUpdates: make(map[int]models.Transaction),
		stagedDeletes: make(map[int]bool),
	}, nil
}

type memTx struct {
	s             *memStore
	stagedAmounts map[int]float64
	stagedInserts []models.Transaction
	stagedUpdates map[int]models.Transaction
	stagedDeletes map[int]bool
	locked        []*sync.Mutex
	done          bool
}

func (t *memTx) Budget(_ context.Context, budgetID int, ownerID string) (*models.Budget, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	b, ok := t.s.budgets[budgetID]
	if !ok || b.UserID != ownerID {
		return nil, ErrNotFound
	}
	if amt, staged := t.stagedAmounts[budgetID]; staged {
		b.Amount = amt
	}
	return &b, nil
}

func (t *memTx) BudgetForUpdate(ctx context.Context, budgetID int, ownerID string) (*models.Budget, error) {
	l := t.s.budgetLock(budgetID)
	l.Lock()
	b, err := t.Budget(ctx, budgetID, ownerID)
	if err != nil {
		l.Unlock()
		return nil, err
	}
	t.locked = append(t.locked, l)
	return b, nil
}

func (t *memTx) SaveBudgetAmount(_ context.Context, budgetID int, amount float64) error {
	t.stagedAmounts[budgetID] = amount
	return nil
}

func (t *memTx) Category(_ context.Context, categoryID int) (*models.Category, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	c, ok := t.s.categories[categoryID]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (t *memTx) TransactionForUpdate(_ context.Context, transactionID int, ownerID string) (*models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	tr, ok := t.s.transactions[transactionID]
	if !ok || tr.UserID != ownerID {
		return nil, ErrNotFound
	}
	return &tr, nil
}

func (t *memTx) TransactionsByBudget(_ context.Context, budgetID int) ([]models.Transaction, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	var out []models.Transaction
	for _, tr := range t.s.transactions {
		if tr.BudgetID == budgetID {
			out = append(out, tr)
		}
	}
	return out, nil
}

func (t *memTx) InsertTransaction(_ context.Context, tr *models.Transaction) (*models.Transaction, error) {
	t.s.mu.Lock()
	saved := *tr
	saved.ID = t.s.nextTxnID
	t.s.nextTxnID++
	t.s.mu.Unlock()
	t.stagedInserts = append(t.stagedInserts, saved)
	return &saved, nil
}

func (t *memTx) UpdateTransaction(_ context.Context, tr *models.Transaction) error {
	t.stagedUpdates[tr.ID] = *tr
	return nil
}

func (t *memTx) DeleteTransaction(_ context.Context, transactionID int) error {
	t.stagedDeletes[transactionID] = true
	return nil
}

func (t *memTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New("tx closed")
	}
	t.s.mu.Lock()
	for id, amount := range t.stagedAmounts {
		b := t.s.budgets[id]
		b.Amount = amount
		t.s.budgets[id] = b
	}
	for _, tr := range t.stagedInserts {
		t.s.transactions[tr.ID] = tr
	}
	for id, tr := range t.stagedUpdates {
		t.s.transactions[id] = tr
	}
	for id := range t.stagedDeletes {
		delete(t.s.transactions, id)
	}
	t.s.mu.Unlock()
	t.release()
	return nil
}

func (t *memTx) Rollback(_ context.Context) error {
	if t.done {
		return nil
	}
	t.release()
	return nil
}

func (t *memTx) release() {
	for _, l := range t.locked {
		l.Unlock()
	}
	t.locked = nil
	t.done = true
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []LowBalanceAlert
}

func (n *recordingNotifier) Notify(_ context.Context, alert LowBalanceAlert) {
	n.mu.Lock()
	n.alerts = append(n.alerts, alert)
	n.mu.Unlock()
}

const owner = "11111111-1111-1111-1111-111111111111"

func newTestEngine(budgetAmount float64) (*Engine, *memStore, *recordingNotifier) {
	s := newMemStore()
	s.categories[1] = models.Category{ID: 1, Name: "Groceries"}
	s.categories[2] = models.Category{ID: 2, Name: "Transport"}
	s.budgets[10] = models.Budget{
		ID:         10,
		UserID:     owner,
		Name:       "Monthly groceries",
		Amount:     budgetAmount,
		Currency:   "COP",
		Period:     "monthly",
		CategoryID: 1,
	}
	n := &recordingNotifier{}
	return New(s, n), s, n
}

func (s *memStore) budgetAmount(t *testing.T, id int) float64 {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		t.Fatalf("budget %d missing", id)
	}
	return b.Amount
}

func (s *memStore) transactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.transactions)
}

func TestCreateTransactionDebitsBudget(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	result, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30, Description: "market run",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("budget amount = %v, want 70", got)
	}
	if result.Code != 201 {
		t.Fatalf("code = %d, want 201", result.Code)
	}
	if result.Data == nil {
		t.Fatal("expected data payload")
	}
	if result.Data.Amount != 30 || result.Data.Description != "market run" {
		t.Fatalf("unexpected transaction view: %+v", result.Data)
	}
	if result.Data.Budget.RemainingAmount != 70 {
		t.Fatalf("remainingAmount = %v, want 70", result.Data.Budget.RemainingAmount)
	}
	if result.Data.Category.ID != 1 || result.Data.Category.Name != "Groceries" {
		t.Fatalf("unexpected category view: %+v", result.Data.Category)
	}
	if want := time.Now().Format("2006-01-02"); result.Data.Date != want {
		t.Fatalf("date = %q, want %q", result.Data.Date, want)
	}
}

func TestCreateTransactionRejectsNonPositiveAmount(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	for _, amount := range []float64{0, -25} {
		_, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
			BudgetID: 10, CategoryID: 1, Amount: amount,
		})
		if !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("amount %v: err = %v, want ErrInvalidAmount", amount, err)
		}
	}
	if got := s.budgetAmount(t, 10); got != 100 {
		t.Fatalf("budget changed on rejected create: %v", got)
	}
	if s.transactionCount() != 0 {
		t.Fatal("transaction written on rejected create")
	}
}

func TestUpdateTransactionRejectsNonPositiveAmount(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30,
	})
	id := created.Data.ID

	// A negative new amount would credit the budget through the delta.
	newAmount := -5.0
	_, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{Amount: &newAmount})
	if !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("err = %v, want ErrInvalidAmount", err)
	}
	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("budget changed on rejected update: %v", got)
	}
	s.mu.Lock()
	stored := s.transactions[id]
	s.mu.Unlock()
	if stored.Amount != 30 {
		t.Fatalf("transaction changed on rejected update: %v", stored.Amount)
	}
}

func TestCreateTransactionInsufficientFunds(t *testing.T) {
	eng, s, _ := newTestEngine(100)

	_, err := eng.CreateTransaction(context.Background(), owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 150, Description: "too big",
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := s.budgetAmount(t, 10); got != 100 {
		t.Fatalf("budget changed on rejected create: %v", got)
	}
	if s.transactionCount() != 0 {
		t.Fatal("transaction written on rejected create")
	}
}

func TestCreateTransactionCategoryMismatch(t *testing.T) {
	eng, s, _ := newTestEngine(100)

	_, err := eng.CreateTransaction(context.Background(), owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 2, Amount: 30, Description: "wrong bucket",
	})
	if !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("err = %v, want ErrCategoryMismatch", err)
	}
	if got := s.budgetAmount(t, 10); got != 100 {
		t.Fatalf("budget changed on rejected create: %v", got)
	}
	if s.transactionCount() != 0 {
		t.Fatal("transaction written on rejected create")
	}
}

func TestCreateTransactionBudgetNotFound(t *testing.T) {
	eng, _, _ := newTestEngine(100)
	ctx := context.Background()

	_, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 99, CategoryID: 1, Amount: 10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// A budget owned by someone else is indistinguishable from a missing one.
	_, err = eng.CreateTransaction(ctx, "someone-else", CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 10,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreateValidationOrder(t *testing.T) {
	// Sufficiency is checked before category match, so an over-budget
	// request with the wrong category reports InsufficientFunds.
	eng, _, _ := newTestEngine(10)

	_, err := eng.CreateTransaction(context.Background(), owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 2, Amount: 50,
	})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
}

func TestUpdateTransactionAmountAppliesDelta(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30, Description: "initial",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	id := created.Data.ID

	// Increase 30 -> 50: budget drops by the 20 difference.
	newAmount := 50.0
	result, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 50 {
		t.Fatalf("budget amount = %v, want 50", got)
	}
	if result.Data.Amount != 50 {
		t.Fatalf("transaction amount = %v, want 50", result.Data.Amount)
	}

	// Decrease 50 -> 10: the negative difference gives balance back.
	newAmount = 10.0
	_, err = eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{Amount: &newAmount})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 90 {
		t.Fatalf("budget amount = %v, want 90", got)
	}
}

func TestUpdateTransactionInsufficientFunds(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30,
	})
	id := created.Data.ID

	// Remaining is 70; raising the transaction by 170 is over the line.
	newAmount := 200.0
	_, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{Amount: &newAmount})
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("err = %v, want ErrInsufficientFunds", err)
	}
	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("budget changed on rejected update: %v", got)
	}
	s.mu.Lock()
	stored := s.transactions[id]
	s.mu.Unlock()
	if stored.Amount != 30 {
		t.Fatalf("transaction changed on rejected update: %v", stored.Amount)
	}
}

func TestUpdateTransactionCategoryMismatch(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30,
	})
	id := created.Data.ID

	// Category match is against the budget's category, not the
	// transaction's old one.
	wrongCategory := 2
	_, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{CategoryID: &wrongCategory})
	if !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("err = %v, want ErrCategoryMismatch", err)
	}
	s.mu.Lock()
	stored := s.transactions[id]
	s.mu.Unlock()
	if stored.CategoryID != 1 {
		t.Fatalf("category changed on rejected update: %d", stored.CategoryID)
	}
}

func TestUpdateTransactionNoFieldsIsIdempotent(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30, Description: "unchanged",
	})
	id := created.Data.ID

	result, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{})
	if err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if result.Code != 200 {
		t.Fatalf("code = %d, want 200", result.Code)
	}
	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("budget amount = %v, want 70", got)
	}
	s.mu.Lock()
	stored := s.transactions[id]
	s.mu.Unlock()
	if stored.Amount != 30 || stored.Description != "unchanged" || stored.CategoryID != 1 {
		t.Fatalf("no-op update changed stored transaction: %+v", stored)
	}
}

func TestUpdateTransactionDescriptionOnly(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30, Description: "old",
	})
	id := created.Data.ID

	desc := "new"
	result, err := eng.UpdateTransaction(ctx, id, owner, UpdateTransactionRequest{Description: &desc})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if result.Data.Description != "new" {
		t.Fatalf("description = %q, want %q", result.Data.Description, "new")
	}
	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("budget amount = %v, want 70", got)
	}
}

func TestDeleteTransactionRestoresBudget(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 37.5, Description: "round trip",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 62.5 {
		t.Fatalf("budget amount = %v, want 62.5", got)
	}

	result, err := eng.DeleteTransaction(ctx, created.Data.ID, owner)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if result.Code != 200 || result.Data != nil {
		t.Fatalf("unexpected delete envelope: %+v", result)
	}
	if got := s.budgetAmount(t, 10); got != 100 {
		t.Fatalf("budget amount = %v, want exact pre-create 100", got)
	}
	if s.transactionCount() != 0 {
		t.Fatal("transaction row still present after delete")
	}
}

func TestDeleteTransactionInvalidState(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	created, _ := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30,
	})
	id := created.Data.ID

	// Corrupt the stored balance; the restore must refuse to produce a
	// non-finite amount.
	s.mu.Lock()
	b := s.budgets[10]
	b.Amount = math.NaN()
	s.budgets[10] = b
	s.mu.Unlock()

	_, err := eng.DeleteTransaction(ctx, id, owner)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("err = %v, want ErrInvalidState", err)
	}
	if s.transactionCount() != 1 {
		t.Fatal("transaction removed despite rejected restore")
	}
}

func TestDeleteTransactionNotFound(t *testing.T) {
	eng, _, _ := newTestEngine(100)

	_, err := eng.DeleteTransaction(context.Background(), 404, owner)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

// The balance invariant across a full lifecycle: after every event the
// budget moved by exactly the event's delta.
func TestLifecycleBalanceInvariant(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	first, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 50,
	})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 50 {
		t.Fatalf("after create 50: %v, want 50", got)
	}

	lowered := 20.0
	if _, err := eng.UpdateTransaction(ctx, first.Data.ID, owner, UpdateTransactionRequest{Amount: &lowered}); err != nil {
		t.Fatalf("update first: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 80 {
		t.Fatalf("after update 50->20: %v, want 80", got)
	}

	second, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 30,
	})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 50 {
		t.Fatalf("after create 30: %v, want 50", got)
	}

	if _, err := eng.DeleteTransaction(ctx, first.Data.ID, owner); err != nil {
		t.Fatalf("delete first: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 70 {
		t.Fatalf("after delete 20: %v, want 70", got)
	}

	if _, err := eng.DeleteTransaction(ctx, second.Data.ID, owner); err != nil {
		t.Fatalf("delete second: %v", err)
	}
	if got := s.budgetAmount(t, 10); got != 100 {
		t.Fatalf("after delete 30: %v, want 100", got)
	}
}

func TestLowBalanceNotification(t *testing.T) {
	eng, _, n := newTestEngine(100)
	ctx := context.Background()

	// 100 -> 9 remaining: 9/100 is at or below the 0.10 threshold.
	if _, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 91,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.alerts) != 1 {
		t.Fatalf("alerts = %d, want exactly 1", len(n.alerts))
	}
	alert := n.alerts[0]
	if alert.OwnerID != owner || alert.BudgetName != "Monthly groceries" {
		t.Fatalf("unexpected alert: %+v", alert)
	}
	if alert.RemainingAmount != 9 {
		t.Fatalf("remainingAmount = %v, want 9", alert.RemainingAmount)
	}
}

func TestLowBalanceNotTriggeredAboveThreshold(t *testing.T) {
	eng, _, n := newTestEngine(100)

	if _, err := eng.CreateTransaction(context.Background(), owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 50,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.alerts) != 0 {
		t.Fatalf("alerts = %d, want 0", len(n.alerts))
	}
}

func TestNilNotifierIsSafe(t *testing.T) {
	s := newMemStore()
	s.categories[1] = models.Category{ID: 1, Name: "Groceries"}
	s.budgets[10] = models.Budget{ID: 10, UserID: owner, Name: "b", Amount: 100, CategoryID: 1}
	eng := New(s, nil)

	if _, err := eng.CreateTransaction(context.Background(), owner, CreateTransactionRequest{
		BudgetID: 10, CategoryID: 1, Amount: 95,
	}); err != nil {
		t.Fatalf("create with nil notifier: %v", err)
	}
}

// Two debits racing on the same budget must serialize on the budget claim.
// Without it, both read the same balance and the budget loses one debit.
func TestConcurrentCreatesDoNotLoseUpdates(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	const workers = 40
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			if _, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
				BudgetID: 10, CategoryID: 1, Amount: 2,
			}); err != nil {
				t.Errorf("concurrent create: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := s.budgetAmount(t, 10); got != 100-2*workers {
		t.Fatalf("budget amount = %v, want %v", got, 100-2*workers)
	}
	if s.transactionCount() != workers {
		t.Fatalf("transactions = %d, want %d", s.transactionCount(), workers)
	}
}

func TestConcurrentCreatesCannotOverdraw(t *testing.T) {
	eng, s, _ := newTestEngine(100)
	ctx := context.Background()

	// Two transactions of 60 against a balance of 100: exactly one fits.
	results := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := eng.CreateTransaction(ctx, owner, CreateTransactionRequest{
				BudgetID: 10, CategoryID: 1, Amount: 60,
			})
			results <- err
		}()
	}

	var failures int
	for i := 0; i < 2; i++ {
		if err := <-results; err != nil {
			if !errors.Is(err, ErrInsufficientFunds) {
				t.Fatalf("unexpected error: %v", err)
			}
			failures++
		}
	}
	if failures != 1 {
		t.Fatalf("failures = %d, want exactly 1", failures)
	}
	if got := s.budgetAmount(t, 10); got != 40 {
		t.Fatalf("budget amount = %v, want 40", got)
	}
	if s.transactionCount() != 1 {
		t.Fatalf("transactions = %d, want 1", s.transactionCount())
	}
}
