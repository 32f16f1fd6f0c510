package scheduling

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	requestRepo "curbside/database/repository/request"
	slotRepo "curbside/database/repository/slot"
	"curbside/models"
	"curbside/services/billing"
	"curbside/services/payment"
	"curbside/services/policy"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// In-memory repository fakes. They honor the same atomicity contracts as the
// mongo implementations: reserve is a single check-and-increment under lock,
// payment resolution is conditional on the pending status.

type fakeSlotRepo struct {
	mu    sync.Mutex
	slots map[string]*models.SlotBucket
}

func newFakeSlotRepo() *fakeSlotRepo {
	return &fakeSlotRepo{slots: make(map[string]*models.SlotBucket)}
}

func (f *fakeSlotRepo) EnsureBuckets(_ context.Context, buckets []models.SlotBucket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range buckets {
		if _, ok := f.slots[b.ID]; !ok {
			bb := b
			f.slots[b.ID] = &bb
		}
	}
	return nil
}

func (f *fakeSlotRepo) ListCandidates(_ context.Context, policyID, date string, fromMinute int) ([]models.SlotBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.SlotBucket
	for _, b := range f.slots {
		if b.ItemPolicyID == policyID && b.Date == date && b.Start > fromMinute && b.Remaining() > 0 {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeSlotRepo) GetByID(_ context.Context, slotID string) (*models.SlotBucket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.slots[slotID]
	if !ok {
		return nil, slotRepo.ErrSlotNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeSlotRepo) Reserve(_ context.Context, slotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.slots[slotID]
	if !ok {
		return slotRepo.ErrSlotNotFound
	}
	if b.CapacityReserved >= b.CapacityTotal {
		return slotRepo.ErrCapacityExceeded
	}
	b.CapacityReserved++
	b.Version++
	return nil
}

func (f *fakeSlotRepo) Release(_ context.Context, slotID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.slots[slotID]
	if !ok || b.CapacityReserved == 0 {
		return nil
	}
	b.CapacityReserved--
	b.Version++
	return nil
}

func (f *fakeSlotRepo) reserved(slotID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.slots[slotID]; ok {
		return b.CapacityReserved
	}
	return -1
}

type fakeRequestRepo struct {
	mu        sync.Mutex
	requests  map[string]*models.Request
	createErr error
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*models.Request)}
}

func (f *fakeRequestRepo) Create(_ context.Context, req *models.Request) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now()
	req.CreatedAt = now
	req.UpdatedAt = now
	cp := *req
	f.requests[req.ID] = &cp
	return nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok {
		return nil, requestRepo.ErrRequestNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRequestRepo) GetByPaymentRef(_ context.Context, sessionID string) (*models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.requests {
		if r.PaymentReference == sessionID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, requestRepo.ErrRequestNotFound
}

func (f *fakeRequestRepo) ListByResident(_ context.Context, residentID string) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Request
	for _, r := range f.requests {
		if r.ResidentID == residentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ResolvePayment(_ context.Context, id string, outcome requestRepo.PaymentOutcome) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	r.Status = outcome.Status
	r.PaymentStatus = outcome.PaymentStatus
	r.PaidAt = outcome.PaidAt
	if outcome.ReceiptURL != "" {
		r.ReceiptURL = outcome.ReceiptURL
	}
	r.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestRepo) CancelIfUnpaid(_ context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.requests[id]
	if !ok || r.PaymentStatus != models.PaymentPending {
		return false, nil
	}
	r.Status = models.StatusCancelled
	r.PaymentStatus = models.PaymentFailed
	r.UpdatedAt = time.Now()
	return true, nil
}

func (f *fakeRequestRepo) ListExpired(_ context.Context, now time.Time) ([]models.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Request
	for _, r := range f.requests {
		if r.PaymentStatus == models.PaymentPending && r.PaymentDueAt != nil && r.PaymentDueAt.Before(now) {
			out = append(out, *r)
		}
	}
	return out, nil
}

type fakeGateway struct {
	mu        sync.Mutex
	created   int
	getCalls  int
	statuses  map[string]*models.SessionStatus
	createErr error
	getErr    error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{statuses: make(map[string]*models.SessionStatus)}
}

func (f *fakeGateway) CreateCheckoutSession(_ context.Context, in payment.CreateSessionInput) (*models.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created++
	id := fmt.Sprintf("cs_test_%d", f.created)
	f.statuses[id] = &models.SessionStatus{PaymentStatus: "pending", AmountTotal: in.Amount}
	return &models.CheckoutSession{
		SessionID:   id,
		CheckoutURL: "https://checkout.example/" + id,
		Amount:      in.Amount,
		Currency:    in.Currency,
	}, nil
}

func (f *fakeGateway) GetSessionStatus(_ context.Context, sessionID string) (*models.SessionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	st, ok := f.statuses[sessionID]
	if !ok {
		return nil, errors.New("no such session")
	}
	cp := *st
	return &cp, nil
}

func (f *fakeGateway) setStatus(sessionID, status string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if st, ok := f.statuses[sessionID]; ok {
		st.PaymentStatus = status
	} else {
		f.statuses[sessionID] = &models.SessionStatus{PaymentStatus: status}
	}
}

// fakeLocker scripts SetNX outcomes and records deletions.
type fakeLocker struct {
	mu       sync.Mutex
	setNXVal bool
	setNXErr error
	deleted  []string
}

func (f *fakeLocker) SetNX(_ context.Context, _ string, _ interface{}, _ time.Duration) *redis.BoolCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	return redis.NewBoolResult(f.setNXVal, f.setNXErr)
}

func (f *fakeLocker) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, keys...)
	return redis.NewIntResult(int64(len(keys)), nil)
}

type fakeBilling struct {
	mu        sync.Mutex
	created   []billing.CreateBillInput
	paid      []string
	createErr error
}

func (f *fakeBilling) CreateOutstandingBill(_ context.Context, in billing.CreateBillInput) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.created = append(f.created, in)
	return fmt.Sprintf("bill-%d", len(f.created)), nil
}

func (f *fakeBilling) MarkBillPaid(_ context.Context, billID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paid = append(f.paid, billID)
	return nil
}

// testNow is a Tuesday morning; the default test window keeps weekends out.
var testNow = time.Date(2026, time.September, 1, 9, 0, 0, 0, time.Local)

var testPolicies = []models.ItemPolicy{
	{ID: "furniture", Label: "Furniture", Allow: true, BaseFee: 1500, PerKgRate: 20},
	{ID: "garden-waste", Label: "Garden waste", Allow: true, BaseFee: 0, PerKgRate: 10, FreeWeightThreshold: 30},
	{ID: "hazardous", Label: "Hazardous", Allow: false},
}

type testEnv struct {
	svc      *DefaultSchedulingService
	slots    *fakeSlotRepo
	requests *fakeRequestRepo
	gateway  *fakeGateway
	billing  *fakeBilling
}

func newTestEnv() *testEnv {
	slots := newFakeSlotRepo()
	requests := newFakeRequestRepo()
	gateway := newFakeGateway()
	bills := &fakeBilling{}

	svc := &DefaultSchedulingService{
		Slots:    slots,
		Requests: requests,
		Policies: policy.NewStatic(testPolicies),
		Billing:  bills,
		Gateway:  gateway,
		Logger:   zap.NewNop(),
		SlotCfg: SlotConfig{
			DaysAhead:       14,
			BucketMinutes:   120,
			DayStartMinute:  480,
			DayEndMinute:    1020,
			ExcludeWeekends: true,
			DefaultCapacity: 4,
		},
		TaxRatePercent: 3.0,
		Currency:       "usd",
		SuccessURL:     "https://portal.example/checkout/return",
		CancelURL:      "https://portal.example/checkout/cancelled",
		Now:            func() time.Time { return testNow },
	}
	return &testEnv{svc: svc, slots: slots, requests: requests, gateway: gateway, billing: bills}
}

// seedSlot materializes one bucket directly, bypassing generation.
func (e *testEnv) seedSlot(policyID, date string, start, capacity int) string {
	id := models.SlotID(policyID, date, start)
	_ = e.slots.EnsureBuckets(context.Background(), []models.SlotBucket{{
		ID:            id,
		ItemPolicyID:  policyID,
		Date:          date,
		Start:         start,
		End:           start + 120,
		CapacityTotal: capacity,
	}})
	return id
}
