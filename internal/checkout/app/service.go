package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dwikikusuma/foodstore/internal/checkout/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrEmptyCart        = errors.New("cart is empty")
	ErrCheckoutNotFound = errors.New("checkout not found")
)

type Service struct {
	Cart     CartReader
	Receipts ReceiptWriter
	Sessions SessionRepo

	policy  domain.Policy
	metrics Recorder
	now     func() time.Time

	// serialises completion per session so a double tap clears and
	// records once
	completeMu sync.Mutex
}

func NewService(cart CartReader, receipts ReceiptWriter, sessions SessionRepo, policy domain.Policy, metrics Recorder) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}

	return &Service{
		Cart:     cart,
		Receipts: receipts,
		Sessions: sessions,
		policy:   policy,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Bill prices the user's current cart. An empty cart yields a zero bill.
func (s *Service) Bill(ctx context.Context, userID string) (domain.Bill, error) {
	if strings.TrimSpace(userID) == "" {
		return domain.Bill{}, ErrInvalidInput
	}

	lines, err := s.Cart.GetCart(ctx, userID)
	if err != nil {
		return domain.Bill{}, err
	}
	return s.policy.ComputeBill(toBillLines(lines)), nil
}

// Initiate moves a non-empty cart to the payment screen. Payment always
// succeeds, so the session starts as approved.
func (s *Service) Initiate(ctx context.Context, userID string) (domain.Session, error) {
	bill, err := s.Bill(ctx, userID)
	if err != nil {
		return domain.Session{}, err
	}
	if len(bill.Lines) == 0 {
		return domain.Session{}, ErrEmptyCart
	}

	session := domain.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.StatusPaymentApproved,
		Bill:      bill,
		CreatedAt: s.now().UTC(),
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save checkout: %w", err)
	}
	return session, nil
}

func (s *Service) Get(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	session, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	// another user's session is reported the same as a missing one
	if session.UserID != userID {
		return domain.Session{}, ErrCheckoutNotFound
	}
	return session, nil
}

// Complete records the receipt and clears the cart. Completing an already
// completed session returns it unchanged.
func (s *Service) Complete(ctx context.Context, userID, sessionID string) (domain.Session, error) {
	s.completeMu.Lock()
	defer s.completeMu.Unlock()

	session, err := s.Get(ctx, userID, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	if session.Status == domain.StatusCompleted {
		return session, nil
	}

	receiptID, err := s.Receipts.RecordReceipt(ctx, session)
	if err != nil {
		return domain.Session{}, fmt.Errorf("record receipt: %w", err)
	}

	if err := s.Cart.ClearCart(ctx, userID); err != nil {
		return domain.Session{}, fmt.Errorf("clear cart: %w", err)
	}

	done := s.now().UTC()
	session.Status = domain.StatusCompleted
	session.ReceiptID = receiptID
	session.CompletedAt = &done
	if err := s.Sessions.Save(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("save checkout: %w", err)
	}

	s.metrics.CheckoutCompleted(ctx, session.Bill.TotalPay)
	return session, nil
}

func toBillLines(lines []CartLine) []domain.BillLine {
	out := make([]domain.BillLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, domain.BillLine{
			ItemID:    l.ItemID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}
	return out
}
