package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/addhory/eviction-tracker-next-app-sub000/internal/domain/valueobject"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/logger"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/models"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/notify"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/pkg/apperror"
	"github.com/addhory/eviction-tracker-next-app-sub000/internal/repository"
)

// CartRepository корзина неоплаченных черновиков и оплаты.
type CartRepository interface {
	ListCart(ctx context.Context, landlordID uuid.UUID) ([]models.CaseView, error)
	Checkout(ctx context.Context, landlordID uuid.UUID, caseIDs []uuid.UUID) (*models.CheckoutTransaction, error)
	ListTransactions(ctx context.Context, landlordID uuid.UUID) ([]models.CheckoutTransaction, error)
}

// Cart содержимое корзины с итогами.
type Cart struct {
	Items       []models.CaseView  `json:"items"`
	Totals      valueobject.Totals `json:"totals"`
	CanCheckout bool               `json:"can_checkout"`
}

// CheckoutResult итог оплаты.
type CheckoutResult struct {
	TransactionID uuid.UUID          `json:"transaction_id"`
	CaseIDs       []uuid.UUID        `json:"case_ids"`
	Totals        valueobject.Totals `json:"totals"`
}

// CartService корзина арендодателя и симулированная оплата.
type CartService struct {
	repo     CartRepository
	cache    *CacheService
	notifier Notifier
}

// NewCartService создаёт сервис корзины.
func NewCartService(repo CartRepository, cache *CacheService, notifier Notifier) *CartService {
	return &CartService{repo: repo, cache: cache, notifier: notifier}
}

// CanCheckout корзина непуста и каждое дело в ней можно оплатить.
func CanCheckout(items []models.CaseView) bool {
	if len(items) == 0 {
		return false
	}
	for i := range items {
		item := &items[i]
		if !item.HasResolvableParties() || item.Price < 0 || !item.IsInCart() {
			return false
		}
	}
	return true
}

func cartPrices(items []models.CaseView) []int64 {
	prices := make([]int64, len(items))
	for i, item := range items {
		prices[i] = item.Price
	}
	return prices
}

// GetCart возвращает корзину арендодателя.
func (s *CartService) GetCart(ctx context.Context, actor Actor) (*Cart, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	items, err := s.repo.ListCart(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return &Cart{
		Items:       items,
		Totals:      valueobject.CalculateTotals(cartPrices(items)),
		CanCheckout: CanCheckout(items),
	}, nil
}

// Checkout оплачивает выбранные дела корзины, при пустом caseIDs всю корзину.
// Все дела переходят в SUBMITTED/PAID в одной транзакции.
func (s *CartService) Checkout(ctx context.Context, actor Actor, caseIDs []uuid.UUID) (*CheckoutResult, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}

	items, err := s.repo.ListCart(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, apperror.ErrEmptyCart
	}

	selected, err := selectCartItems(items, caseIDs)
	if err != nil {
		return nil, err
	}
	if !CanCheckout(selected) {
		return nil, apperror.New(apperror.ErrCodeValidation, "cart contains cases with missing property or tenant")
	}

	ids := make([]uuid.UUID, len(selected))
	for i, item := range selected {
		ids[i] = item.ID
	}

	txn, err := s.repo.Checkout(ctx, actor.ID, ids)
	if err != nil {
		if errors.Is(err, repository.ErrCartChanged) {
			return nil, apperror.New(apperror.ErrCodeConflict, "cart changed during checkout, reload and try again")
		}
		return nil, err
	}

	s.cache.InvalidateAnalytics()
	s.cache.InvalidateJobPool()

	totals := valueobject.Totals{
		Subtotal:      txn.Subtotal,
		ProcessingFee: txn.ProcessingFee,
		Tax:           txn.Tax,
		Total:         txn.Total,
	}

	logger.FromContext(ctx).WithFields(logrus.Fields{
		"transaction_id": txn.ID,
		"landlord_id":    actor.ID,
		"cases":          len(ids),
		"total":          txn.Total,
	}).Info("checkout completed")

	s.notifier.Notify(ctx, actor.ID, nil, notify.EventCheckoutCompleted, notify.Data{
		TransactionID: txn.ID.String(),
		CaseCount:     len(ids),
		Total:         txn.Total,
	})

	return &CheckoutResult{TransactionID: txn.ID, CaseIDs: ids, Totals: totals}, nil
}

func selectCartItems(items []models.CaseView, caseIDs []uuid.UUID) ([]models.CaseView, error) {
	if len(caseIDs) == 0 {
		return items, nil
	}

	byID := make(map[uuid.UUID]models.CaseView, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	seen := make(map[uuid.UUID]struct{}, len(caseIDs))
	selected := make([]models.CaseView, 0, len(caseIDs))
	for _, id := range caseIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		item, ok := byID[id]
		if !ok {
			return nil, apperror.Newf(apperror.ErrCodeValidation, "case %s is not in the cart", id)
		}
		selected = append(selected, item)
	}
	return selected, nil
}

// ListTransactions возвращает оплаты арендодателя.
func (s *CartService) ListTransactions(ctx context.Context, actor Actor) ([]models.CheckoutTransaction, error) {
	if err := actor.require(valueobject.RoleLandlord); err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, actor.ID)
}
