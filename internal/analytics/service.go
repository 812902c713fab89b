package analytics

import (
	"context"
	"errors"
	"time"

	"github.com/pssiii/marketing-backend/internal/analytics/entity"
	"github.com/pssiii/marketing-backend/internal/analytics/repo"
)

var ErrCustomerNotFound = errors.New("customer not found")

const (
	defaultPerPage = 50
	maxPerPage     = 200
	// detail endpoints cap related rows, matching the dashboard widgets
	relatedLimit = 10
)

// Repository is the read surface the service needs; the sqlx
// implementation lives in repo.
type Repository interface {
	ListCustomers(ctx context.Context, limit, offset int, search string) ([]*entity.Customer, int64, error)
	GetCustomer(ctx context.Context, id int64) (*entity.Customer, error)
	CustomerTouchpoints(ctx context.Context, customerID int64, limit int) ([]*entity.Touchpoint, error)
	CustomerSalesMetrics(ctx context.Context, customerID int64, limit int) ([]*entity.SalesMetric, error)
	CustomerFinancialMetrics(ctx context.Context, customerID int64, limit int) ([]*entity.FinancialMetric, error)
	ListCampaigns(ctx context.Context) ([]*entity.Campaign, error)
	DashboardStats(ctx context.Context, since time.Time) (*entity.DashboardStats, error)
}

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	Customers   []*entity.Customer `json:"customers"`
	Total       int64              `json:"total"`
	Pages       int64              `json:"pages"`
	CurrentPage int                `json:"current_page"`
	PerPage     int                `json:"per_page"`
}

// CustomerDetail is a customer plus a capped sample of its related
// records.
type CustomerDetail struct {
	Customer         *entity.Customer          `json:"customer"`
	Touchpoints      []*entity.Touchpoint      `json:"touchpoints"`
	SalesMetrics     []*entity.SalesMetric     `json:"sales_metrics"`
	FinancialMetrics []*entity.FinancialMetric `json:"financial_metrics"`
}

// Service is the thin read layer behind the dashboard endpoints.
type Service struct {
	repo Repository

	Now func() time.Time
}

func NewService(r Repository) *Service {
	return &Service{repo: r, Now: time.Now}
}

func (s *Service) ListCustomers(ctx context.Context, page, perPage int, search string) (*CustomerPage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	customers, total, err := s.repo.ListCustomers(ctx, perPage, (page-1)*perPage, search)
	if err != nil {
		return nil, err
	}
	pages := total / int64(perPage)
	if total%int64(perPage) != 0 {
		pages++
	}
	return &CustomerPage{
		Customers:   customers,
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
		PerPage:     perPage,
	}, nil
}

func (s *Service) CustomerDetail(ctx context.Context, id int64) (*CustomerDetail, error) {
	c, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}
	touchpoints, err := s.repo.CustomerTouchpoints(ctx, id, relatedLimit)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.CustomerSalesMetrics(ctx, id, relatedLimit)
	if err != nil {
		return nil, err
	}
	financials, err := s.repo.CustomerFinancialMetrics(ctx, id, relatedLimit)
	if err != nil {
		return nil, err
	}
	return &CustomerDetail{
		Customer:         c,
		Touchpoints:      touchpoints,
		SalesMetrics:     sales,
		FinancialMetrics: financials,
	}, nil
}

func (s *Service) ListCampaigns(ctx context.Context) ([]*entity.Campaign, error) {
	return s.repo.ListCampaigns(ctx)
}

func (s *Service) DashboardStats(ctx context.Context) (*entity.DashboardStats, error) {
	since := s.Now().AddDate(0, 0, -30)
	return s.repo.DashboardStats(ctx, since)
}
