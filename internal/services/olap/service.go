// Package olap fetches the iiko sales OLAP report, groups it by dish
// category and renders one category as a text table.
package olap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/KirillkoTankisto/iiko-bot/internal/api"
	"github.com/KirillkoTankisto/iiko-bot/internal/dates"
	"github.com/KirillkoTankisto/iiko-bot/internal/domain/model"
)

var (
	// ErrNothingFound is returned when a report or category has no rows.
	ErrNothingFound = errors.New("olap report is empty")
	// ErrCategoryNotFound is returned for a category absent from the report.
	ErrCategoryNotFound = errors.New("olap category not found")
)

// Reporter runs OLAP queries. *api.Client implements it.
type Reporter interface {
	// OlapReport returns the flat rows of req.
	OlapReport(ctx context.Context, server, token string, req api.OlapRequest) ([]model.OlapRow, error)
}

// Service fetches the sales report and groups it by category.
type Service struct {
	// client performs the remote query
	client Reporter
	// nowFn supplies the report end date
	nowFn func() time.Time
}

// NewService creates a new OLAP service.
//
// Parameters:
// - client: remote OLAP query
// - nowFn: clock; time.Now when nil
//
// Returns:
// - *Service: a ready service
func NewService(client Reporter, nowFn func() time.Time) *Service {
	if nowFn == nil {
		nowFn = time.Now
	}
	return &Service{client: client, nowFn: nowFn}
}

// SalesRequest is the month-to-date sales breakdown by dish category and dish,
// without deleted or written-off orders.
func SalesRequest(today string) api.OlapRequest {
	return api.OlapRequest{
		ReportType:       api.ReportTypeSales,
		GroupByRowFields: []string{"DishCategory"},
		GroupByColFields: []string{"DishName"},
		AggregateFields:  []string{"GuestNum", "DishDiscountSumInt"},
		Filters: map[string]api.Filter{
			"OpenDate.Typed":      api.DateRangeFilter(api.PeriodCurrentMonth, today),
			"DeletedWithWriteoff": api.IncludeValuesFilter(api.NotDeleted),
			"OrderDeleted":        api.IncludeValuesFilter(api.NotDeleted),
		},
	}
}

// Fetch runs the month-to-date sales report and groups its rows.
//
// Parameters:
// - ctx: bounds the remote call
// - server: server address
// - token: session key
//
// Returns:
// - model.OlapGroup: rows by category; empty when nothing was sold
// - error: the wrapped remote failure
func (s *Service) Fetch(ctx context.Context, server, token string) (model.OlapGroup, error) {
	rows, err := s.client.OlapReport(ctx, server, token, SalesRequest(dates.Today(s.nowFn())))
	if err != nil {
		return model.OlapGroup{}, fmt.Errorf("fetch olap report: %w", err)
	}
	return Group(rows), nil
}

// Group buckets rows by category; rows without one go to model.OtherCategory.
func Group(rows []model.OlapRow) model.OlapGroup {
	group := model.NewOlapGroup()
	for _, row := range rows {
		category := model.OtherCategory
		if row.DishCategory != nil {
			category = *row.DishCategory
		}
		group.Add(category, row)
	}
	return group
}

// Category returns the rows of one category.
//
// Parameters:
// - group: a grouped report
// - name: exact category name
//
// Returns:
// - []model.OlapRow: the category rows
// - error: wraps ErrCategoryNotFound
func Category(group model.OlapGroup, name string) ([]model.OlapRow, error) {
	rows, ok := group.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%q: %w", name, ErrCategoryNotFound)
	}
	return rows, nil
}
