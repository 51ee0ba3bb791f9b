package reports

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pkg/errors"
)

// Granularity selects how reviews are bucketed by ReviewPeak.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
)

var ErrNoReviews = errors.New("no reviews")

// Peak is the busiest period and how many reviews were published in it.
type Peak struct {
	Period string `bun:"period"`
	Count  int    `bun:"count"`
}

func (g Granularity) format() string {
	if g == ByMonth {
		return "%Y-%m"
	}
	return "%Y-%m-%d"
}

// ReviewPeak returns the day (YYYY-MM-DD) or month (YYYY-MM) in which the
// most reviews were published, in UTC. Ties go to the earliest period.
func (svc *Service) ReviewPeak(ctx context.Context, g Granularity) (Peak, error) {
	peak := Peak{}
	err := svc.db.NewSelect().
		TableExpr("reviews AS r").
		ColumnExpr("strftime(?, r.published_at) AS period", g.format()).
		ColumnExpr("COUNT(*) AS count").
		GroupExpr("period").
		OrderExpr("count DESC, period ASC").
		Limit(1).
		Scan(ctx, &peak)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Peak{}, ErrNoReviews
		}
		return Peak{}, errors.WithStack(err)
	}
	return peak, nil
}

// Describe renders a peak the way `shelfctl review-statistics` prints it.
func (p Peak) Describe(g Granularity) string {
	if g == ByMonth {
		return fmt.Sprintf("Most reviews in: %s", p.Period)
	}
	return fmt.Sprintf("Most reviews on: %s", p.Period)
}
