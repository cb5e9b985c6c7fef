package port

import (
	"context"

	"github.com/bornholm/crosspost/internal/core/model"
)

type ReportStore interface {
	SaveReport(ctx context.Context, report *model.PublishReport) error
	GetReportByID(ctx context.Context, id model.ReportID) (*model.PublishReport, error)
	QueryReports(ctx context.Context, opts QueryReportsOptions) ([]*model.PublishReport, int64, error)
}

type QueryReportsOptions struct {
	Page  *int
	Limit *int
	Slug  *string
}
