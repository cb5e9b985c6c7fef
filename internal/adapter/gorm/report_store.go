package gorm

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/bornholm/crosspost/internal/core/model"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/ncruces/go-sqlite3"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type ReportStore struct {
	getDatabase func(ctx context.Context) (*gorm.DB, error)
}

// SaveReport implements [port.ReportStore].
func (s *ReportStore) SaveReport(ctx context.Context, report *model.PublishReport) error {
	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		if res := db.Delete(&Outcome{}, "report_id = ?", string(report.ID)); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		if res := db.Delete(&Report{}, "id = ?", string(report.ID)); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		if res := db.Create(fromReport(report)); res.Error != nil {
			return errors.WithStack(res.Error)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

// GetReportByID implements [port.ReportStore].
func (s *ReportStore) GetReportByID(ctx context.Context, id model.ReportID) (*model.PublishReport, error) {
	var report Report

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		err := db.Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
			return db.Order("position asc")
		}).First(&report, "id = ?", string(id)).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.WithStack(port.ErrNotFound)
			}

			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return toReport(&report), nil
}

// QueryReports implements [port.ReportStore]. Reports are returned most
// recent first.
func (s *ReportStore) QueryReports(ctx context.Context, opts port.QueryReportsOptions) ([]*model.PublishReport, int64, error) {
	var (
		reports []*Report
		total   int64
	)

	err := s.withRetry(ctx, func(ctx context.Context, db *gorm.DB) error {
		query := db.Model(&Report{})

		if opts.Slug != nil {
			query = query.Where("slug = ?", *opts.Slug)
		}

		if err := query.Count(&total).Error; err != nil {
			return errors.WithStack(err)
		}

		if opts.Page != nil {
			limit := 10
			if opts.Limit != nil {
				limit = *opts.Limit
			}
			query = query.Offset(*opts.Page * limit)
		}

		if opts.Limit != nil {
			query = query.Limit(*opts.Limit)
		}

		err := query.
			Preload("Outcomes", func(db *gorm.DB) *gorm.DB {
				return db.Order("position asc")
			}).
			Order("started_at desc").
			Find(&reports).Error
		if err != nil {
			return errors.WithStack(err)
		}

		return nil
	}, sqlite3.LOCKED, sqlite3.BUSY)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	results := make([]*model.PublishReport, 0, len(reports))
	for _, r := range reports {
		results = append(results, toReport(r))
	}

	return results, total, nil
}

func (s *ReportStore) withRetry(ctx context.Context, fn func(ctx context.Context, db *gorm.DB) error, codes ...sqlite3.ErrorCode) error {
	db, err := s.getDatabase(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	backoff := 500 * time.Millisecond
	maxRetries := 10
	retries := 0

	for {
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := fn(ctx, tx); err != nil {
				return errors.WithStack(err)
			}

			return nil
		})
		if err != nil {
			if retries >= maxRetries {
				return errors.WithStack(err)
			}

			var sqliteErr *sqlite3.Error
			if errors.As(err, &sqliteErr) {
				if !slices.Contains(codes, sqliteErr.Code()) {
					return errors.WithStack(err)
				}

				slog.DebugContext(ctx, "transaction failed, will retry", slog.Int("retries", retries), slog.Duration("backoff", backoff), slog.Any("error", errors.WithStack(err)))

				retries++

				select {
				case <-ctx.Done():
					return errors.WithStack(ctx.Err())
				case <-time.After(backoff):
				}

				backoff *= 2
				continue
			}

			return errors.WithStack(err)
		}

		return nil
	}
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{
		getDatabase: createGetDatabase(db, &Report{}, &Outcome{}),
	}
}

var _ port.ReportStore = &ReportStore{}

func createGetDatabase(db *gorm.DB, models ...any) func(ctx context.Context) (*gorm.DB, error) {
	var (
		migrateOnce sync.Once
		migrateErr  error
	)

	return func(ctx context.Context) (*gorm.DB, error) {
		migrateOnce.Do(func() {
			if err := db.AutoMigrate(models...); err != nil {
				migrateErr = errors.WithStack(err)
				return
			}
		})
		if migrateErr != nil {
			return nil, errors.WithStack(migrateErr)
		}

		return db, nil
	}
}
