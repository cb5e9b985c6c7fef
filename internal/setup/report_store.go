package setup

import (
	"context"

	gormAdapter "github.com/bornholm/crosspost/internal/adapter/gorm"
	"github.com/bornholm/crosspost/internal/config"
	"github.com/bornholm/crosspost/internal/core/port"
	"github.com/pkg/errors"
)

var getReportStoreFromConfig = createFromConfigOnce(func(ctx context.Context, conf *config.Config) (port.ReportStore, error) {
	db, err := getGormDatabaseFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return gormAdapter.NewReportStore(db), nil
})

func NewReportStoreFromConfig(ctx context.Context, conf *config.Config) (port.ReportStore, error) {
	store, err := getReportStoreFromConfig(ctx, conf)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return store, nil
}
