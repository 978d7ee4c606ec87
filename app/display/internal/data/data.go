package data

import (
	"context"
	"database/sql"

	"github.com/go-kratos/kratos/v2/log"
	_ "github.com/lib/pq"

	"github.com/iWorld-y/incident_radar/app/display/internal/conf"
	"github.com/iWorld-y/incident_radar/app/incident_radar/pkg/storage"
)

// Data 持有数据库连接和报告存储
type Data struct {
	db    *sql.DB
	store *storage.Storage
}

// NewData 打开数据库并初始化报告表
func NewData(c *conf.Data, logger log.Logger) (*Data, func(), error) {
	db, err := sql.Open(c.Database.Driver, c.Database.Source)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, err
	}

	store, err := storage.Open(context.Background(), db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	cleanup := func() {
		log.NewHelper(logger).Info("closing the data resources")
		db.Close()
	}
	return &Data{db: db, store: store}, cleanup, nil
}
