package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gorustyt/polynav/common"
	"github.com/gorustyt/polynav/navmesh"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("store: layer not found")

type LayerGorm struct {
	ID    int32  `gorm:"column:id;primaryKey;autoIncrement:false"`
	Codec string `gorm:"column:codec"`
	Data  []byte `gorm:"column:data"`
}

func (l LayerGorm) TableName() string {
	return "layer"
}

// Store persists layer snapshots, one row per layer id.
type Store struct {
	db    *gorm.DB
	codec navmesh.Codec
	log   *zap.Logger
}

type Option func(s *Store)

func WithCodec(c navmesh.Codec) Option {
	return func(s *Store) {
		s.codec = c
	}
}

func WithLogger(log *zap.Logger) Option {
	return func(s *Store) {
		s.log = common.LoggerOrNop(log)
	}
}

// Open accepts "sqlite://<dsn>", e.g. "sqlite://file::memory:" or "sqlite://polynav.db".
func Open(url string, opts ...Option) (*Store, error) {
	if !strings.HasPrefix(url, "sqlite://") {
		return nil, fmt.Errorf("not support db type, url: %v", url)
	}
	dsn := strings.TrimPrefix(url, "sqlite://")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("gorm open error: %w", err)
	}
	sqlDb, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sql db open error: %w", err)
	}
	// sqlite, and every in-memory connection would be a separate database
	sqlDb.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&LayerGorm{}); err != nil {
		return nil, fmt.Errorf("migrate error: %w", err)
	}
	s := &Store{db: db, codec: navmesh.MsgpackCodec{}, log: zap.NewNop()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	sqlDb, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDb.Close()
}

// Save inserts or replaces the snapshot of layer.
func (s *Store) Save(ctx context.Context, layer *navmesh.Layer) error {
	data, err := s.codec.Encode(layer.Snapshot())
	if err != nil {
		return err
	}
	row := &LayerGorm{ID: layer.ID(), Codec: s.codec.Name(), Data: data}
	if err := s.db.WithContext(ctx).Save(row).Error; err != nil {
		s.log.Error("save layer error", zap.Int32("layer", layer.ID()), zap.Error(err))
		return err
	}
	s.log.Debug("save layer", zap.Int32("layer", layer.ID()), zap.Int("bytes", len(data)))
	return nil
}

// Load restores the layer saved under id, decoding with the codec it was saved with.
func (s *Store) Load(ctx context.Context, id int32, opts ...navmesh.Option) (*navmesh.Layer, error) {
	row := new(LayerGorm)
	err := s.db.WithContext(ctx).Where("id = ?", id).First(row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
		}
		return nil, err
	}
	codec, err := navmesh.CodecByName(row.Codec)
	if err != nil {
		return nil, err
	}
	snap, err := codec.Decode(row.Data)
	if err != nil {
		return nil, err
	}
	return navmesh.RestoreLayer(snap, opts...)
}

func (s *Store) Delete(ctx context.Context, id int32) error {
	res := s.db.WithContext(ctx).Delete(&LayerGorm{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return nil
}

// IDs lists the saved layer ids in ascending order.
func (s *Store) IDs(ctx context.Context) ([]int32, error) {
	var ids []int32
	err := s.db.WithContext(ctx).Model(&LayerGorm{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
