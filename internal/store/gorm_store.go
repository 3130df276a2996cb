package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormStore keeps users in a postgres table. Every mutation is written immediately.
type GormStore struct {
	db *gorm.DB
}

// OpenGormStore connects to postgres using the given DSN
func OpenGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Load migrates the users table
func (s *GormStore) Load() error {
	if err := s.db.AutoMigrate(&User{}); err != nil {
		return fmt.Errorf("failed to migrate users table: %w", err)
	}
	return nil
}

// Persist is a no-op: rows are written as they change
func (s *GormStore) Persist() error {
	return nil
}

func (s *GormStore) Find(username string) (*User, error) {
	var u User
	err := s.db.Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new active user holding the opening balance coin
func (s *GormStore) Create(username, credential string, coin int64) (*User, error) {
	if _, err := s.Find(username); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	u := User{
		ID:         uuid.NewString(),
		Username:   username,
		Credential: credential,
		Status:     StatusActive,
		Coin:       max(coin, 0),
	}
	if err := s.db.Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &u, nil
}

// AdjustCoin applies delta in a single conditional UPDATE so the balance never goes negative
func (s *GormStore) AdjustCoin(username string, delta int64) (int64, error) {
	var balance int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&User{}).
			Where("username = ? AND coin + ? >= 0", username, delta).
			Update("coin", gorm.Expr("coin + ?", delta))
		if res.Error != nil {
			return res.Error
		}

		var u User
		if err := tx.Where("username = ?", username).First(&u).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return err
		}
		balance = u.Coin

		if res.RowsAffected == 0 {
			return ErrInsufficientCoin
		}
		return nil
	})
	return balance, err
}

func (s *GormStore) SetStatus(username string, status Status) error {
	res := s.db.Model(&User{}).Where("username = ?", username).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Close releases the underlying connection pool
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
