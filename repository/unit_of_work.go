package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories bundles every store the checkout commit touches, all bound to
// the same transaction when obtained through a UnitOfWork.
type Repositories struct {
	Users    UserRepository
	Products ProductRepository
	Carts    CartRepository
	Vouchers VoucherRepository
	Orders   OrderRepository
}

// NewRepositories builds the bundle over a single gorm handle.
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewGormUserRepository(db),
		Products: NewGormProductRepository(db),
		Carts:    NewGormCartRepository(db),
		Vouchers: NewGormVoucherRepository(db),
		Orders:   NewGormOrderRepository(db),
	}
}

// UnitOfWork runs a sequence of repository operations as one atomic commit.
// If fn returns an error nothing it did is observable afterwards.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(r *Repositories) error) error
}

type gormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork wraps a gorm handle in a transactional unit of work.
func NewGormUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Do(ctx context.Context, fn func(r *Repositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
