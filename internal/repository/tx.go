package repository

import "gorm.io/gorm"

// TxRunner runs a function inside a database transaction. Services depend on
// this instead of *gorm.DB directly so tests can substitute a fake that runs
// the function without a real transaction.
type TxRunner interface {
	InTx(fn func(tx *gorm.DB) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) InTx(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}
