//go:generate go run go.uber.org/mock/mockgen -source=unit_of_work.go -destination=../mocks/mock_unit_of_work.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"room-chat/errors"

	"github.com/dgraph-io/badger/v4"
)

const DefaultMaxRetries = 3

// Txn is the transaction handle every repository call receives.
// Several repositories sharing one Txn commit or abort together.
type Txn struct {
	txn *badger.Txn
}

// NewTxn wraps a raw Badger transaction, mostly for tools and tests.
func NewTxn(txn *badger.Txn) Txn {
	return Txn{txn: txn}
}

type IUnitOfWork interface {
	View(ctx context.Context, fn func(Txn) error) error
	Update(ctx context.Context, fn func(Txn) error) error
}

// UnitOfWork runs functions inside Badger transactions.
// Write conflicts are retried a bounded number of times, the function must be idempotent.
type UnitOfWork struct {
	db         *badger.DB
	log        *slog.Logger
	maxRetries int
}

func NewUnitOfWork(db *badger.DB, log *slog.Logger, maxRetries int) *UnitOfWork {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &UnitOfWork{db: db, log: log, maxRetries: maxRetries}
}

func (u *UnitOfWork) View(ctx context.Context, fn func(Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := u.db.View(func(txn *badger.Txn) error {
		return fn(Txn{txn: txn})
	})
	return classify(err)
}

func (u *UnitOfWork) Update(ctx context.Context, fn func(Txn) error) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := u.db.Update(func(txn *badger.Txn) error {
			return fn(Txn{txn: txn})
		})
		if errors.Is(err, badger.ErrConflict) && attempt < u.maxRetries {
			u.log.Debug("Transaction conflict, retrying", "attempt", attempt+1)
			continue
		}
		return classify(err)
	}
}

// classify keeps categorized errors as they are and reports anything else as a store failure.
func classify(err error) error {
	if err == nil || errors.Categorized(err) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return errors.Store(err)
}

func (t Txn) get(key []byte, target any) (bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Store(err)
	}
	if target == nil {
		return true, nil
	}
	err = item.Value(func(val []byte) error {
		return decode(val, target)
	})
	if err != nil {
		return false, errors.Store(err)
	}
	return true, nil
}

func (t Txn) exists(key []byte) (bool, error) {
	return t.get(key, nil)
}

func (t Txn) set(key []byte, value any) error {
	bytes, err := encode(value)
	if err != nil {
		return errors.Store(err)
	}
	return errors.Store(t.txn.Set(key, bytes))
}

func (t Txn) setRaw(key, value []byte) error {
	return errors.Store(t.txn.Set(key, value))
}

func (t Txn) getRaw(key []byte) ([]byte, bool, error) {
	item, err := t.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Store(err)
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, errors.Store(err)
	}
	return value, true, nil
}

func (t Txn) delete(key []byte) error {
	return errors.Store(t.txn.Delete(key))
}

// scan visits every value under prefix in key order.
// Keys are copied, values are only valid during visit.
func (t Txn) scan(prefix []byte, visit func(key, value []byte) error) error {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	it := t.txn.NewIterator(options)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		key := item.KeyCopy(nil)
		err := item.Value(func(val []byte) error {
			return visit(key, val)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// keys lists the keys under prefix without fetching values.
func (t Txn) keys(prefix []byte) ([][]byte, error) {
	options := badger.DefaultIteratorOptions
	options.Prefix = prefix
	options.PrefetchValues = false
	it := t.txn.NewIterator(options)
	defer it.Close()

	var keys [][]byte
	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		keys = append(keys, it.Item().KeyCopy(nil))
	}
	return keys, nil
}
