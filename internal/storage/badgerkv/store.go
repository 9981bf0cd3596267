// Package badgerkv persists the change detector's channel watermarks and the
// site's page counters in BadgerDB.
package badgerkv

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// Store wraps a badger database.
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// New opens the badger database at path.
func New(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts := badger.DefaultOptions(path)
	opts.Logger = &badgerLogger{logger.Sugar().Named("badger")}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db at %s: %w", path, err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close badger db: %w", err)
	}
	return nil
}

func watermarkKey(channelID string) []byte {
	return []byte("last_message:" + channelID)
}

func counterKey(kind, slug string) []byte {
	return []byte(fmt.Sprintf("counter:%s:%s", kind, slug))
}

func leaseKey(name string) []byte {
	return []byte("lease:" + name)
}

// Watermark returns the stored watermark for a channel, or "" when the
// channel has never been checked. Watermarks persist indefinitely; they are
// the only record of detector progress.
func (s *Store) Watermark(channelID string) (string, error) {
	var value string
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(watermarkKey(channelID))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read watermark for %s: %w", channelID, err)
	}
	return value, nil
}

// SetWatermark records the newest processed message ID for a channel.
func (s *Store) SetWatermark(channelID, messageID string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(watermarkKey(channelID), []byte(messageID))
	})
	if err != nil {
		return fmt.Errorf("set watermark for %s: %w", channelID, err)
	}
	return nil
}

// IncrementCounter bumps a page counter (likes/views) and returns the new value.
func (s *Store) IncrementCounter(kind, slug string) (int64, error) {
	var value int64
	key := counterKey(kind, slug)
	err := s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			value = 0
		case err != nil:
			return err
		default:
			if verr := item.Value(func(val []byte) error {
				parsed, perr := strconv.ParseInt(string(val), 10, 64)
				if perr != nil {
					return fmt.Errorf("corrupt counter value %q: %w", string(val), perr)
				}
				value = parsed
				return nil
			}); verr != nil {
				return verr
			}
		}
		value++
		return txn.Set(key, []byte(strconv.FormatInt(value, 10)))
	})
	if err != nil {
		return 0, fmt.Errorf("increment %s counter for %s: %w", kind, slug, err)
	}
	return value, nil
}

// Counter reads a page counter; missing counters read as zero.
func (s *Store) Counter(kind, slug string) (int64, error) {
	var value int64
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(counterKey(kind, slug))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			parsed, perr := strconv.ParseInt(string(val), 10, 64)
			if perr != nil {
				return fmt.Errorf("corrupt counter value %q: %w", string(val), perr)
			}
			value = parsed
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s counter for %s: %w", kind, slug, err)
	}
	return value, nil
}

// AcquireLease takes a named lease for ttl. It returns false when another
// holder has a live lease. Badger's entry TTL handles expiry, so a crashed
// holder frees the lease without cleanup.
func (s *Store) AcquireLease(name string, ttl time.Duration) (bool, error) {
	acquired := false
	err := s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(leaseKey(name))
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
			acquired = true
			entry := badger.NewEntry(leaseKey(name), []byte("held")).WithTTL(ttl)
			return txn.SetEntry(entry)
		case err != nil:
			return err
		default:
			return nil
		}
	})
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", name, err)
	}
	return acquired, nil
}

// ReleaseLease drops a named lease.
func (s *Store) ReleaseLease(name string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(leaseKey(name))
	})
	if err != nil {
		return fmt.Errorf("release lease %s: %w", name, err)
	}
	return nil
}

// badgerLogger adapts zap to Badger's logger interface.
type badgerLogger struct {
	logger *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(f string, v ...interface{}) {
	l.logger.Errorf(f, v...)
}

func (l *badgerLogger) Warningf(f string, v ...interface{}) {
	l.logger.Warnf(f, v...)
}

func (l *badgerLogger) Infof(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}

func (l *badgerLogger) Debugf(f string, v ...interface{}) {
	l.logger.Debugf(f, v...)
}
