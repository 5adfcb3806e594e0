package secretstore

import (
	"crypto/cipher"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// reserved key holding the scrypt salt, stored in the clear
const saltKey = "!salt"

// Badger is a file-backed Store. When a passphrase is given, values are
// sealed with AES-256-GCM under a key derived from the passphrase and a
// per-store random salt; with an empty passphrase values are stored as-is.
type Badger struct {
	db   *badger.DB
	aead cipher.AEAD
}

// OpenBadger opens (creating if needed) the store in dir.
func OpenBadger(dir, passphrase string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open secret store")
	}

	s := &Badger{db: db}
	if passphrase != "" {
		salt, err := s.loadOrCreateSalt()
		if err != nil {
			db.Close()
			return nil, err
		}
		aead, err := newAEAD(passphrase, salt)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.aead = aead
	}
	return s, nil
}

func (s *Badger) loadOrCreateSalt() ([]byte, error) {
	salt, ok, err := s.getRaw(saltKey)
	if err != nil {
		return nil, err
	}
	if ok {
		return salt, nil
	}
	salt, err = newSalt()
	if err != nil {
		return nil, err
	}
	if err := s.setRaw(saltKey, salt); err != nil {
		return nil, err
	}
	return salt, nil
}

func (s *Badger) Get(key string) (string, bool, error) {
	data, ok, err := s.getRaw(key)
	if err != nil || !ok {
		return "", false, err
	}
	if s.aead != nil {
		data, err = unseal(s.aead, data)
		if err != nil {
			return "", false, err
		}
	}
	return string(data), true, nil
}

func (s *Badger) Set(key, value string) error {
	data := []byte(value)
	if s.aead != nil {
		var err error
		data, err = seal(s.aead, data)
		if err != nil {
			return err
		}
	}
	return s.setRaw(key, data)
}

func (s *Badger) Delete(key string) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	return errors.Wrap(err, "delete secret")
}

func (s *Badger) Close() error {
	return s.db.Close()
}

func (s *Badger) getRaw(key string) ([]byte, bool, error) {
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "read secret")
	}
	return data, true, nil
}

func (s *Badger) setRaw(key string, data []byte) error {
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	return errors.Wrap(err, "write secret")
}
