// Package store persists players, accounts, and bands in a single
// bbolt file. Asset templates never live here; they load read-only
// from the asset tree.
package store

import (
	"encoding/json"
	"fmt"

	bbolt "go.etcd.io/bbolt"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"github.com/emberfallmud/emberfall/internal/game"
)

var (
	bucketPlayers  = []byte("players")
	bucketAccounts = []byte("accounts")
	bucketBands    = []byte("bands")
)

var fold = cases.Fold()

// Account is a login credential record. Characters reference their
// account by id.
type Account struct {
	Id           string `json:"id"`
	PasswordHash []byte `json:"password_hash"`
	Admin        bool   `json:"admin,omitempty"`
}

// Store wraps a bbolt database holding all mutable world records.
type Store struct {
	bolt *bbolt.DB
}

// Open opens or creates the database file and ensures all buckets
// exist.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketPlayers, bucketAccounts, bucketBands} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("store: create buckets: %w", err)
	}

	return &Store{bolt: db}, nil
}

// Close closes the underlying bbolt database.
func (s *Store) Close() error {
	if s.bolt != nil {
		return s.bolt.Close()
	}
	return nil
}

func playerKey(name string) []byte {
	return []byte(fold.String(name))
}

// PutPlayer persists a single player record.
func (s *Store) PutPlayer(p *game.Player) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: encode player %q: %w", p.Name, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketPlayers).Put(playerKey(p.Name), data)
	})
}

// PutPlayers persists multiple players in a single transaction.
func (s *Store) PutPlayers(players ...*game.Player) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketPlayers)
		for _, p := range players {
			if p == nil {
				continue
			}
			data, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("encode player %q: %w", p.Name, err)
			}
			if err := b.Put(playerKey(p.Name), data); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetPlayer loads one player by name, or nil when absent.
func (s *Store) GetPlayer(name string) (*game.Player, error) {
	var p *game.Player
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketPlayers).Get(playerKey(name))
		if data == nil {
			return nil
		}
		p = &game.Player{}
		if err := json.Unmarshal(data, p); err != nil {
			return fmt.Errorf("decode player %q: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return p, nil
}

// PlayerExists reports whether a character name is taken.
func (s *Store) PlayerExists(name string) bool {
	exists := false
	s.bolt.View(func(tx *bbolt.Tx) error {
		exists = tx.Bucket(bucketPlayers).Get(playerKey(name)) != nil
		return nil
	})
	return exists
}

// PutAccount persists a login record.
func (s *Store) PutAccount(a *Account) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("store: encode account %q: %w", a.Id, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketAccounts).Put([]byte(fold.String(a.Id)), data)
	})
}

// GetAccount loads a login record by id, or nil when absent.
func (s *Store) GetAccount(id string) (*Account, error) {
	var a *Account
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketAccounts).Get([]byte(fold.String(id)))
		if data == nil {
			return nil
		}
		a = &Account{}
		if err := json.Unmarshal(data, a); err != nil {
			return fmt.Errorf("decode account %q: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return a, nil
}

// EnsureAccount creates an account with a freshly hashed password if
// one does not already exist. Used to seed the first admin login.
func (s *Store) EnsureAccount(id, password string, admin bool) error {
	existing, err := s.GetAccount(id)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("store: hash password: %w", err)
	}
	return s.PutAccount(&Account{Id: id, PasswordHash: hash, Admin: admin})
}

// Authenticate checks a password against the stored hash.
func (s *Store) Authenticate(id, password string) (*Account, error) {
	a, err := s.GetAccount(id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, fmt.Errorf("store: unknown account %q", id)
	}
	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		return nil, fmt.Errorf("store: bad credentials for %q", id)
	}
	return a, nil
}

// PutBand persists a band record.
func (s *Store) PutBand(b *game.Band) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("store: encode band %q: %w", b.Id, err)
	}
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBands).Put([]byte(b.Id), data)
	})
}

// DeleteBand removes a band record.
func (s *Store) DeleteBand(id string) error {
	return s.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBands).Delete([]byte(id))
	})
}

// LoadBands reads every band record.
func (s *Store) LoadBands() (map[string]*game.Band, error) {
	out := map[string]*game.Band{}
	err := s.bolt.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketBands).ForEach(func(k, v []byte) error {
			b := &game.Band{}
			if err := json.Unmarshal(v, b); err != nil {
				return fmt.Errorf("decode band %q: %w", string(k), err)
			}
			out[b.Id] = b
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	return out, nil
}
