// Package memory holds map-backed repositories with the same contracts as
// the Postgres ones. A Store also acts as a dbx.TxRunner: WithTx snapshots
// the maps and restores them when the unit fails.
package memory

import (
	"context"
	"database/sql"
	"maps"
	"sync"

	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/models"
	"github.com/kinganjia/backend/internal/server/repositories/claims"
	"github.com/kinganjia/backend/internal/server/repositories/images"
	"github.com/kinganjia/backend/internal/server/repositories/users"
)

type Store struct {
	// tx serializes transactional units; mu guards the maps.
	tx sync.Mutex
	mu sync.RWMutex

	users  map[int64]models.User
	claims map[int64]models.Claim
	images map[int64]models.Image

	userSeq, claimSeq, imageSeq int64
}

func NewStore() *Store {
	return &Store{
		users:  map[int64]models.User{},
		claims: map[int64]models.Claim{},
		images: map[int64]models.Image{},
	}
}

type snapshot struct {
	users                       map[int64]models.User
	claims                      map[int64]models.Claim
	images                      map[int64]models.Image
	userSeq, claimSeq, imageSeq int64
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		users:    maps.Clone(s.users),
		claims:   maps.Clone(s.claims),
		images:   maps.Clone(s.images),
		userSeq:  s.userSeq,
		claimSeq: s.claimSeq,
		imageSeq: s.imageSeq,
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users, s.claims, s.images = snap.users, snap.claims, snap.images
	s.userSeq, s.claimSeq, s.imageSeq = snap.userSeq, snap.claimSeq, snap.imageSeq
}

// Conn returns nil; memory repositories ignore their DBTX.
func (s *Store) Conn() dbx.DBTX { return nil }

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.tx.Lock()
	defer s.tx.Unlock()

	snap := s.snapshot()
	defer func() {
		if p := recover(); p != nil {
			s.restore(snap)
			panic(p)
		}
		if err != nil {
			s.restore(snap)
		}
	}()

	return fn(ctx, nil)
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(dbx.DBTX) users.Repository   { return &UserRepository{s: s} }
func (s *Store) Claims(dbx.DBTX) claims.Repository { return &ClaimRepository{s: s} }
func (s *Store) Images(dbx.DBTX) images.Repository { return &ImageRepository{s: s} }
