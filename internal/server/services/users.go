package services

import (
	"context"
	"fmt"

	"github.com/kinganjia/backend/internal/common"
	"github.com/kinganjia/backend/internal/dbx"
	"github.com/kinganjia/backend/internal/server/auth"
	"github.com/kinganjia/backend/internal/server/merge"
	"github.com/kinganjia/backend/internal/server/models"
)

type UserService struct {
	b      *Backend
	hasher auth.PasswordHasher
}

func NewUserService(b *Backend, hasher auth.PasswordHasher) *UserService {
	b.defaults()
	return &UserService{b: b, hasher: hasher}
}

func (s *UserService) List(ctx context.Context) ([]models.UserView, error) {
	users, err := s.b.Repos.Users(s.b.TX.Conn()).FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.UserView, 0, len(users))
	for i := range users {
		out = append(out, models.NewUserView(&users[i], nil))
	}
	return out, nil
}

// Get returns the user with summaries of the claims it owns.
func (s *UserService) Get(ctx context.Context, id int64) (*models.UserView, error) {
	db := s.b.TX.Conn()
	u, err := s.b.Repos.Users(db).FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "users.Get", "User", id)
	}
	claims, err := s.b.Repos.Claims(db).FindByUserID(ctx, id)
	if err != nil {
		return nil, err
	}
	v := models.NewUserView(u, claims)
	return &v, nil
}

// Find returns the stored record, including the password hash.
func (s *UserService) Find(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.b.Repos.Users(s.b.TX.Conn()).FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "users.Find", "User", id)
	}
	return u, nil
}

func (s *UserService) hash(op, rawPassword string, rehash bool, u *models.User) error {
	if !rehash {
		return nil
	}
	if len(rawPassword) > auth.MaxPasswordBytes {
		return common.Validation(op, "", map[string]string{
			"password": fmt.Sprintf("Must be at most %d bytes", auth.MaxPasswordBytes),
		})
	}
	h, err := s.hasher.Hash(rawPassword)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	u.PasswordHash = h
	return nil
}

// Create persists a new user. The email must not be taken and a password
// is required.
func (s *UserService) Create(ctx context.Context, in models.UserInput) (*models.User, error) {
	const op = "users.Create"

	u := &models.User{}
	raw, rehash := merge.ApplyUser(merge.FullReplace, u, in)
	if err := s.hash(op, raw, rehash, u); err != nil {
		return nil, err
	}
	merge.Stamp(s.b.Now(), &u.CreatedAt, &u.UpdatedAt)
	if err := validate(op, u.Validate()); err != nil {
		return nil, err
	}

	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Users(tx)
		taken, err := repo.ExistsByEmail(ctx, u.Email)
		if err != nil {
			return err
		}
		if taken {
			return common.Duplicate(op, "email", u.Email)
		}
		_, err = repo.Create(ctx, u)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// Update merges in onto user id with strategy st. A non-zero
// expectedVersion must match the stored version.
func (s *UserService) Update(ctx context.Context, id int64, in models.UserInput, st merge.Strategy, expectedVersion int64) (*models.User, error) {
	const op = "users.Update"

	var u *models.User
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.b.Repos.Users(tx)

		cur, err := repo.FindByID(ctx, id)
		if err != nil {
			return notFound(err, op, "User", id)
		}
		if expectedVersion != 0 && cur.Version != expectedVersion {
			return common.Conflict(op, "User", id)
		}

		if in.Email != nil && *in.Email != cur.Email {
			taken, err := repo.ExistsByEmail(ctx, *in.Email)
			if err != nil {
				return err
			}
			if taken {
				return common.Duplicate(op, "email", *in.Email)
			}
		}

		raw, rehash := merge.ApplyUser(st, cur, in)
		if err := s.hash(op, raw, rehash, cur); err != nil {
			return err
		}
		merge.Touch(s.b.Now(), &cur.UpdatedAt)
		if err := validate(op, cur.Validate()); err != nil {
			return err
		}
		if err := repo.Update(ctx, cur, expectedVersion); err != nil {
			return notFound(err, op, "User", id)
		}
		u = cur
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.b.Log.Info(ctx, "user updated", "user_id", id, "strategy", st.String(), "version", u.Version)
	return u, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	const op = "users.Delete"

	return s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := s.b.Repos.Users(tx).Exists(ctx, id)
		if err != nil {
			return err
		}
		if !ok {
			return common.NotFound(op, "User", id)
		}
		if err := s.b.guard(tx).BeforeDeleteUser(ctx, id); err != nil {
			return err
		}
		return notFound(s.b.Repos.Users(tx).Delete(ctx, id), op, "User", id)
	})
}

func (s *UserService) DeleteAll(ctx context.Context) (int64, error) {
	var n int64
	err := s.b.TX.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.b.guard(tx).BeforeDeleteAllUsers(ctx); err != nil {
			return err
		}
		var err error
		n, err = s.b.Repos.Users(tx).DeleteAll(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.b.Log.Info(ctx, "all users deleted", "count", n)
	return n, nil
}
