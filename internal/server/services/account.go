// Package services contains server-side business logic. This file implements
// AccountService: account registration, password authentication, session
// tokens, and per-tenant usage stats.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tenantdb/internal/common"
	"github.com/dmitrijs2005/tenantdb/internal/dbx"
	"github.com/dmitrijs2005/tenantdb/internal/server/config"
	"github.com/dmitrijs2005/tenantdb/internal/server/models"
	"github.com/dmitrijs2005/tenantdb/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// ScopeSource opens database scopes for a unit of work. Satisfied by
// *database.Manager.
type ScopeSource interface {
	WithTenantScope(ctx context.Context, tenantID int64, fn func(ctx context.Context, db dbx.Session) error) error
	WithAdminScope(ctx context.Context, fn func(ctx context.Context, db dbx.Session) error) error
}

// dummyHash is compared against when an account lookup misses, so a failed
// login costs the same with or without a matching account.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("tenantdb.dummy"), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}()

type AccountService struct {
	scopes      ScopeSource
	repomanager repomanager.RepositoryManager
	sessionTTL  time.Duration
}

func NewAccountService(scopes ScopeSource, m repomanager.RepositoryManager, cfg *config.Config) *AccountService {
	return &AccountService{
		scopes:      scopes,
		repomanager: m,
		sessionTTL:  cfg.SessionTTL,
	}
}

// CreateUser registers a new account. The uniqueness check and the insert
// run in one transaction under an admin scope; a taken username or email
// yields common.ErrorDuplicate whether caught by the pre-check or by the
// unique constraint, and no account row survives a failed attempt.
func (s *AccountService) CreateUser(ctx context.Context, username string, email string, password string, fullName string) (*models.Account, error) {

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", common.ErrorValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var account *models.Account

	err = s.scopes.WithAdminScope(ctx, func(ctx context.Context, db dbx.Session) error {
		return dbx.WithTx(ctx, db, func(ctx context.Context, tx dbx.Querier) error {
			repo := s.repomanager.Accounts(tx)

			n, err := repo.CountByLogin(ctx, username, email)
			if err != nil {
				return fmt.Errorf("error checking existing accounts: %v", err)
			}
			if n > 0 {
				return common.ErrorDuplicate
			}

			account, err = repo.Create(ctx, &models.Account{
				Username:     username,
				Email:        email,
				PasswordHash: string(hash),
				FullName:     fullName,
			})
			if err != nil {
				return fmt.Errorf("error creating account: %w", err)
			}
			return nil
		})
	})

	if err != nil {
		if errors.Is(err, common.ErrorDuplicate) {
			return nil, common.ErrorDuplicate
		}
		return nil, err
	}

	return account, nil
}

// Authenticate verifies login (username or email) and password. Unknown
// accounts and wrong passwords are indistinguishable to the caller: both
// return common.ErrorUnauthorized.
func (s *AccountService) Authenticate(ctx context.Context, login string, password string) (*models.Account, error) {

	var account *models.Account

	err := s.scopes.WithAdminScope(ctx, func(ctx context.Context, db dbx.Session) error {
		repo := s.repomanager.Accounts(db)

		found, err := repo.GetByLogin(ctx, login)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				// burn a compare so the miss costs as much as a mismatch
				_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
				return common.ErrorUnauthorized
			}
			return common.ErrorInternal
		}

		if bcrypt.CompareHashAndPassword([]byte(found.PasswordHash), []byte(password)) != nil {
			return common.ErrorUnauthorized
		}

		if err := repo.UpdateLastLogin(ctx, found.ID); err != nil {
			return common.ErrorInternal
		}

		account = found
		return nil
	})

	if err != nil {
		return nil, err
	}

	return account, nil
}

// CreateSession issues an opaque random token for an authenticated account.
func (s *AccountService) CreateSession(ctx context.Context, accountID int64, ip string, userAgent string) (*models.Session, error) {

	token, err := common.MakeRandHexString(32)
	if err != nil {
		return nil, common.ErrorInternal
	}

	var session *models.Session

	err = s.scopes.WithAdminScope(ctx, func(ctx context.Context, db dbx.Session) error {
		session, err = s.repomanager.Sessions(db).Create(ctx, accountID, token, ip, userAgent, s.sessionTTL)
		if err != nil {
			return fmt.Errorf("error creating session: %v", err)
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return session, nil
}

// AccountBySessionToken resolves a session token to its account, touching
// the session's last access time. Expired, revoked, and unknown tokens all
// return common.ErrorNotFound.
func (s *AccountService) AccountBySessionToken(ctx context.Context, token string) (*models.Account, error) {

	var account *models.Account

	err := s.scopes.WithAdminScope(ctx, func(ctx context.Context, db dbx.Session) error {
		repo := s.repomanager.Sessions(db)

		found, session, err := repo.AccountByToken(ctx, token)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return common.ErrorNotFound
			}
			return common.ErrorInternal
		}

		if err := repo.Touch(ctx, session.ID); err != nil {
			return common.ErrorInternal
		}

		account = found
		return nil
	})

	if err != nil {
		return nil, err
	}

	return account, nil
}

// CleanupExpiredSessions removes sessions past their expiry and reports how
// many were deleted.
func (s *AccountService) CleanupExpiredSessions(ctx context.Context) (int64, error) {

	var n int64

	err := s.scopes.WithAdminScope(ctx, func(ctx context.Context, db dbx.Session) error {
		var err error
		n, err = s.repomanager.Sessions(db).DeleteExpired(ctx)
		if err != nil {
			return fmt.Errorf("error deleting expired sessions: %v", err)
		}
		return nil
	})

	if err != nil {
		return 0, err
	}

	return n, nil
}

// UserStats aggregates the account's entry count, entry bytes, and live
// session count. It runs in the account's own tenant scope and the
// underlying queries carry no tenant filters; row-level security is what
// keeps the numbers per-tenant.
func (s *AccountService) UserStats(ctx context.Context, accountID int64) (*models.AccountStats, error) {

	stats := &models.AccountStats{AccountID: accountID}

	err := s.scopes.WithTenantScope(ctx, accountID, func(ctx context.Context, db dbx.Session) error {
		count, bytes, err := s.repomanager.Entries(db).Usage(ctx)
		if err != nil {
			return fmt.Errorf("error aggregating entries: %v", err)
		}

		live, err := s.repomanager.Sessions(db).CountLive(ctx)
		if err != nil {
			return fmt.Errorf("error counting sessions: %v", err)
		}

		stats.EntryCount = count
		stats.EntryBytes = bytes
		stats.LiveSessions = live
		return nil
	})

	if err != nil {
		return nil, err
	}

	return stats, nil
}
