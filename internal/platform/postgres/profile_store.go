package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rcssa/match-api/internal/domain"
	"github.com/rcssa/match-api/internal/platform/logger"
	"github.com/rcssa/match-api/internal/store"
)

const profileColumns = `id, name, email, institutional_id, major, graduation_year,
	is_matched, matched_with, created_at, updated_at`

// PostgresProfileStore implements the store.ProfileStore interface
// using a PostgreSQL database as the storage backend.
type PostgresProfileStore struct {
	db     store.Conn
	logger *slog.Logger
	now    func() time.Time
}

// NewPostgresProfileStore creates a new PostgreSQL implementation of the ProfileStore interface.
// db must be able to begin transactions; CommitMatch and RepairOrphan run inside one.
// If logger is nil, a default logger will be used.
func NewPostgresProfileStore(db store.Conn, logger *slog.Logger) *PostgresProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Ensure PostgresProfileStore implements store.ProfileStore interface
var _ store.ProfileStore = (*PostgresProfileStore)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p           domain.Profile
		matchedWith uuid.NullUUID
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Email,
		&p.InstitutionalID,
		&p.Major,
		&p.GraduationYear,
		&p.IsMatched,
		&matchedWith,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	if matchedWith.Valid {
		id := matchedWith.UUID
		p.MatchedWith = &id
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// Create implements store.ProfileStore.Create.
// Returns store.ErrEmailExists or store.ErrInstitutionalIDExists when a unique key is taken.
func (s *PostgresProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		log.Warn("profile validation failed during create",
			slog.String("error", err.Error()),
			slog.String("profile_id", profile.ID.String()))
		return store.NewStoreError("profile", "create", "invalid profile",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	if profile.IsMatched {
		return store.NewStoreError("profile", "create", "new profiles start unmatched", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, institutional_id, major, graduation_year,
			is_matched, matched_with, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NULL, $7, $8)`,
		profile.ID,
		profile.Name,
		profile.Email,
		profile.InstitutionalID,
		profile.Major,
		profile.GraduationYear,
		profile.CreatedAt.UTC(),
		profile.UpdatedAt.UTC(),
	)
	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Info("duplicate profile rejected",
				slog.String("profile_id", profile.ID.String()),
				slog.String("error", mapped.Error()))
		} else {
			log.Error("failed to create profile",
				slog.String("error", err.Error()),
				slog.String("profile_id", profile.ID.String()))
		}
		return mapped
	}

	log.Debug("profile created",
		slog.String("profile_id", profile.ID.String()),
		slog.String("major", profile.Major))
	return nil
}

// GetByID implements store.ProfileStore.GetByID.
func (s *PostgresProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return s.getByID(ctx, s.db, id, "")
}

func (s *PostgresProfileStore) getByID(
	ctx context.Context,
	q store.DBTX,
	id uuid.UUID,
	suffix string,
) (*domain.Profile, error) {
	row := q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = $1`+suffix, id)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get profile",
			slog.String("error", err.Error()),
			slog.String("profile_id", id.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// FindEligiblePartner implements store.ProfileStore.FindEligiblePartner.
// Same-major profiles sort first; ties go to the oldest profile, then the lowest id.
func (s *PostgresProfileStore) FindEligiblePartner(
	ctx context.Context,
	excludeID uuid.UUID,
	major string,
) (*domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE is_matched = FALSE AND id <> $1
		ORDER BY (major = $2) DESC, created_at ASC, id ASC
		LIMIT 1`,
		excludeID, major)
	p, err := scanProfile(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoEligiblePartner
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find eligible partner",
			slog.String("error", err.Error()),
			slog.String("exclude_id", excludeID.String()))
		return nil, MapError(err)
	}
	return p, nil
}

// CommitMatch implements store.ProfileStore.CommitMatch.
// Both rows are locked in id order, so two commits touching the same
// profiles queue instead of deadlocking. The update is conditional on both
// rows still being unmatched and must change exactly two rows.
func (s *PostgresProfileStore) CommitMatch(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return store.ErrSelfMatch
	}
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		func(ctx context.Context, tx *sql.Tx) error {
			rows, err := tx.QueryContext(ctx, `
				SELECT id, is_matched FROM profiles
				WHERE id IN ($1, $2)
				ORDER BY id
				FOR UPDATE`, a, b)
			if err != nil {
				return err
			}
			found, matched := 0, 0
			for rows.Next() {
				var (
					id        uuid.UUID
					isMatched bool
				)
				if err := rows.Scan(&id, &isMatched); err != nil {
					_ = rows.Close()
					return err
				}
				found++
				if isMatched {
					matched++
				}
			}
			if err := rows.Close(); err != nil {
				return err
			}
			if err := rows.Err(); err != nil {
				return err
			}
			if found < 2 {
				return store.ErrProfileNotFound
			}
			if matched > 0 {
				return store.ErrConflict
			}

			result, err := tx.ExecContext(ctx, `
				UPDATE profiles
				SET is_matched = TRUE,
				    matched_with = CASE WHEN id = $1 THEN $2::uuid ELSE $1::uuid END,
				    updated_at = $3
				WHERE id IN ($1, $2) AND is_matched = FALSE`,
				a, b, s.now())
			if err != nil {
				return err
			}
			return checkRowsAffected(result, 2)
		})
	if err != nil {
		mapped := MapError(err)
		switch {
		case errors.Is(mapped, store.ErrConflict):
			log.Debug("match commit lost a race",
				slog.String("profile_a", a.String()),
				slog.String("profile_b", b.String()))
		case errors.Is(mapped, store.ErrNotFound):
		default:
			log.Error("failed to commit match",
				slog.String("error", err.Error()),
				slog.String("profile_a", a.String()),
				slog.String("profile_b", b.String()))
		}
		return mapped
	}

	log.Debug("match committed",
		slog.String("profile_a", a.String()),
		slog.String("profile_b", b.String()))
	return nil
}

// RepairOrphan implements store.ProfileStore.RepairOrphan.
// The profile row is locked for the duration of the check.
func (s *PostgresProfileStore) RepairOrphan(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var current *domain.Profile
	err := store.RunInTransaction(ctx, s.db, &sql.TxOptions{Isolation: sql.LevelReadCommitted},
		func(ctx context.Context, tx *sql.Tx) error {
			p, err := s.getByID(ctx, tx, id, " FOR UPDATE")
			if err != nil {
				return err
			}
			current = p
			if !p.IsMatched {
				return nil
			}

			partner, err := s.getByID(ctx, tx, *p.MatchedWith, "")
			switch {
			case errors.Is(err, store.ErrProfileNotFound):
			case err != nil:
				return err
			case partner.IsMatchedWith(id):
				return nil
			}

			at := s.now()
			if _, err := tx.ExecContext(ctx, `
				UPDATE profiles
				SET is_matched = FALSE, matched_with = NULL, updated_at = $2
				WHERE id = $1`, id, at); err != nil {
				return err
			}
			log.Warn("cleared orphaned match",
				slog.String("profile_id", id.String()),
				slog.String("former_partner_id", p.MatchedWith.String()))
			p.ClearMatch(at)
			return nil
		})
	if err != nil {
		return nil, MapError(err)
	}
	return current, nil
}

// Delete removes a profile without touching its partner.
// Returns store.ErrProfileNotFound if no row was deleted.
func (s *PostgresProfileStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return store.ErrProfileNotFound
	}
	return nil
}
