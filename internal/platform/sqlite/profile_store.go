package sqlite

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

// ProfileStore implements store.ProfileStore on SQLite.
// Timestamps are stored as Unix nanoseconds.
type ProfileStore struct {
	db     store.Conn
	logger *slog.Logger
	now    func() time.Time
}

var _ store.ProfileStore = (*ProfileStore)(nil)

// NewProfileStore creates a SQLite profile store. db must be opened with a
// DSN built by DSN so transactions take the writer lock up front.
func NewProfileStore(db store.Conn, logger *slog.Logger) *ProfileStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileStore{
		db:     db,
		logger: logger.With(slog.String("component", "profile_store")),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func toNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func fromNanos(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*domain.Profile, error) {
	var (
		p                    domain.Profile
		matchedWith          uuid.NullUUID
		createdAt, updatedAt int64
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
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	if matchedWith.Valid {
		id := matchedWith.UUID
		p.MatchedWith = &id
	}
	p.CreatedAt = fromNanos(createdAt)
	p.UpdatedAt = fromNanos(updatedAt)
	return &p, nil
}

// Create implements store.ProfileStore.Create.
func (s *ProfileStore) Create(ctx context.Context, profile *domain.Profile) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := profile.Validate(); err != nil {
		return store.NewStoreError("profile", "create", "invalid profile",
			fmt.Errorf("%w: %w", store.ErrInvalidEntity, err))
	}
	if profile.IsMatched {
		return store.NewStoreError("profile", "create", "new profiles start unmatched", store.ErrInvalidEntity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO profiles (id, name, email, institutional_id, major, graduation_year,
			is_matched, matched_with, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, NULL, ?, ?)`,
		profile.ID.String(),
		profile.Name,
		profile.Email,
		profile.InstitutionalID,
		profile.Major,
		profile.GraduationYear,
		toNanos(profile.CreatedAt),
		toNanos(profile.UpdatedAt),
	)
	if err != nil {
		mapped := MapError(err)
		if !store.IsDuplicateError(mapped) {
			log.Error("failed to create profile",
				slog.String("error", err.Error()),
				slog.String("profile_id", profile.ID.String()))
		}
		return mapped
	}
	return nil
}

// GetByID implements store.ProfileStore.GetByID.
func (s *ProfileStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	return getByID(ctx, s.db, id)
}

func getByID(ctx context.Context, q store.DBTX, id uuid.UUID) (*domain.Profile, error) {
	p, err := scanProfile(q.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrProfileNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	return p, nil
}

// FindEligiblePartner implements store.ProfileStore.FindEligiblePartner.
func (s *ProfileStore) FindEligiblePartner(
	ctx context.Context,
	excludeID uuid.UUID,
	major string,
) (*domain.Profile, error) {
	p, err := scanProfile(s.db.QueryRowContext(ctx, `
		SELECT `+profileColumns+`
		FROM profiles
		WHERE is_matched = 0 AND id <> ?
		ORDER BY (major = ?) DESC, created_at ASC, id ASC
		LIMIT 1`,
		excludeID.String(), major))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoEligiblePartner
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to find eligible partner",
			slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return p, nil
}

// CommitMatch implements store.ProfileStore.CommitMatch.
func (s *ProfileStore) CommitMatch(ctx context.Context, a, b uuid.UUID) error {
	if a == b {
		return store.ErrSelfMatch
	}

	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		var found, matched int
		err := tx.QueryRowContext(ctx, `
			SELECT COUNT(*), COALESCE(SUM(is_matched), 0)
			FROM profiles WHERE id IN (?, ?)`,
			a.String(), b.String()).Scan(&found, &matched)
		if err != nil {
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
			SET is_matched = 1,
			    matched_with = CASE WHEN id = ?1 THEN ?2 ELSE ?1 END,
			    updated_at = ?3
			WHERE id IN (?1, ?2) AND is_matched = 0`,
			a.String(), b.String(), toNanos(s.now()))
		if err != nil {
			return err
		}
		n, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if n != 2 {
			return fmt.Errorf("%w: expected 2 rows updated, got %d", store.ErrConflict, n)
		}
		return nil
	})
	if err != nil {
		mapped := MapError(err)
		if !errors.Is(mapped, store.ErrConflict) && !errors.Is(mapped, store.ErrNotFound) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to commit match",
				slog.String("error", err.Error()),
				slog.String("profile_a", a.String()),
				slog.String("profile_b", b.String()))
		}
		return mapped
	}
	return nil
}

// RepairOrphan implements store.ProfileStore.RepairOrphan.
func (s *ProfileStore) RepairOrphan(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var current *domain.Profile
	err := store.RunInTransaction(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		p, err := getByID(ctx, tx, id)
		if err != nil {
			return err
		}
		current = p
		if !p.IsMatched {
			return nil
		}

		partner, err := getByID(ctx, tx, *p.MatchedWith)
		switch {
		case errors.Is(err, store.ErrProfileNotFound):
		case err != nil:
			return err
		case partner.IsMatchedWith(id):
			return nil
		}

		at := s.now()
		if _, err := tx.ExecContext(ctx,
			`UPDATE profiles SET is_matched = 0, matched_with = NULL, updated_at = ? WHERE id = ?`,
			toNanos(at), id.String()); err != nil {
			return err
		}
		logger.FromContextOrDefault(ctx, s.logger).Warn("cleared orphaned match",
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
func (s *ProfileStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id.String())
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
