package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"library-lending/internals/apperrors"
	"library-lending/internals/cache"
	"library-lending/internals/models"
	"library-lending/internals/repository"
)

// PatronUpdate carries the patron fields an update may change.
type PatronUpdate struct {
	Name        string
	PhoneNumber string
	Address     string
}

type PatronService struct {
	store repository.Store
	cache cache.Cache
	log   *logrus.Logger
}

func NewPatronService(store repository.Store, resultCache cache.Cache, log *logrus.Logger) *PatronService {
	return &PatronService{store: store, cache: resultCache, log: log}
}

func (s *PatronService) GetAllPatrons(ctx context.Context) (patrons []models.Patron, err error) {
	done := logOperation(s.log, "GetAllPatrons", nil)
	defer func() { done(err) }()

	patrons, err = s.store.Patrons().FindAll(ctx)
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}
	return patrons, nil
}

func (s *PatronService) GetPatronByID(ctx context.Context, id uint) (patron *models.Patron, err error) {
	done := logOperation(s.log, "GetPatronByID", logrus.Fields{"patron_id": id})
	defer func() { done(err) }()

	var cached models.Patron
	if s.cache.Get(ctx, cache.KindPatron, id, &cached) {
		return &cached, nil
	}

	patron, err = s.store.Patrons().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.PatronNotFound(id)
	}
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	s.cache.Set(ctx, cache.KindPatron, id, patron)
	return patron, nil
}

func (s *PatronService) AddPatron(ctx context.Context, patron *models.Patron) (err error) {
	done := logOperation(s.log, "AddPatron", logrus.Fields{"name": patron.Name})
	defer func() { done(err) }()

	if err = s.store.Patrons().Create(ctx, patron); err != nil {
		return apperrors.Unexpected(err)
	}
	return nil
}

func (s *PatronService) UpdatePatron(ctx context.Context, id uint, update PatronUpdate) (patron *models.Patron, err error) {
	done := logOperation(s.log, "UpdatePatron", logrus.Fields{"patron_id": id})
	defer func() { done(err) }()

	patron, err = s.store.Patrons().FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.PatronNotFound(id)
	}
	if err != nil {
		return nil, apperrors.Unexpected(err)
	}

	patron.Name = update.Name
	patron.PhoneNumber = update.PhoneNumber
	patron.Address = update.Address
	if err = s.store.Patrons().Update(ctx, patron); err != nil {
		return nil, apperrors.Unexpected(err)
	}

	if err = s.cache.Invalidate(ctx, cache.KindPatron, id); err != nil {
		s.log.WithError(err).WithField("patron_id", id).Warn("cache invalidation failed")
		err = nil
	}
	return patron, nil
}

func (s *PatronService) DeletePatron(ctx context.Context, id uint) (err error) {
	done := logOperation(s.log, "DeletePatron", logrus.Fields{"patron_id": id})
	defer func() { done(err) }()

	if _, err = s.store.Patrons().FindByID(ctx, id); errors.Is(err, repository.ErrNotFound) {
		return apperrors.PatronNotFound(id)
	} else if err != nil {
		return apperrors.Unexpected(err)
	}

	if n, countErr := s.store.Borrowings().CountByPatron(ctx, id); countErr == nil && n > 0 {
		return apperrors.ReferentialIntegrity(
			"patron is referenced by existing borrowing records and cannot be deleted")
	}

	err = s.store.Patrons().Delete(ctx, id)
	switch {
	case errors.Is(err, repository.ErrForeignKeyViolated):
		return apperrors.ReferentialIntegrity(
			"patron is referenced by existing borrowing records and cannot be deleted")
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.PatronNotFound(id)
	case err != nil:
		return apperrors.Unexpected(err)
	}

	if err = s.cache.Invalidate(ctx, cache.KindPatron, id); err != nil {
		s.log.WithError(err).WithField("patron_id", id).Warn("cache invalidation failed")
		err = nil
	}
	return nil
}
