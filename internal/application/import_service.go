package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"coverly-core-importer-layer/internal/domain"
	"coverly-core-importer-layer/internal/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// EventSink receives the outcome event of every import attempt.
type EventSink interface {
	Publish(event *domain.ImportEvent)
}

// ImportService orchestrates one credentialed import: lock, browser session,
// retailer login, extraction, normalization, dedup, persistence, and the
// connection-status upsert. Control flow is strictly sequential per request;
// isolation between users comes from the HTTP layer running requests
// concurrently.
type ImportService struct {
	drivers     ports.DriverRegistry
	browsers    ports.BrowserProvider
	products    ports.ProductRepository
	connections ports.ConnectionRepository
	locks       ports.ImportLocker
	dedup       ports.DedupCache
	dispatcher  *ImportEventDispatcher
	events      EventSink
	logger      zerolog.Logger
	lockTTL     time.Duration
	dedupTTL    time.Duration
}

// NewImportService creates a new import service.
func NewImportService(
	drivers ports.DriverRegistry,
	browsers ports.BrowserProvider,
	products ports.ProductRepository,
	connections ports.ConnectionRepository,
	locks ports.ImportLocker,
	dedup ports.DedupCache,
	dispatcher *ImportEventDispatcher,
	events EventSink,
	logger zerolog.Logger,
) *ImportService {
	return &ImportService{
		drivers:     drivers,
		browsers:    browsers,
		products:    products,
		connections: connections,
		locks:       locks,
		dedup:       dedup,
		dispatcher:  dispatcher,
		events:      events,
		logger:      logger,
		lockTTL:     3 * time.Minute,
		dedupTTL:    24 * time.Hour,
	}
}

// ImportResult is what one completed import attempt produced.
type ImportResult struct {
	ImportedCount int
	Products      []domain.ImportedProductRef
}

// RunCredentialedImport runs one single-shot import attempt for the user.
// The credentials are scrubbed before this returns, on every path. Errors
// surface as the domain taxonomy so the HTTP layer can classify them; the
// UserConnection row for (user, retailer) is upserted after every attempt.
func (s *ImportService) RunCredentialedImport(ctx context.Context, userID string, creds *domain.ImportCredentials) (*ImportResult, error) {
	defer creds.Scrub()

	retailer := domain.NormalizeRetailer(creds.Retailer)
	driver, err := s.drivers.Resolve(retailer)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	logger := s.logger.With().Str("runId", runID).Str("retailer", retailer).Logger()

	acquired, err := s.locks.AcquireLock(ctx, userID, retailer, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire import lock: %w", err)
	}
	if !acquired {
		return nil, domain.ErrImportInProgress
	}
	defer func() {
		if err := s.locks.ReleaseLock(context.WithoutCancel(ctx), userID, retailer); err != nil {
			logger.Warn().Err(err).Msg("Failed to release import lock")
		}
	}()

	start := time.Now()
	result, err := s.runScrape(ctx, logger, driver, userID, creds)
	duration := time.Since(start)

	if err == nil {
		err = s.connections.Upsert(ctx, &domain.UserConnection{
			UserID:       userID,
			Retailer:     retailer,
			Status:       domain.ConnectionStatusConnected,
			LastSyncedAt: time.Now(),
		})
		if err != nil {
			err = fmt.Errorf("failed to save connection status: %w", err)
		}
	} else {
		s.saveErrorStatus(ctx, logger, userID, retailer)
	}

	if err != nil {
		logger.Error().Err(err).Msg("Import attempt failed")
		s.emit(ctx, logger, &domain.ImportEvent{
			RunID:      runID,
			UserID:     userID,
			Retailer:   retailer,
			Status:     domain.ImportStatusFailed,
			Error:      err.Error(),
			Duration:   duration,
			OccurredAt: time.Now(),
		})
		return nil, err
	}

	logger.Info().
		Int("imported", result.ImportedCount).
		Dur("duration", duration).
		Msg("Import completed")
	s.emit(ctx, logger, &domain.ImportEvent{
		RunID:         runID,
		UserID:        userID,
		Retailer:      retailer,
		Status:        domain.ImportStatusSucceeded,
		ImportedCount: result.ImportedCount,
		Duration:      duration,
		OccurredAt:    time.Now(),
	})
	return result, nil
}

// runScrape owns the browser session for one attempt. The deferred Close
// runs on every exit path: login failure, extraction failure, and success.
func (s *ImportService) runScrape(ctx context.Context, logger zerolog.Logger, driver ports.RetailerDriver, userID string, creds *domain.ImportCredentials) (*ImportResult, error) {
	page, err := s.browsers.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire browser session: %w", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			logger.Warn().Err(cerr).Msg("Browser cleanup failed")
		}
	}()

	if err := driver.Login(ctx, page, creds.Username, creds.Password); err != nil {
		return nil, err
	}

	raw, err := driver.FetchOrders(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}

	products := domain.NormalizeOrders(driver.Retailer(), raw)
	fresh, err := s.filterDuplicates(ctx, logger, userID, products)
	if err != nil {
		return nil, err
	}

	if len(fresh) == 0 {
		return &ImportResult{Products: []domain.ImportedProductRef{}}, nil
	}

	refs, err := s.products.InsertImported(ctx, userID, fresh)
	if err != nil {
		return nil, fmt.Errorf("failed to persist products: %w", err)
	}
	s.markSeen(ctx, logger, userID, fresh)

	return &ImportResult{ImportedCount: len(refs), Products: refs}, nil
}

// filterDuplicates drops products the user already owns, keyed on
// (user, name, purchase date). The cache is a lookaside only: on cache
// errors the product store decides.
func (s *ImportService) filterDuplicates(ctx context.Context, logger zerolog.Logger, userID string, products []domain.ScrapedProduct) ([]domain.ScrapedProduct, error) {
	fresh := make([]domain.ScrapedProduct, 0, len(products))
	for _, p := range products {
		seen, err := s.dedup.Seen(ctx, dedupKey(userID, p))
		if err != nil {
			logger.Warn().Err(err).Msg("Dedup cache unavailable, falling back to product store")
			seen = false
		}
		if !seen {
			exists, err := s.products.Exists(ctx, userID, p.Name, p.PurchaseDate)
			if err != nil {
				return nil, fmt.Errorf("failed to check existing product: %w", err)
			}
			seen = exists
		}
		if seen {
			continue
		}
		fresh = append(fresh, p)
	}
	return fresh, nil
}

func (s *ImportService) markSeen(ctx context.Context, logger zerolog.Logger, userID string, products []domain.ScrapedProduct) {
	for _, p := range products {
		if err := s.dedup.MarkSeen(ctx, dedupKey(userID, p), s.dedupTTL); err != nil {
			logger.Warn().Err(err).Msg("Failed to record dedup key")
			return
		}
	}
}

// saveErrorStatus is best-effort: a failed import must still surface its own
// error even when the status write also fails.
func (s *ImportService) saveErrorStatus(ctx context.Context, logger zerolog.Logger, userID, retailer string) {
	err := s.connections.Upsert(ctx, &domain.UserConnection{
		UserID:       userID,
		Retailer:     retailer,
		Status:       domain.ConnectionStatusError,
		LastSyncedAt: time.Now(),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to save error connection status")
	}
}

func (s *ImportService) emit(ctx context.Context, logger zerolog.Logger, event *domain.ImportEvent) {
	if s.dispatcher != nil {
		if err := s.dispatcher.Dispatch(ctx, event); err != nil {
			logger.Error().Err(err).Msg("Failed to dispatch import event")
		}
	}
	if s.events != nil {
		s.events.Publish(event)
	}
}

func dedupKey(userID string, p domain.ScrapedProduct) string {
	return fmt.Sprintf("import:seen:%s:%s:%s", userID, strings.ToLower(p.Name), p.PurchaseDate)
}
