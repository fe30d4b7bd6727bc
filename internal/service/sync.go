package service

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tomeriko7/finalProject-sub000/internal/domain"
	"github.com/tomeriko7/finalProject-sub000/internal/repository"
	apperrors "github.com/tomeriko7/finalProject-sub000/pkg/errors"
	"github.com/tomeriko7/finalProject-sub000/pkg/pagination"
	"github.com/tomeriko7/finalProject-sub000/pkg/tracing"
)

// SyncState tracks where a reconciliation run stands. A run that fails at
// any step returns to StateUnsynced and is safe to retry: hydration reads
// are pure, the cart sync is a deterministic overwrite, and the guest key
// deletion is idempotent.
type SyncState string

const (
	StateUnsynced SyncState = "unsynced"
	StateSyncing  SyncState = "syncing"
	StateSynced   SyncState = "synced"
)

// Locker guards against concurrent reconciliation runs for one user.
type Locker interface {
	Acquire(ctx context.Context, userID string) (bool, error)
	Release(ctx context.Context, userID string) error
}

// ReconcileResult is the hydrated post-login state handed back to the
// client.
type ReconcileResult struct {
	State     SyncState                                   `json:"state"`
	Favorites *pagination.Result[domain.ResolvedFavorite] `json:"favorites"`
	Cart      *domain.ResolvedCart                        `json:"cart"`
	Dropped   int                                         `json:"dropped_lines"`
}

// SyncService reconciles a guest holding area into the authenticated
// stores after login. The transfer is one-shot and one-directional:
// guest cart lines replace the account cart, guest favorites are
// discarded in favor of the authoritative ones, and the guest keys are
// destroyed once both sides are settled.
type SyncService struct {
	cartService      *CartService
	favoritesService *FavoritesService
	guestRepo        repository.GuestStateRepository
	lock             Locker
	logger           *slog.Logger
}

// NewSyncService creates a new reconciliation service.
func NewSyncService(
	cartService *CartService,
	favoritesService *FavoritesService,
	guestRepo repository.GuestStateRepository,
	lock Locker,
	logger *slog.Logger,
) *SyncService {
	return &SyncService{
		cartService:      cartService,
		favoritesService: favoritesService,
		guestRepo:        guestRepo,
		lock:             lock,
		logger:           logger,
	}
}

// Reconcile runs the guest-to-account transfer for one login:
//
//  1. Hydrate favorites from the authoritative store unconditionally.
//  2. If the guest cart is empty, read the account cart as-is.
//  3. Otherwise push the guest lines through Sync, replacing the account
//     cart wholesale and dropping lines that no longer validate.
//  4. Delete all guest keys once the cart path succeeded.
//
// A per-user lock rejects concurrent runs; the caller may retry after
// the holder finishes. guestToken may be empty when the client never
// shopped anonymously.
func (s *SyncService) Reconcile(ctx context.Context, userID, guestToken string) (*ReconcileResult, error) {
	ctx, span := tracing.Tracer("sync").Start(ctx, "Reconcile")
	defer span.End()

	acquired, err := s.lock.Acquire(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("acquire reconcile lock: %w", err)
	}
	if !acquired {
		return nil, apperrors.Conflict("reconciliation already in progress for this user")
	}
	defer func() {
		if err := s.lock.Release(ctx, userID); err != nil {
			s.logger.ErrorContext(ctx, "failed to release reconcile lock",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}()

	result := &ReconcileResult{State: StateSyncing}

	favorites, err := s.favoritesService.List(ctx, userID, pagination.DefaultParams())
	if err != nil {
		s.logFailure(ctx, userID, "hydrate favorites", err)
		return nil, err
	}
	result.Favorites = favorites

	var guestLines []domain.GuestCartLine
	if guestToken != "" {
		guestLines, err = s.guestRepo.GetCart(ctx, guestToken)
		if err != nil {
			s.logFailure(ctx, userID, "read guest cart", err)
			return nil, fmt.Errorf("read guest cart: %w", err)
		}
	}

	if len(guestLines) == 0 {
		cart, err := s.cartService.GetCart(ctx, userID)
		if err != nil {
			s.logFailure(ctx, userID, "read account cart", err)
			return nil, err
		}
		result.Cart = cart
	} else {
		lines := make([]SyncLine, 0, len(guestLines))
		for _, gl := range guestLines {
			lines = append(lines, SyncLine{ProductID: gl.ProductID, Quantity: gl.Quantity})
		}

		cart, dropped, err := s.cartService.Sync(ctx, userID, lines)
		if err != nil {
			s.logFailure(ctx, userID, "sync guest cart", err)
			return nil, err
		}
		result.Cart = cart
		result.Dropped = dropped
	}

	if guestToken != "" {
		if err := s.guestRepo.DeleteAll(ctx, guestToken); err != nil {
			s.logFailure(ctx, userID, "delete guest state", err)
			return nil, fmt.Errorf("delete guest state: %w", err)
		}
	}

	result.State = StateSynced
	span.SetAttributes(
		attribute.Int("sync.guest_lines", len(guestLines)),
		attribute.Int("sync.dropped_lines", result.Dropped),
	)

	s.logger.InfoContext(ctx, "guest state reconciled",
		slog.String("user_id", userID),
		slog.Int("guest_lines", len(guestLines)),
		slog.Int("dropped", result.Dropped),
	)

	return result, nil
}

func (s *SyncService) logFailure(ctx context.Context, userID, step string, err error) {
	s.logger.ErrorContext(ctx, "reconciliation failed, state stays unsynced",
		slog.String("user_id", userID),
		slog.String("step", step),
		slog.String("error", err.Error()),
	)
}
