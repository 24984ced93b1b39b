package lists

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/driftboard/listlink/internal/ident"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxGenerationAttempts bounds the collision retry loop for link
// identifiers. Exhaustion is statistically near-impossible in a healthy
// store and is surfaced as an internal error worth alerting on.
const maxGenerationAttempts = 5

var (
	errMissingDatabase       = errors.New("lists: database handle is required")
	errMissingIDProvider     = errors.New("lists: id provider is required")
	errMissingLinkIDProvider = errors.New("lists: link id provider is required")
	errMissingOwner          = errors.New("lists: owner is required for new lists")

	// ErrBadIdentifier indicates a path identifier that fails the shape check.
	ErrBadIdentifier = errors.New("lists: malformed link identifier")
	// ErrNotFound indicates no list matches the supplied link identifier.
	ErrNotFound = errors.New("lists: no matching list")
	// ErrItemNotFound indicates the item does not exist under the resolved list.
	ErrItemNotFound = errors.New("lists: no matching item")
	// ErrForbidden indicates the resolved permission is below the operation's floor.
	ErrForbidden = errors.New("lists: insufficient permission")
	// ErrGenerationExhausted indicates the identifier collision retries ran out.
	ErrGenerationExhausted = errors.New("lists: link identifier generation exhausted")
)

// IDProvider issues internal identifiers for lists and items.
type IDProvider interface {
	NewID() (string, error)
}

// LinkIDProvider issues public link identifiers.
type LinkIDProvider interface {
	NewLinkID() (string, error)
}

type identProvider struct{}

// NewLinkIDProvider returns the production link identifier source.
func NewLinkIDProvider() LinkIDProvider {
	return identProvider{}
}

func (identProvider) NewLinkID() (string, error) {
	return ident.New()
}

// Identity is a verified caller identity, or nil when the request carried
// no usable credential.
type Identity struct {
	UserID string
}

// Access is the outcome of permission resolution for one request. Every
// list and item operation takes an Access and enforces its own floor, so
// call sites cannot re-derive permission ad hoc.
type Access struct {
	Permission Permission
	List       *List
}

// ServiceConfig describes the dependencies of the list service.
type ServiceConfig struct {
	Database   *gorm.DB
	Clock      func() time.Time
	IDProvider IDProvider
	LinkIDs    LinkIDProvider
	Logger     *zap.Logger
}

// Service owns list and item persistence and is the sole permission gate.
type Service struct {
	db         *gorm.DB
	clock      func() time.Time
	idProvider IDProvider
	linkIDs    LinkIDProvider
	logger     *zap.Logger
}

// NewService constructs the list service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}
	if cfg.IDProvider == nil {
		return nil, errMissingIDProvider
	}
	if cfg.LinkIDs == nil {
		return nil, errMissingLinkIDProvider
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:         cfg.Database,
		clock:      clock,
		idProvider: cfg.IDProvider,
		linkIDs:    cfg.LinkIDs,
		logger:     logger,
	}, nil
}

// ResolveAccess determines the effective permission for a link identifier
// and an optional verified identity.
//
// The link grant is edit when the identifier matches the list's edit id,
// view when it matches the view id. A verified identity matching the list's
// owner overrides the link grant entirely: an owner reaching their list
// through its view link still holds full owner capability.
//
// Legacy records with no view id get one generated and persisted here, even
// on read-only paths. The persistence is set-if-absent, so two concurrent
// first accesses converge on a single view id.
func (s *Service) ResolveAccess(ctx context.Context, pathID string, identity *Identity) (Access, error) {
	if !ident.IsValid(pathID) {
		return Access{}, ErrBadIdentifier
	}

	list, err := s.findByLinkID(ctx, pathID)
	if err != nil {
		return Access{}, err
	}

	if list.ViewID == nil {
		if err := s.backfillViewID(ctx, list); err != nil {
			return Access{}, err
		}
	}

	permission := PermissionView
	if pathID == list.EditID {
		permission = PermissionEdit
	}
	if identity != nil && list.OwnerID != nil && *list.OwnerID == identity.UserID {
		permission = PermissionOwner
	}

	return Access{Permission: permission, List: list}, nil
}

// CreateList persists a new list owned by the given user. The edit and view
// identifiers are generated independently and retried on any collision with
// each other or with any identifier already in the store.
func (s *Service) CreateList(ctx context.Context, ownerUserID string, title Title) (*List, error) {
	if ownerUserID == "" {
		return nil, errMissingOwner
	}

	listID, err := s.idProvider.NewID()
	if err != nil {
		return nil, fmt.Errorf("lists: generate internal id: %w", err)
	}

	editID, viewID, err := s.generateLinkPair(ctx)
	if err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	owner := ownerUserID
	list := List{
		ID:        listID,
		EditID:    editID,
		ViewID:    &viewID,
		OwnerID:   &owner,
		Title:     title.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&list).Error; err != nil {
		return nil, fmt.Errorf("lists: create list: %w", err)
	}
	return &list, nil
}

// UpdateTitle renames the list. Requires edit permission or better.
func (s *Service) UpdateTitle(ctx context.Context, access Access, title Title) (*List, error) {
	if !access.Permission.AtLeast(mutateFloor) {
		return nil, ErrForbidden
	}

	now := s.clock().UTC()
	err := s.db.WithContext(ctx).Model(&List{}).
		Where("id = ?", access.List.ID).
		Updates(map[string]interface{}{"title": title.String(), "updated_at": now}).Error
	if err != nil {
		return nil, fmt.Errorf("lists: update title: %w", err)
	}
	access.List.Title = title.String()
	access.List.UpdatedAt = now
	return access.List, nil
}

// DeleteList removes the list and all of its items. Deletion is
// owner-exclusive: an edit-link holder can never delete, and legacy lists
// with no owner cannot be deleted through any link-based path.
func (s *Service) DeleteList(ctx context.Context, access Access) error {
	if access.Permission != PermissionOwner {
		return ErrForbidden
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", access.List.ID).Delete(&Item{}).Error; err != nil {
			return fmt.Errorf("lists: delete items: %w", err)
		}
		if err := tx.Where("id = ?", access.List.ID).Delete(&List{}).Error; err != nil {
			return fmt.Errorf("lists: delete list: %w", err)
		}
		return nil
	})
}

// ListItems returns the list's items ordered by position. Requires view
// permission or better.
func (s *Service) ListItems(ctx context.Context, access Access) ([]Item, error) {
	if !access.Permission.AtLeast(readFloor) {
		return nil, ErrForbidden
	}

	var items []Item
	err := s.db.WithContext(ctx).
		Where("list_id = ?", access.List.ID).
		Order("position ASC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("lists: load items: %w", err)
	}
	return items, nil
}

// CreateItem appends a task to the list. Requires edit permission or
// better. The new item's position is max(existing)+1, or 0 for the first.
func (s *Service) CreateItem(ctx context.Context, access Access, text ItemText) (*Item, error) {
	if !access.Permission.AtLeast(mutateFloor) {
		return nil, ErrForbidden
	}

	itemID, err := s.idProvider.NewID()
	if err != nil {
		return nil, fmt.Errorf("lists: generate internal id: %w", err)
	}

	now := s.clock().UTC()
	item := Item{
		ID:        itemID,
		ListID:    access.List.ID,
		Text:      text.String(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxPosition int64
		err := tx.Model(&Item{}).
			Where("list_id = ?", access.List.ID).
			Select("COALESCE(MAX(position), -1)").
			Scan(&maxPosition).Error
		if err != nil {
			return fmt.Errorf("lists: compute item position: %w", err)
		}
		item.Position = int(maxPosition) + 1
		if err := tx.Create(&item).Error; err != nil {
			return fmt.Errorf("lists: create item: %w", err)
		}
		return bumpListUpdatedAt(tx, access.List.ID, now)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &item, nil
}

// ItemUpdate carries the partial item mutation payload. Nil fields are left
// unchanged.
type ItemUpdate struct {
	Text      *ItemText
	Completed *bool
}

// UpdateItem applies a partial mutation to an item of the resolved list.
// Requires edit permission or better.
func (s *Service) UpdateItem(ctx context.Context, access Access, itemID string, update ItemUpdate) (*Item, error) {
	if !access.Permission.AtLeast(mutateFloor) {
		return nil, ErrForbidden
	}

	var item Item
	now := s.clock().UTC()
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ? AND list_id = ?", itemID, access.List.ID).Take(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		if err != nil {
			return fmt.Errorf("lists: load item: %w", err)
		}

		changes := map[string]interface{}{}
		if update.Text != nil {
			item.Text = update.Text.String()
			changes["text"] = item.Text
		}
		if update.Completed != nil {
			item.Completed = *update.Completed
			changes["completed"] = item.Completed
		}
		if len(changes) == 0 {
			return nil
		}
		changes["updated_at"] = now
		item.UpdatedAt = now

		if err := tx.Model(&Item{}).Where("id = ?", item.ID).Updates(changes).Error; err != nil {
			return fmt.Errorf("lists: update item: %w", err)
		}
		return bumpListUpdatedAt(tx, access.List.ID, now)
	})
	if txErr != nil {
		return nil, txErr
	}
	return &item, nil
}

// DeleteItem removes an item of the resolved list. Requires edit
// permission or better.
func (s *Service) DeleteItem(ctx context.Context, access Access, itemID string) error {
	if !access.Permission.AtLeast(mutateFloor) {
		return ErrForbidden
	}

	now := s.clock().UTC()
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND list_id = ?", itemID, access.List.ID).Delete(&Item{})
		if result.Error != nil {
			return fmt.Errorf("lists: delete item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrItemNotFound
		}
		return bumpListUpdatedAt(tx, access.List.ID, now)
	})
}

// ListsOwnedBy returns every list owned by the user, most recently updated
// first.
func (s *Service) ListsOwnedBy(ctx context.Context, userID string) ([]List, error) {
	var owned []List
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", userID).
		Order("updated_at DESC").
		Find(&owned).Error
	if err != nil {
		return nil, fmt.Errorf("lists: load owned lists: %w", err)
	}
	return owned, nil
}

func (s *Service) findByLinkID(ctx context.Context, pathID string) (*List, error) {
	var list List
	err := s.db.WithContext(ctx).
		Where("edit_id = ? OR view_id = ?", pathID, pathID).
		Take(&list).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lists: load list: %w", err)
	}
	return &list, nil
}

// backfillViewID generates and persists a view id for a legacy record.
// The UPDATE is guarded by view_id IS NULL so concurrent first accesses
// cannot persist two different values; the loser reloads the winner's.
// updated_at is deliberately left untouched: backfill is not a substantive
// mutation.
func (s *Service) backfillViewID(ctx context.Context, list *List) error {
	viewID, err := s.generateUnusedLinkID(ctx, list.EditID)
	if err != nil {
		return err
	}

	result := s.db.WithContext(ctx).Model(&List{}).
		Where("id = ? AND view_id IS NULL", list.ID).
		Update("view_id", viewID)
	if result.Error != nil {
		return fmt.Errorf("lists: persist view id: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		refreshed, err := s.findByLinkID(ctx, list.EditID)
		if err != nil {
			return err
		}
		*list = *refreshed
		return nil
	}

	list.ViewID = &viewID
	s.logger.Info("view id backfilled", zap.String("list_id", list.ID))
	return nil
}

// generateLinkPair draws an edit and a view identifier, retrying while the
// pair collides with itself or with any identifier already in the store.
func (s *Service) generateLinkPair(ctx context.Context) (string, string, error) {
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		editID, err := s.linkIDs.NewLinkID()
		if err != nil {
			return "", "", fmt.Errorf("lists: generate link id: %w", err)
		}
		viewID, err := s.linkIDs.NewLinkID()
		if err != nil {
			return "", "", fmt.Errorf("lists: generate link id: %w", err)
		}
		if editID == viewID {
			continue
		}
		inUse, err := s.identifiersInUse(ctx, editID, viewID)
		if err != nil {
			return "", "", err
		}
		if !inUse {
			return editID, viewID, nil
		}
	}
	s.logger.Error("link identifier generation exhausted",
		zap.Int("attempts", maxGenerationAttempts))
	return "", "", ErrGenerationExhausted
}

func (s *Service) generateUnusedLinkID(ctx context.Context, avoid string) (string, error) {
	for attempt := 0; attempt < maxGenerationAttempts; attempt++ {
		candidate, err := s.linkIDs.NewLinkID()
		if err != nil {
			return "", fmt.Errorf("lists: generate link id: %w", err)
		}
		if candidate == avoid {
			continue
		}
		inUse, err := s.identifiersInUse(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !inUse {
			return candidate, nil
		}
	}
	s.logger.Error("link identifier generation exhausted",
		zap.Int("attempts", maxGenerationAttempts))
	return "", ErrGenerationExhausted
}

// identifiersInUse performs the collision check across the union of both
// identifier columns: each candidate is compared against every edit id and
// every view id already persisted.
func (s *Service) identifiersInUse(ctx context.Context, candidates ...string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&List{}).
		Where("edit_id IN ? OR view_id IN ?", candidates, candidates).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("lists: identifier collision check: %w", err)
	}
	return count > 0, nil
}

func bumpListUpdatedAt(tx *gorm.DB, listID string, now time.Time) error {
	if err := tx.Model(&List{}).Where("id = ?", listID).Update("updated_at", now).Error; err != nil {
		return fmt.Errorf("lists: bump list timestamp: %w", err)
	}
	return nil
}
