package lists

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	maxTitleLength = 200
	maxTextLength  = 500
)

var (
	// ErrInvalidTitle indicates a list title is empty after trimming or too long.
	ErrInvalidTitle = errors.New("lists: invalid title")
	// ErrInvalidItemText indicates an item text is empty after trimming or too long.
	ErrInvalidItemText = errors.New("lists: invalid item text")
)

// Title represents a validated list title.
type Title string

// NewTitle validates raw input and returns a Title.
func NewTitle(rawInput string) (Title, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidTitle)
	}
	if len(trimmed) > maxTitleLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidTitle, maxTitleLength)
	}
	return Title(trimmed), nil
}

// String returns the underlying title text.
func (t Title) String() string {
	return string(t)
}

// ItemText represents a validated item text.
type ItemText string

// NewItemText validates raw input and returns an ItemText.
func NewItemText(rawInput string) (ItemText, error) {
	trimmed := strings.TrimSpace(rawInput)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidItemText)
	}
	if len(trimmed) > maxTextLength {
		return "", fmt.Errorf("%w: exceeds %d characters", ErrInvalidItemText, maxTextLength)
	}
	return ItemText(trimmed), nil
}

// String returns the underlying item text.
func (t ItemText) String() string {
	return string(t)
}

// List models a shareable task container. Every list carries two public
// link identifiers in one shape: EditID grants read+write, ViewID grants
// read-only. ViewID is nullable only for records persisted before the field
// existed; it is backfilled on first access and guaranteed present after.
// UpdatedAt is managed explicitly so that only substantive mutations bump
// it; identifier backfill does not.
type List struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null"`
	EditID    string    `gorm:"column:edit_id;size:9;not null;uniqueIndex:idx_lists_edit_id"`
	ViewID    *string   `gorm:"column:view_id;size:9;uniqueIndex:idx_lists_view_id"`
	OwnerID   *string   `gorm:"column:owner_id;size:36;index:idx_lists_owner"`
	Title     string    `gorm:"column:title;size:200;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime:false"`
}

// TableName provides the explicit table binding for GORM.
func (List) TableName() string {
	return "lists"
}

// Item models a task belonging to exactly one list. Position is assigned
// max(existing)+1 at creation and is the sole sort key; gaps are permitted
// and never renormalized.
type Item struct {
	ID        string    `gorm:"column:id;primaryKey;size:36;not null"`
	ListID    string    `gorm:"column:list_id;size:36;not null;index:idx_items_list_position,priority:1"`
	Text      string    `gorm:"column:text;size:500;not null"`
	Completed bool      `gorm:"column:completed;not null;default:false"`
	Position  int       `gorm:"column:position;not null;default:0;index:idx_items_list_position,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Item) TableName() string {
	return "items"
}
