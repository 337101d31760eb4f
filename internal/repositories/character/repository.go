// Package character provides the interface for character persistence
package character

//go:generate mockgen -destination=mock/mock_repository.go -package=charactermock github.com/materialcontext/glog2d6-api/internal/repositories/character Repository

import (
	"context"

	"github.com/materialcontext/glog2d6-api/internal/entities/glog"
)

// Repository defines the interface for character persistence
type Repository interface {
	// Create creates a new character
	// Returns errors.InvalidArgument for validation failures
	// Returns errors.AlreadyExists if character with same ID exists
	// Returns errors.Internal for storage failures
	Create(ctx context.Context, input CreateInput) (*CreateOutput, error)

	// Get retrieves a character by ID
	// Returns errors.InvalidArgument for empty/invalid IDs
	// Returns errors.NotFound if character doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Update replaces an existing character record wholesale
	// Returns errors.NotFound if character doesn't exist
	Update(ctx context.Context, input UpdateInput) (*UpdateOutput, error)

	// Delete deletes a character and its index entries
	// Returns errors.NotFound if character doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// ListByPlayerID retrieves all characters for a player
	ListByPlayerID(ctx context.Context, input ListByPlayerIDInput) (*ListByPlayerIDOutput, error)

	// ApplyChanges applies a dotted-path change batch to a stored character
	// in one write. An empty batch is a no-op that returns the current
	// record. Returns errors.NotFound if character doesn't exist and
	// errors.InvalidArgument for a path that cannot be resolved.
	ApplyChanges(ctx context.Context, input ApplyChangesInput) (*ApplyChangesOutput, error)

	// SetEquipped flips equipped flags on the named items in one write.
	// Returns errors.NotFound if the character or any item is missing.
	SetEquipped(ctx context.Context, input SetEquippedInput) (*SetEquippedOutput, error)
}

// CreateInput defines the input for creating a character
type CreateInput struct {
	Character *glog.Character
}

// CreateOutput defines the output for creating a character
type CreateOutput struct {
	Character *glog.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *glog.Character
}

// UpdateInput defines the input for updating a character
type UpdateInput struct {
	Character *glog.Character
}

// UpdateOutput defines the output for updating a character
type UpdateOutput struct {
	Character *glog.Character
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct{}

// ListByPlayerIDInput defines the input for listing characters by player
type ListByPlayerIDInput struct {
	PlayerID string
}

// ListByPlayerIDOutput defines the output for listing characters by player
type ListByPlayerIDOutput struct {
	Characters []*glog.Character
}

// ApplyChangesInput defines the input for a change batch
type ApplyChangesInput struct {
	CharacterID string
	Changes     []glog.StateChange
}

// ApplyChangesOutput carries the record as stored after the batch
type ApplyChangesOutput struct {
	Character *glog.Character
}

// SetEquippedInput defines the input for batched equip flag updates
type SetEquippedInput struct {
	CharacterID string
	Equip       []string
	Unequip     []string
}

// SetEquippedOutput carries the record as stored after the flag updates
type SetEquippedOutput struct {
	Character *glog.Character
}
