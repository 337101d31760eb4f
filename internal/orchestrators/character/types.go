package character

import "github.com/materialcontext/glog2d6-api/internal/entities/glog"

// ImportInput defines the input for importing a character sheet
type ImportInput struct {
	// Sheet is the raw YAML character sheet
	Sheet []byte
	// PlayerID, when set, overrides the sheet's player binding
	PlayerID string
}

// ImportOutput defines the output for importing a character sheet
type ImportOutput struct {
	Character *glog.Character
}

// GetInput defines the input for getting a character
type GetInput struct {
	CharacterID string
}

// GetOutput defines the output for getting a character
type GetOutput struct {
	Character *glog.Character
}

// ListInput defines the input for listing a player's characters
type ListInput struct {
	PlayerID string
}

// ListOutput defines the output for listing a player's characters
type ListOutput struct {
	Characters []*glog.Character
}

// RecalculateInput defines the input for recalculating derived values
type RecalculateInput struct {
	CharacterID string
}

// RecalculateOutput defines the output for recalculating derived values
type RecalculateOutput struct {
	Character *glog.Character
	// Changes is the applied batch, useful for audit display
	Changes []glog.StateChange
}

// DeleteInput defines the input for deleting a character
type DeleteInput struct {
	CharacterID string
}

// DeleteOutput defines the output for deleting a character
type DeleteOutput struct{}
