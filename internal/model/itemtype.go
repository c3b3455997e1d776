package model

import "fmt"

// ItemType is the closed set of linkable item kinds. Anything outside this
// set is rejected up front rather than resolved by inspection.
type ItemType string

const (
	ItemTypeNote     ItemType = "note"
	ItemTypeIdea     ItemType = "idea"
	ItemTypeTask     ItemType = "task"
	ItemTypeReminder ItemType = "reminder"
)

func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeNote, ItemTypeIdea, ItemTypeTask, ItemTypeReminder:
		return ItemType(s), nil
	}
	return "", fmt.Errorf("unknown item type %q", s)
}
