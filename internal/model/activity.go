package model

import (
	"encoding/json"
	"time"
)

type ActivityLog struct {
	ID          int64           `json:"id"`
	UserID      string          `json:"user_id"`
	ActionType  string          `json:"action_type"`
	ItemType    ItemType        `json:"item_type"`
	ItemID      string          `json:"item_id"`
	ItemTitle   string          `json:"item_title"`
	Description string          `json:"description,omitempty"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
