package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/Gametoken-tech/gametoken/store/kv"
)

type entryModel struct {
	grove.BaseModel `grove:"table:gametoken_entries"`

	Key       string    `grove:"entry_key,pk" bson:"_id"`
	Value     string    `grove:"entry_value"  bson:"value"`
	UpdatedAt time.Time `grove:"updated_at"   bson:"updated_at"`
}

func fromEntryModels(models []entryModel) []kv.Entry {
	entries := make([]kv.Entry, len(models))
	for i, m := range models {
		entries[i] = kv.Entry{Key: m.Key, Value: m.Value}
	}
	return entries
}
