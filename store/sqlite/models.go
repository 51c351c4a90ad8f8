package sqlite

import (
	"time"

	"github.com/xraph/grove"

	"github.com/Gametoken-tech/gametoken/store/kv"
)

type entryModel struct {
	grove.BaseModel `grove:"table:gametoken_entries"`

	Key       string    `grove:"entry_key,pk"`
	Value     string    `grove:"entry_value"`
	UpdatedAt time.Time `grove:"updated_at"`
}

func toEntryModels(entries []kv.Entry, at time.Time) []entryModel {
	models := make([]entryModel, len(entries))
	for i, e := range entries {
		models[i] = entryModel{Key: e.Key, Value: e.Value, UpdatedAt: at}
	}
	return models
}

func fromEntryModels(models []entryModel) []kv.Entry {
	entries := make([]kv.Entry, len(models))
	for i, m := range models {
		entries[i] = kv.Entry{Key: m.Key, Value: m.Value}
	}
	return entries
}
