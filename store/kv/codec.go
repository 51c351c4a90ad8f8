// Package kv is the key-value encoding shared by the durable backends.
//
// Every piece of token state maps to one string key and one string value:
//
//	meta/name, meta/symbol, meta/decimals, meta/supply   static metadata
//	acl/owner                                            administrator
//	fee/rate, fee/treasury                               fee configuration
//	bal/<address>                                        balance
//	alw/<owner>/<spender>                                allowance
//	exm/<address>                                        "1" exempt, "0" not
//	seq                                                  last event sequence
//	evt/<20-digit sequence>                              JSON event
//
// Changesets carry absolute values, so a commit is a pure upsert of the
// encoded entries and never needs a delete.
package kv

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Gametoken-tech/gametoken/address"
	"github.com/Gametoken-tech/gametoken/book"
	"github.com/Gametoken-tech/gametoken/event"
	"github.com/Gametoken-tech/gametoken/store"
	"github.com/Gametoken-tech/gametoken/types"
)

// Key prefixes and fixed keys.
const (
	KeyName     = "meta/name"
	KeySymbol   = "meta/symbol"
	KeyDecimals = "meta/decimals"
	KeySupply   = "meta/supply"
	KeyOwner    = "acl/owner"
	KeyRate     = "fee/rate"
	KeyTreasury = "fee/treasury"
	KeySequence = "seq"

	PrefixBalance   = "bal/"
	PrefixAllowance = "alw/"
	PrefixExempt    = "exm/"
	PrefixEvent     = "evt/"

	// EventKeyUpper sorts after every event key; '0' follows '/' in ASCII.
	EventKeyUpper = "evt0"
)

// Entry is one key-value pair.
type Entry struct {
	Key   string
	Value string
}

// EventKey returns the key of the event with sequence seq. Keys sort in
// sequence order.
func EventKey(seq uint64) string {
	return fmt.Sprintf("%s%020d", PrefixEvent, seq)
}

// IsEventKey reports whether key holds an event.
func IsEventKey(key string) bool {
	return strings.HasPrefix(key, PrefixEvent)
}

// BalanceKey returns the key of account's balance.
func BalanceKey(account address.Address) string {
	return PrefixBalance + address.Key(account)
}

// AllowanceKey returns the key of an allowance.
func AllowanceKey(k book.AllowanceKey) string {
	return PrefixAllowance + address.Key(k.Owner) + "/" + address.Key(k.Spender)
}

// ExemptKey returns the key of account's exemption flag.
func ExemptKey(account address.Address) string {
	return PrefixExempt + address.Key(account)
}

// Encode turns a changeset into entries sorted by key.
func Encode(cs *store.Changeset) ([]Entry, error) {
	var out []Entry
	add := func(k, v string) { out = append(out, Entry{Key: k, Value: v}) }

	if cs.Metadata != nil {
		add(KeyName, cs.Metadata.Name)
		add(KeySymbol, cs.Metadata.Symbol)
		add(KeyDecimals, strconv.FormatUint(uint64(cs.Metadata.Decimals), 10))
		add(KeySupply, cs.Metadata.TotalSupply.String())
	}
	if cs.Owner != nil {
		add(KeyOwner, address.Key(*cs.Owner))
	}
	if cs.Rate != nil {
		add(KeyRate, strconv.FormatUint(*cs.Rate, 10))
	}
	if cs.Treasury != nil {
		add(KeyTreasury, address.Key(*cs.Treasury))
	}
	for a, v := range cs.Balances {
		add(BalanceKey(a), v.String())
	}
	for k, v := range cs.Allowances {
		add(AllowanceKey(k), v.String())
	}
	for a, ok := range cs.Exempt {
		flag := "0"
		if ok {
			flag = "1"
		}
		add(ExemptKey(a), flag)
	}
	for _, evt := range cs.Events {
		data, err := json.Marshal(evt)
		if err != nil {
			return nil, fmt.Errorf("kv: encode event %d: %w", evt.Sequence, err)
		}
		add(EventKey(evt.Sequence), string(data))
	}
	if seq := cs.Sequence(); seq > 0 {
		add(KeySequence, strconv.FormatUint(seq, 10))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// Decode rebuilds a snapshot from state entries. Event entries are skipped.
// It returns store.ErrNotInitialized when no metadata is present.
func Decode(entries []Entry) (*store.Snapshot, error) {
	snap := store.NewSnapshot()
	initialized := false

	for _, e := range entries {
		if err := decodeEntry(snap, e); err != nil {
			return nil, fmt.Errorf("kv: decode %q: %w", e.Key, err)
		}
		if e.Key == KeyName {
			initialized = true
		}
	}

	if !initialized {
		return nil, store.ErrNotInitialized
	}
	return snap, nil
}

func decodeEntry(snap *store.Snapshot, e Entry) error {
	switch {
	case IsEventKey(e.Key):
		return nil
	case e.Key == KeyName:
		snap.Metadata.Name = e.Value
	case e.Key == KeySymbol:
		snap.Metadata.Symbol = e.Value
	case e.Key == KeyDecimals:
		d, err := strconv.ParseUint(e.Value, 10, 8)
		if err != nil {
			return err
		}
		snap.Metadata.Decimals = uint8(d)
	case e.Key == KeySupply:
		supply, err := types.ParseAmount(e.Value)
		if err != nil {
			return err
		}
		snap.Metadata.TotalSupply = supply
	case e.Key == KeyOwner:
		owner, err := address.FromKey(e.Value)
		if err != nil {
			return err
		}
		snap.Owner = owner
	case e.Key == KeyRate:
		rate, err := strconv.ParseUint(e.Value, 10, 64)
		if err != nil {
			return err
		}
		snap.Rate = rate
	case e.Key == KeyTreasury:
		treasury, err := address.FromKey(e.Value)
		if err != nil {
			return err
		}
		snap.Treasury = treasury
	case e.Key == KeySequence:
		seq, err := strconv.ParseUint(e.Value, 10, 64)
		if err != nil {
			return err
		}
		snap.Sequence = seq
	case strings.HasPrefix(e.Key, PrefixBalance):
		account, err := address.FromKey(strings.TrimPrefix(e.Key, PrefixBalance))
		if err != nil {
			return err
		}
		bal, err := types.ParseAmount(e.Value)
		if err != nil {
			return err
		}
		snap.Balances[account] = bal
	case strings.HasPrefix(e.Key, PrefixAllowance):
		parts := strings.Split(strings.TrimPrefix(e.Key, PrefixAllowance), "/")
		if len(parts) != 2 {
			return fmt.Errorf("malformed allowance key")
		}
		owner, err := address.FromKey(parts[0])
		if err != nil {
			return err
		}
		spender, err := address.FromKey(parts[1])
		if err != nil {
			return err
		}
		amount, err := types.ParseAmount(e.Value)
		if err != nil {
			return err
		}
		snap.Allowances[book.AllowanceKey{Owner: owner, Spender: spender}] = amount
	case strings.HasPrefix(e.Key, PrefixExempt):
		account, err := address.FromKey(strings.TrimPrefix(e.Key, PrefixExempt))
		if err != nil {
			return err
		}
		snap.Exempt[account] = e.Value == "1"
	default:
		return fmt.Errorf("unknown key")
	}
	return nil
}

// DecodeEvent parses an event value.
func DecodeEvent(value string) (*event.Event, error) {
	var evt event.Event
	if err := json.Unmarshal([]byte(value), &evt); err != nil {
		return nil, fmt.Errorf("kv: decode event: %w", err)
	}
	return &evt, nil
}

// DecodeEvents parses event entries, keeping their order.
func DecodeEvents(entries []Entry) ([]*event.Event, error) {
	out := make([]*event.Event, 0, len(entries))
	for _, e := range entries {
		evt, err := DecodeEvent(e.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, evt)
	}
	return out, nil
}

// EventRange returns the inclusive lower and exclusive upper key bounds for
// events with Sequence > after.
func EventRange(after uint64) (from, to string) {
	return EventKey(after + 1), EventKeyUpper
}
