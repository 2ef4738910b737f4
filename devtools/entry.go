package devtools

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/xraph/flux"
)

// Entry is one recorded dispatch, the envelope broadcast to devtools
// subscribers. Payload holds the action payload pre-encoded as
// MessagePack so entries can be forwarded without re-encoding per
// subscriber.
type Entry struct {
	// Seq is the recorder-assigned sequence number, strictly increasing
	// in dispatch order.
	Seq int64 `json:"seq" msgpack:"seq"`

	// Timestamp records when the dispatch was observed.
	Timestamp time.Time `json:"ts" msgpack:"ts"`

	// Type is the action type.
	Type string `json:"type" msgpack:"type"`

	// Stage is the lifecycle marker, empty for plain actions.
	Stage string `json:"stage,omitempty" msgpack:"stage,omitempty"`

	// Transaction is the transaction ID string, empty for plain actions.
	Transaction string `json:"transaction,omitempty" msgpack:"transaction,omitempty"`

	// Err mirrors the action's error flag.
	Err bool `json:"error,omitempty" msgpack:"error,omitempty"`

	// Payload is the MessagePack-encoded action payload, nil when the
	// payload was nil or not encodable.
	Payload []byte `json:"payload,omitempty" msgpack:"payload,omitempty"`
}

// newEntry snapshots an action into an Entry. An unencodable payload is
// dropped from the entry, never an error: recording must not disturb
// dispatch.
func newEntry(seq int64, a *flux.Action) Entry {
	e := Entry{
		Seq:         seq,
		Timestamp:   time.Now().UTC(),
		Type:        a.Type,
		Stage:       string(a.Stage()),
		Transaction: a.Meta.Transaction.String(),
		Err:         a.Err,
	}

	if a.Payload != nil {
		if data, err := msgpack.Marshal(a.Payload); err == nil {
			e.Payload = data
		}
	}

	return e
}

// Encode serializes the entry as MessagePack, the devtools wire format.
func (e Entry) Encode() ([]byte, error) {
	return msgpack.Marshal(e)
}

// DecodeEntry deserializes a MessagePack-encoded entry.
func DecodeEntry(data []byte) (Entry, error) {
	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Entry{}, err
	}
	return e, nil
}
