package store

import (
	"bytes"

	"github.com/vmihailenco/msgpack/v4"
	"gitlab.com/pagek/check"
)

const resultPredicate = "result"

// MakeKey of a predicate and ids, joined by ':'
func MakeKey(predicate string, ids ...string) []byte {
	key := []byte(predicate)
	for _, id := range ids {
		key = append(key, byte(':'))
		key = append(key, id...)
	}
	return key
}

// GetID of key from a pred:id, everything after the predicate
func GetID(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	if len(split) == 1 {
		return []byte{}
	}
	return split[1]
}

// GetPredicate from pred:id
func GetPredicate(key []byte) []byte {
	split := bytes.SplitN(key, []byte(":"), 2)
	return split[0]
}

// EncodeResult into msgpack
func EncodeResult(result *check.Result) ([]byte, error) {
	return msgpack.Marshal(result)
}

// DecodeResult from msgpack
func DecodeResult(data []byte) (*check.Result, error) {
	result := &check.Result{}
	if err := msgpack.Unmarshal(data, result); err != nil {
		return nil, err
	}
	return result, nil
}
