package store

import (
	"strconv"
	"strings"
)

// DefaultKeyPrefix namespaces all keys written by RedisStore.
const DefaultKeyPrefix = "items"

// keys builds the Redis key layout for one prefix.
//
// Layout:
//
//	<prefix>:item:<id>  JSON-encoded item
//	<prefix>:ids        sorted set of IDs (score = ID)
//	<prefix>:seq        ID sequence (INCR)
type keys struct {
	prefix string
}

func newKeys(prefix string) keys {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keys{prefix: prefix}
}

func (k keys) item(id int64) string {
	return k.prefix + ":item:" + strconv.FormatInt(id, 10)
}

func (k keys) index() string {
	return k.prefix + ":ids"
}

func (k keys) sequence() string {
	return k.prefix + ":seq"
}
