package badger

import "fmt"

// Key prefixes for different data types
const (
	entryPrefix          = "colent"
	collectionMetaPrefix = "colmeta"
)

// makeEntryKey generates a key for a stored entry within a collection.
// Format: prefix:collection:id
func makeEntryKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", entryPrefix, collection, id))
}

// makeEntryScanPrefix generates the iteration prefix for a collection's entries.
func makeEntryScanPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", entryPrefix, collection))
}

// makeMetaKey generates the key for a collection's metadata record.
func makeMetaKey(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionMetaPrefix, collection))
}
