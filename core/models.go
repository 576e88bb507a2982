package core

import (
	"encoding/binary"

	"github.com/go-crypt/x/blake2b"
)

// DedupKey identifies a quote by its content.
// Two quotes with the same trimmed text and author share a key.
type DedupKey uint64

// DedupKeyFor generates a deterministic key from quote text and author using
// BLAKE2b hashing. The inputs must already be trimmed; a zero byte separates
// them so that ("ab","c") and ("a","bc") hash differently.
func DedupKeyFor(text, author string) DedupKey {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	h.Write([]byte{0})
	h.Write([]byte(author))
	sum := h.Sum(nil)
	return DedupKey(binary.LittleEndian.Uint64(sum))
}

// Quote is a normalized quote record.
// Ids are dense, 0-based, assigned once at normalization and never reused.
// Category and Tags hold the normalized (trimmed, lower-cased) forms.
type Quote struct {
	Id         int
	Text       string
	Author     string
	Category   string
	Tags       []string
	Popularity int
}

// Keyword is a scored keyword within one category.
// Word is the literal matched token in lower case. Count is the number of
// quotes in the category that contain the word, and is always > 0 for
// emitted keywords. The same word may exist as separate Keyword values
// under different categories with different scores.
type Keyword struct {
	Word   string  `json:"word"`
	Count  int     `json:"count"`
	Impact float64 `json:"impact"`

	// Category the keyword was scored in. Not serialized: the keyword
	// table keys rank lists by category already.
	Category string `json:"-"`
}
