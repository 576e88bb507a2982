// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package vectorstore

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Entry and Meta serializers in MUS format. The records are flat enough that
// the serializers are written directly against the mus-go primitives.
var (
	EntryMUS = entryMUS{}
	MetaMUS  = metaMUS{}
)

// Meta describes a collection: its name and the dimensionality of its
// vectors. Dimension is 0 until the first batch is inserted.
type Meta struct {
	Name      string
	Dimension int
}

type entryMUS struct{}

// Size returns the serialized size of an Entry.
func (entryMUS) Size(e Entry) int {
	size := ord.String.Size(e.ID)
	size += varint.Int.Size(len(e.Vector))
	for _, v := range e.Vector {
		size += varint.Float32.Size(v)
	}
	size += ord.String.Size(e.Document)
	size += varint.Int.Size(len(e.Metadata))
	for k, v := range e.Metadata {
		size += ord.String.Size(k)
		size += ord.String.Size(v)
	}
	return size
}

// Marshal serializes an Entry into bs, returning the number of bytes written.
func (s entryMUS) Marshal(e Entry, bs []byte) int {
	n := ord.String.Marshal(e.ID, bs)
	n += varint.Int.Marshal(len(e.Vector), bs[n:])
	for _, v := range e.Vector {
		n += varint.Float32.Marshal(v, bs[n:])
	}
	n += ord.String.Marshal(e.Document, bs[n:])
	n += varint.Int.Marshal(len(e.Metadata), bs[n:])
	for k, v := range e.Metadata {
		n += ord.String.Marshal(k, bs[n:])
		n += ord.String.Marshal(v, bs[n:])
	}
	return n
}

// Unmarshal deserializes an Entry from bs.
func (s entryMUS) Unmarshal(bs []byte) (Entry, int, error) {
	var e Entry

	id, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return e, n, err
	}
	e.ID = id

	vectorLen, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	if vectorLen < 0 {
		return e, n, fmt.Errorf("%w: negative vector length", ErrSerializationFailed)
	}
	e.Vector = make([]float32, vectorLen)
	for i := 0; i < vectorLen; i++ {
		v, n1, err := varint.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return e, n, err
		}
		e.Vector[i] = v
	}

	document, n1, err := ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	e.Document = document

	metadataLen, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return e, n, err
	}
	if metadataLen < 0 {
		return e, n, fmt.Errorf("%w: negative metadata length", ErrSerializationFailed)
	}
	e.Metadata = make(map[string]string, metadataLen)
	for i := 0; i < metadataLen; i++ {
		k, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return e, n, err
		}
		v, n1, err := ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return e, n, err
		}
		e.Metadata[k] = v
	}

	return e, n, nil
}

type metaMUS struct{}

// Size returns the serialized size of a Meta.
func (metaMUS) Size(m Meta) int {
	return ord.String.Size(m.Name) + varint.Int.Size(m.Dimension)
}

// Marshal serializes a Meta into bs, returning the number of bytes written.
func (metaMUS) Marshal(m Meta, bs []byte) int {
	n := ord.String.Marshal(m.Name, bs)
	n += varint.Int.Marshal(m.Dimension, bs[n:])
	return n
}

// Unmarshal deserializes a Meta from bs.
func (metaMUS) Unmarshal(bs []byte) (Meta, int, error) {
	var m Meta

	name, n, err := ord.String.Unmarshal(bs)
	if err != nil {
		return m, n, err
	}
	m.Name = name

	dimension, n1, err := varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return m, n, err
	}
	m.Dimension = dimension

	return m, n, nil
}

// MarshalEntry serializes an Entry to bytes.
func MarshalEntry(e *Entry) []byte {
	buf := make([]byte, EntryMUS.Size(*e))
	EntryMUS.Marshal(*e, buf)
	return buf
}

// UnmarshalEntry deserializes an Entry from bytes.
func UnmarshalEntry(data []byte) (*Entry, error) {
	entry, _, err := EntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// MarshalMeta serializes a Meta to bytes.
func MarshalMeta(m *Meta) []byte {
	buf := make([]byte, MetaMUS.Size(*m))
	MetaMUS.Marshal(*m, buf)
	return buf
}

// UnmarshalMeta deserializes a Meta from bytes.
func UnmarshalMeta(data []byte) (*Meta, error) {
	meta, _, err := MetaMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &meta, nil
}
