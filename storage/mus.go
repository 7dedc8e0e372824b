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


package storage

import (
	"fmt"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/evidex/core"
)

// MUS serializers for the persisted record types. Field order is the wire
// format; changing it breaks stored data.

// ChunkMUS serializes core.Chunk values.
var ChunkMUS = chunkSer{}

// MetadataMUS serializes core.Metadata values.
var MetadataMUS = metadataSer{}

// QueryRecordMUS serializes core.QueryRecord values.
var QueryRecordMUS = queryRecordSer{}

type chunkSer struct{}

func (chunkSer) Marshal(c core.Chunk, bs []byte) (n int) {
	n = ord.String.Marshal(c.ID, bs)
	n += ord.String.Marshal(c.Text, bs[n:])
	n += MetadataMUS.Marshal(c.Metadata, bs[n:])
	n += float32SliceMUS.Marshal(c.Vector, bs[n:])
	return n
}

func (chunkSer) Unmarshal(bs []byte) (c core.Chunk, n int, err error) {
	var n1 int
	c.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	c.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Metadata, n1, err = MetadataMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	c.Vector, n1, err = float32SliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (chunkSer) Size(c core.Chunk) (size int) {
	size = ord.String.Size(c.ID)
	size += ord.String.Size(c.Text)
	size += MetadataMUS.Size(c.Metadata)
	size += float32SliceMUS.Size(c.Vector)
	return size
}

type metadataSer struct{}

func (metadataSer) Marshal(m core.Metadata, bs []byte) (n int) {
	n = ord.String.Marshal(m.DocID, bs)
	n += ord.String.Marshal(m.Filename, bs[n:])
	n += varint.Int.Marshal(m.Page, bs[n:])
	n += varint.Int.Marshal(m.ChunkIndex, bs[n:])
	n += varint.Int.Marshal(m.SectionID, bs[n:])
	n += ord.String.Marshal(m.Subrule, bs[n:])
	n += ord.String.Marshal(string(m.SubjectRole), bs[n:])
	n += stringSliceMUS.Marshal(m.TopicTags, bs[n:])
	return n
}

func (metadataSer) Unmarshal(bs []byte) (m core.Metadata, n int, err error) {
	var n1 int
	m.DocID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	m.Filename, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Page, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.ChunkIndex, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.SectionID, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.Subrule, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var role string
	role, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	m.SubjectRole = core.SubjectRole(role)
	m.TopicTags, n1, err = stringSliceMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (metadataSer) Size(m core.Metadata) (size int) {
	size = ord.String.Size(m.DocID)
	size += ord.String.Size(m.Filename)
	size += varint.Int.Size(m.Page)
	size += varint.Int.Size(m.ChunkIndex)
	size += varint.Int.Size(m.SectionID)
	size += ord.String.Size(m.Subrule)
	size += ord.String.Size(string(m.SubjectRole))
	size += stringSliceMUS.Size(m.TopicTags)
	return size
}

type queryRecordSer struct{}

func (queryRecordSer) Marshal(q core.QueryRecord, bs []byte) (n int) {
	n = ord.String.Marshal(q.ID, bs)
	n += ord.String.Marshal(q.Question, bs[n:])
	n += ord.String.Marshal(q.Mode, bs[n:])
	n += varint.Int.Marshal(q.EvidenceCount, bs[n:])
	n += raw.Float64.Marshal(q.TopScore, bs[n:])
	n += varint.Int64.Marshal(q.CreatedAt.UnixMicro(), bs[n:])
	return n
}

func (queryRecordSer) Unmarshal(bs []byte) (q core.QueryRecord, n int, err error) {
	var n1 int
	q.ID, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	q.Question, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	q.Mode, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	q.EvidenceCount, n1, err = varint.Int.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	q.TopScore, n1, err = raw.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	var micros int64
	micros, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	q.CreatedAt = time.UnixMicro(micros).UTC()
	return
}

func (queryRecordSer) Size(q core.QueryRecord) (size int) {
	size = ord.String.Size(q.ID)
	size += ord.String.Size(q.Question)
	size += ord.String.Size(q.Mode)
	size += varint.Int.Size(q.EvidenceCount)
	size += raw.Float64.Size(q.TopScore)
	size += varint.Int64.Size(q.CreatedAt.UnixMicro())
	return size
}

// float32SliceMUS serializes embedding vectors: a varint length prefix
// followed by raw 4-byte floats.
var float32SliceMUS = float32SliceSer{}

type float32SliceSer struct{}

func (float32SliceSer) Marshal(v []float32, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, f := range v {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (float32SliceSer) Unmarshal(bs []byte) (v []float32, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("%w: negative vector length %d", ErrSerializationFailed, length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]float32, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = raw.Float32.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (float32SliceSer) Size(v []float32) (size int) {
	size = varint.Int.Size(len(v))
	for _, f := range v {
		size += raw.Float32.Size(f)
	}
	return size
}

// stringSliceMUS serializes tag lists: a varint length prefix followed by
// length-prefixed strings.
var stringSliceMUS = stringSliceSer{}

type stringSliceSer struct{}

func (stringSliceSer) Marshal(v []string, bs []byte) (n int) {
	n = varint.Int.Marshal(len(v), bs)
	for _, s := range v {
		n += ord.String.Marshal(s, bs[n:])
	}
	return n
}

func (stringSliceSer) Unmarshal(bs []byte) (v []string, n int, err error) {
	length, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	if length < 0 {
		return nil, n, fmt.Errorf("%w: negative tag count %d", ErrSerializationFailed, length)
	}
	if length == 0 {
		return nil, n, nil
	}
	v = make([]string, length)
	var n1 int
	for i := 0; i < length; i++ {
		v[i], n1, err = ord.String.Unmarshal(bs[n:])
		n += n1
		if err != nil {
			return nil, n, err
		}
	}
	return v, n, nil
}

func (stringSliceSer) Size(v []string) (size int) {
	size = varint.Int.Size(len(v))
	for _, s := range v {
		size += ord.String.Size(s)
	}
	return size
}
