/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package random

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// UUIDAllocator derives stable UUIDv5 identifiers from a seed, an entity
// kind and a global index. Shards allocate from disjoint index ranges, so
// no coordination is needed.
type UUIDAllocator struct {
	namespace uuid.UUID
}

func NewUUIDAllocator(seed uint64, kind string) UUIDAllocator {
	return UUIDAllocator{
		namespace: uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("datagen/%d/%s", seed, kind))),
	}
}

func (a UUIDAllocator) ID(index int64) string {
	return uuid.NewSHA1(a.namespace, []byte(strconv.FormatInt(index, 10))).String()
}

// Shard returns a sequence of identifiers private to one shard.
func (a UUIDAllocator) Shard(shard int) *ShardSequence {
	return &ShardSequence{alloc: a, shard: shard}
}

// ShardSequence allocates UUIDs from (shard, counter) pairs, so shards never
// collide and need no shared state.
type ShardSequence struct {
	alloc UUIDAllocator
	shard int
	next  int64
}

func (s *ShardSequence) Next() string {
	id := uuid.NewSHA1(s.alloc.namespace, []byte(fmt.Sprintf("%d/%d", s.shard, s.next))).String()
	s.next++
	return id
}
