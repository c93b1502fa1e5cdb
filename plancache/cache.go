// Copyright (C) 2022 Sneller, Inc.
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

// Package plancache caches the result of rewrite.Statement keyed by
// canonical query text and schema fingerprint, so a dashboard polling
// the same SELECT on an interval does not re-run C2-C8 every time
// (the field checker, C9, is not cached).
// Grounded on plan/pir's Trace as "the expensive thing to avoid
// recomputing"; backed by an embedded badger/v4 KV store.
package plancache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"time"

	"github.com/dchest/siphash"
	badger "github.com/dgraph-io/badger/v4"
	"github.com/kayagokalp/influxql-rewriter/influxql"
	"github.com/kayagokalp/influxql-rewriter/schema"
	"github.com/klauspost/compress/zstd"
)

// Cache is a badger-backed store of *influxql.SelectQuery results,
// keyed by a siphash of the query text folded together with the
// schema's content fingerprint. A schema change changes every key it
// touches, so stale entries are never served; they simply age out via
// badger's own TTL.
type Cache struct {
	db  *badger.DB
	k0  uint64
	k1  uint64
	ttl time.Duration
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open opens (or creates) a plan cache rooted at dir. k0/k1 are the
// siphash key; callers should generate them once per deployment and
// keep them stable, since changing them invalidates every entry.
func Open(dir string, k0, k1 uint64, ttl time.Duration) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(noopLogger{})
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("plancache: opening badger store: %w", err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("plancache: building zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("plancache: building zstd decoder: %w", err)
	}
	return &Cache{db: db, k0: k0, k1: k1, ttl: ttl, enc: enc, dec: dec}, nil
}

// noopLogger silences badger's default stderr logging; a compiler
// pass's cache should not chatter on its own.
type noopLogger struct{}

func (noopLogger) Errorf(string, ...any)   {}
func (noopLogger) Warningf(string, ...any) {}
func (noopLogger) Infof(string, ...any)    {}
func (noopLogger) Debugf(string, ...any)   {}

// Close releases the underlying badger store.
func (c *Cache) Close() error {
	c.dec.Close()
	return c.db.Close()
}

// key folds the siphash of queryText together with the schema's
// fingerprint so that any schema change changes every cache key that
// depends on it.
func (c *Cache) key(queryText string, fp schema.Fingerprint) []byte {
	h := siphash.Hash(c.k0, c.k1, []byte(queryText))
	buf := make([]byte, 8+len(fp))
	binary.BigEndian.PutUint64(buf, h)
	copy(buf[8:], fp[:])
	return buf
}

// Get looks up queryText against p's current schema fingerprint,
// returning the cached SelectQuery and true on a hit.
func (c *Cache) Get(p schema.Provider, queryText string) (*influxql.SelectQuery, bool, error) {
	fp, err := schema.FingerprintOf(p)
	if err != nil {
		return nil, false, err
	}
	key := c.key(queryText, fp)

	var raw []byte
	err = c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			raw = append([]byte(nil), v...)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("plancache: reading entry: %w", err)
	}

	decompressed, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		return nil, false, fmt.Errorf("plancache: decompressing entry: %w", err)
	}
	var q influxql.SelectQuery
	if err := gob.NewDecoder(bytes.NewReader(decompressed)).Decode(&q); err != nil {
		return nil, false, fmt.Errorf("plancache: decoding entry: %w", err)
	}
	return &q, true, nil
}

// Put stores q under queryText and p's current schema fingerprint.
func (c *Cache) Put(p schema.Provider, queryText string, q *influxql.SelectQuery) error {
	fp, err := schema.FingerprintOf(p)
	if err != nil {
		return err
	}
	key := c.key(queryText, fp)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(q); err != nil {
		return fmt.Errorf("plancache: encoding entry: %w", err)
	}
	compressed := c.enc.EncodeAll(buf.Bytes(), nil)

	return c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(key, compressed)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
}
