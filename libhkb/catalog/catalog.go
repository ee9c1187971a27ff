package catalog

import (
	"runtime"
	"sync"

	"github.com/dgraph-io/badger/v3"
	"github.com/gogo/protobuf/proto"
	"github.com/hkb3d/gohkb/gohkb"
	"github.com/pkg/errors"
)

/***

Catalog database format:

	gCatalogStateKey                         => major (varint), minor (varint), NumExpansions (varint)

	kExpansionPrefix, den (varint), rem (varint)
		=> len(Prefix) (varint), Prefix bits (raw bytes), len(Period) (varint), Period bits (raw bytes)

Bits are packed MSB first.  Entries are pure derived data: a catalog can be deleted at any time.

***/

const (
	kMajorVers = 2024
	kMinorVers = 1

	kExpansionPrefix = 'F'
)

var (
	gCatalogStateKey = []byte{0x00, 0x00, 0x01}
)

// Opts specifies params for opening a Catalog.
type Opts struct {

	// DbPathName is the badger directory.  If empty, the catalog is memory resident.
	DbPathName string
	ReadOnly   bool
}

// Catalog is a badger-backed store of fraction expansions and implements gohkb.ExpansionStore.
type Catalog struct {
	readOnly bool

	// mu guards state and serializes SaveExpansion so an entry is counted once.
	mu         sync.Mutex
	stateDirty bool
	state      catalogState
	db         *badger.DB
}

type catalogState struct {
	MajorVers     uint64
	MinorVers     uint64
	NumExpansions uint64
}

func Open(opts Opts) (*Catalog, error) {
	cat := &Catalog{
		readOnly: opts.ReadOnly,
	}

	dbOpts := badger.DefaultOptions(opts.DbPathName)
	dbOpts.ReadOnly = opts.ReadOnly
	dbOpts.DetectConflicts = false
	dbOpts.Logger = nil
	dbOpts.MetricsEnabled = false

	// Badger for windows currently does not support read-only mode
	if runtime.GOOS == "windows" {
		dbOpts.ReadOnly = false
	}

	if len(opts.DbPathName) == 0 {
		if opts.ReadOnly {
			return nil, errors.Wrap(gohkb.ErrBadConfig, "DbPathName must be specified for a read-only catalog")
		}
		dbOpts.InMemory = true
	}

	var err error
	cat.db, err = badger.Open(dbOpts)
	if err != nil {
		return nil, errors.Wrapf(err, "opening catalog %q", opts.DbPathName)
	}

	err = cat.loadState()
	if err == badger.ErrKeyNotFound {
		err = nil
		cat.stateDirty = true
		cat.state = catalogState{
			MajorVers: kMajorVers,
			MinorVers: kMinorVers,
		}
	}
	if err == nil && (cat.state.MajorVers != kMajorVers || cat.state.MinorVers != kMinorVers) {
		err = errors.Errorf("catalog version %d.%d is incompatible", cat.state.MajorVers, cat.state.MinorVers)
	}
	if err != nil {
		cat.Close()
		return nil, err
	}

	return cat, nil
}

func (cat *Catalog) IsReadOnly() bool {
	return cat.readOnly
}

// NumExpansions returns the number of expansions ever saved to this catalog.
func (cat *Catalog) NumExpansions() uint64 {
	cat.mu.Lock()
	defer cat.mu.Unlock()
	return cat.state.NumExpansions
}

func (cat *Catalog) LoadExpansion(rem, den int64) (gohkb.Expansion, bool) {
	var exp gohkb.Expansion
	err := cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(expansionKey(rem, den))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return unmarshalExpansion(val, &exp)
		})
	})
	return exp, err == nil
}

func (cat *Catalog) SaveExpansion(rem, den int64, exp gohkb.Expansion) error {
	if cat.readOnly {
		return errors.Wrap(gohkb.ErrBadConfig, "catalog is in read-only mode")
	}

	val, err := marshalExpansion(exp)
	if err != nil {
		return err
	}

	key := expansionKey(rem, den)
	added := false

	cat.mu.Lock()
	defer cat.mu.Unlock()

	err = cat.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return nil
		} else if err != badger.ErrKeyNotFound {
			return err
		}
		added = true
		return txn.Set(key, val)
	})
	if err != nil {
		return errors.Wrapf(err, "saving %d/%d", rem, den)
	}

	if added {
		cat.state.NumExpansions++
		cat.stateDirty = true
	}
	return nil
}

func (cat *Catalog) loadState() error {
	return cat.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(gCatalogStateKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return cat.state.Unmarshal(val)
		})
	})
}

// flushState writes the state if it changed.  The caller holds cat.mu.
func (cat *Catalog) flushState() error {
	if !cat.stateDirty || cat.readOnly || cat.db == nil {
		return nil
	}
	err := cat.db.Update(func(txn *badger.Txn) error {
		return txn.Set(gCatalogStateKey, cat.state.Marshal())
	})
	if err == nil {
		cat.stateDirty = false
	}
	return err
}

func (cat *Catalog) Close() error {
	cat.mu.Lock()
	defer cat.mu.Unlock()

	err := cat.flushState()
	if cat.db != nil {
		if closeErr := cat.db.Close(); err == nil {
			err = closeErr
		}
		cat.db = nil
	}
	return err
}

func (state *catalogState) Marshal() []byte {
	buf := proto.NewBuffer(make([]byte, 0, 16))
	buf.EncodeVarint(state.MajorVers)
	buf.EncodeVarint(state.MinorVers)
	buf.EncodeVarint(state.NumExpansions)
	return buf.Bytes()
}

func (state *catalogState) Unmarshal(val []byte) error {
	buf := proto.NewBuffer(val)
	var err error
	for _, field := range []*uint64{&state.MajorVers, &state.MinorVers, &state.NumExpansions} {
		if *field, err = buf.DecodeVarint(); err != nil {
			return errors.Wrap(err, "bad catalog state")
		}
	}
	return nil
}

func expansionKey(rem, den int64) []byte {
	buf := proto.NewBuffer(append(make([]byte, 0, 12), kExpansionPrefix))
	buf.EncodeVarint(uint64(den))
	buf.EncodeVarint(uint64(rem))
	return buf.Bytes()
}

func marshalExpansion(exp gohkb.Expansion) ([]byte, error) {
	buf := proto.NewBuffer(nil)
	for _, bits := range [][]bool{exp.Prefix, exp.Period} {
		if err := buf.EncodeVarint(uint64(len(bits))); err != nil {
			return nil, err
		}
		if err := buf.EncodeRawBytes(packBits(bits)); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func unmarshalExpansion(val []byte, exp *gohkb.Expansion) error {
	buf := proto.NewBuffer(val)
	for _, bits := range []*[]bool{&exp.Prefix, &exp.Period} {
		n, err := buf.DecodeVarint()
		if err != nil {
			return errors.Wrap(err, "bad expansion length")
		}
		packed, err := buf.DecodeRawBytes(false)
		if err != nil {
			return errors.Wrap(err, "bad expansion bits")
		}
		if uint64(len(packed))*8 < n {
			return errors.Errorf("expansion has %d bits but %d bytes", n, len(packed))
		}
		*bits = unpackBits(packed, int(n))
	}
	return nil
}

func packBits(bits []bool) []byte {
	packed := make([]byte, (len(bits)+7)/8)
	for i, bit := range bits {
		if bit {
			packed[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return packed
}

func unpackBits(packed []byte, n int) []bool {
	bits := make([]bool, n)
	for i := range bits {
		bits[i] = packed[i>>3]&(0x80>>(i&7)) != 0
	}
	return bits
}
