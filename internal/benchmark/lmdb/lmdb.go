// Package lmdb adapts an LMDB environment to the benchmark driver. The
// environment is opened for write speed only: no syncs, no locks, a
// writable shared map and no page pre-initialisation.
package lmdb

import (
	"encoding/binary"
	"errors"
	"os"
	"runtime"

	mdb "github.com/PowerDNS/lmdb-go/lmdb"

	"github.com/moguls753/lmdb-write-benchmark/internal/benchmark"
)

// Env owns the LMDB environment and its single integer-keyed table.
type Env struct {
	env  *mdb.Env
	dbi  mdb.DBI
	path string
}

// Flags translates the tuning options into environment flags. NoSubdir is
// always set: the database is a single file.
func Flags(t benchmark.Tuning) uint {
	flags := uint(mdb.NoSubdir)
	if t.NoMetaSync {
		flags |= mdb.NoMetaSync
	}
	if t.NoSync {
		flags |= mdb.NoSync
	}
	if t.NoReadahead {
		flags |= mdb.NoReadahead
	}
	if t.WriteMap {
		flags |= mdb.WriteMap
	}
	if t.NoMemInit {
		flags |= mdb.NoMemInit
	}
	if t.NoLock {
		flags |= mdb.NoLock
	}
	return flags
}

// Open creates the environment at cfg.Path and its root table. A failure
// is returned as a *benchmark.Error of kind ErrEngineOpen naming the step.
// Nothing is cleaned up on failure.
func Open(cfg benchmark.Config) (*Env, error) {
	env, err := mdb.NewEnv()
	if err != nil {
		return nil, stageError(benchmark.ErrEngineOpen, "env_create", err)
	}
	if err := env.SetMapSize(cfg.MapSize); err != nil {
		return nil, stageError(benchmark.ErrEngineOpen, "set_mapsize", err)
	}
	if err := env.Open(cfg.Path, Flags(cfg.Tuning), os.FileMode(0o777)); err != nil {
		return nil, stageError(benchmark.ErrEngineOpen, "env_open", err)
	}

	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	txn, err := env.BeginTxn(nil, 0)
	if err != nil {
		return nil, stageError(benchmark.ErrEngineOpen, "txn_begin", err)
	}
	dbi, err := txn.OpenRoot(mdb.Create | mdb.IntegerKey)
	if err != nil {
		txn.Abort()
		return nil, stageError(benchmark.ErrEngineOpen, "dbi_open", err)
	}
	if err := txn.Commit(); err != nil {
		return nil, stageError(benchmark.ErrEngineOpen, "txn_commit", err)
	}

	return &Env{env: env, dbi: dbi, path: cfg.Path}, nil
}

// Begin starts a write transaction. The calling goroutine stays locked to
// its OS thread until the transaction is committed or aborted.
func (e *Env) Begin() (benchmark.Txn, error) {
	runtime.LockOSThread()
	txn, err := e.env.BeginTxn(nil, 0)
	if err != nil {
		runtime.UnlockOSThread()
		return nil, stageError(benchmark.ErrEngineTxn, "txn_begin", err)
	}
	return &Txn{txn: txn, dbi: e.dbi}, nil
}

// Entries returns the number of records in the table.
func (e *Env) Entries() (uint64, error) {
	var entries uint64
	err := e.env.View(func(txn *mdb.Txn) error {
		stat, err := txn.Stat(e.dbi)
		if err != nil {
			return err
		}
		entries = stat.Entries
		return nil
	})
	return entries, err
}

// Path is the database file.
func (e *Env) Path() string { return e.path }

// Close releases the table handle and the environment.
func (e *Env) Close() error {
	e.env.CloseDBI(e.dbi)
	return e.env.Close()
}

// Txn is one write transaction. It owns the key encoding buffer.
type Txn struct {
	txn *mdb.Txn
	dbi mdb.DBI
	key [8]byte
}

// Put stores value under key. Keys are native-endian so the table can
// compare them as integers.
func (t *Txn) Put(key uint64, value []byte) error {
	binary.NativeEndian.PutUint64(t.key[:], key)
	if err := t.txn.Put(t.dbi, t.key[:], value, 0); err != nil {
		return stageError(benchmark.ErrEngineTxn, "put", err)
	}
	return nil
}

// Commit makes the batch visible. LMDB releases the transaction whether or
// not the commit succeeds.
func (t *Txn) Commit() error {
	defer runtime.UnlockOSThread()
	if err := t.txn.Commit(); err != nil {
		return stageError(benchmark.ErrEngineCommit, "txn_commit", err)
	}
	return nil
}

// Abort discards the batch.
func (t *Txn) Abort() {
	t.txn.Abort()
	runtime.UnlockOSThread()
}

func stageError(kind error, stage string, err error) *benchmark.Error {
	e := benchmark.NewError(kind, stage, err)
	e.Code = Code(err)
	return e
}

// Code extracts the LMDB or system error number from err.
func Code(err error) int {
	var op *mdb.OpError
	if errors.As(err, &op) {
		err = op.Errno
	}
	var errno mdb.Errno
	if errors.As(err, &errno) {
		return int(errno)
	}
	return benchmark.ErrnoCode(err)
}
