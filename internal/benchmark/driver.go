package benchmark

import (
	"bytes"
	"io"
)

// FillByte is the constant every record value is filled with.
const FillByte = 0xa5

// Driver writes the configured volume as fixed-size batches, one transaction
// per batch.
type Driver struct {
	cfg   Config
	env   Env
	ctx   *Context
	value []byte
	draw  [8]byte
}

// NewDriver builds a driver. The record value buffer is allocated once here
// and reused for every put.
func NewDriver(cfg Config, env Env, ctx *Context) *Driver {
	return &Driver{
		cfg:   cfg,
		env:   env,
		ctx:   ctx,
		value: bytes.Repeat([]byte{FillByte}, cfg.RecordSize),
	}
}

// Value returns the record value buffer.
func (d *Driver) Value() []byte { return d.value }

// Run executes the benchmark. The first failure aborts the run: no further
// batch is attempted and no cumulative sample is reported.
func (d *Driver) Run() (*RunResult, error) {
	keys, err := NewKeyStream(d.ctx.Entropy)
	if err != nil {
		return nil, NewError(ErrEntropyRead, "key_origin", err)
	}
	d.ctx.Reporter.Start(keys.First())

	batches := d.cfg.Batches()
	result := &RunResult{FirstKey: keys.First()}
	tracker := NewTracker(d.cfg.RecordSize, keys.First(), d.ctx.Clock.Now())
	every := uint64(d.cfg.ReportEvery)

	for i := uint64(0); i < batches; i++ {
		if i > 0 && i%every == 0 {
			s := tracker.Periodic(keys.Current(), d.ctx.Clock.Now())
			s.Batch = i
			s.USS = d.sampleMemory()
			result.Samples = append(result.Samples, s)
			d.ctx.Reporter.Periodic(s)
		}

		if err := d.writeBatch(keys); err != nil {
			return nil, err
		}
		result.Batches++
	}

	final := tracker.Cumulative(keys.Current(), d.ctx.Clock.Now())
	final.Batch = result.Batches
	final.USS = d.sampleMemory()
	d.ctx.Reporter.Cumulative(final)

	result.LastKey = keys.Current()
	result.Records = keys.Count()
	result.Final = final
	return result, nil
}

func (d *Driver) writeBatch(keys *KeyStream) error {
	txn, err := d.env.Begin()
	if err != nil {
		return err
	}

	for j := 0; j < d.cfg.BatchSize; j++ {
		key := keys.Next()
		if err := d.drawEntropy(); err != nil {
			txn.Abort()
			return err
		}
		if err := txn.Put(key, d.value); err != nil {
			txn.Abort()
			return err
		}
	}

	return txn.Commit()
}

// drawEntropy reads one fixed-width random value per record. Unless
// RandomValues is set the draw is discarded and the constant value is
// written. The read happens either way so both modes pay the same per-record
// entropy cost.
func (d *Driver) drawEntropy() error {
	buf := d.draw[:]
	if d.cfg.RandomValues {
		buf = d.value
	}
	if _, err := io.ReadFull(d.ctx.Entropy, buf); err != nil {
		return NewError(ErrEntropyRead, "entropy_read", err)
	}
	return nil
}

func (d *Driver) sampleMemory() int64 {
	if d.ctx.Memory == nil {
		return -1
	}
	return d.ctx.Memory()
}
