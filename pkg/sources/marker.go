package sources

import (
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotmod/pkg/codec"
)

// marker records that a slot was realized successfully from a spec. A
// slot without a matching marker is refetched.
type marker struct {
	Key       string `cbor:"key"`
	Digest    string `cbor:"digest"`
	FetchedAt int64  `cbor:"fetched_at"`
}

func (r *Resolver) readMarker(slot string) (*marker, bool) {
	data, err := r.fs.ReadFile(r.paths.MarkerPath(slot))
	if err != nil {
		return nil, false
	}
	var m marker
	if err := codec.Unmarshal(data, &m); err != nil {
		r.logger.Debug().Err(err).Str("slot", slot).Msg("ignoring unreadable marker")
		return nil, false
	}
	return &m, true
}

func (r *Resolver) writeMarker(slot, key, digest string) error {
	data, err := codec.Marshal(marker{Key: key, Digest: digest, FetchedAt: time.Now().Unix()})
	if err != nil {
		return err
	}
	path := r.paths.MarkerPath(slot)
	if err := r.fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return r.fs.WriteFile(path, data, 0644)
}

func (r *Resolver) removeMarker(slot string) {
	_ = r.fs.Remove(r.paths.MarkerPath(slot))
}
