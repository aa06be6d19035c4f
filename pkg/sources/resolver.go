package sources

import (
	stderrors "errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/dotmod/pkg/errors"
	"github.com/arthur-debert/dotmod/pkg/filesystem"
	"github.com/arthur-debert/dotmod/pkg/fingerprint"
	"github.com/arthur-debert/dotmod/pkg/logging"
	"github.com/arthur-debert/dotmod/pkg/paths"
	"github.com/arthur-debert/dotmod/pkg/types"
)

// Request asks for the content of one source in one slot
type Request struct {
	// Spec is nil for a static named source
	Spec *types.SourceSpec

	// Slot is the cache location the content lives in
	Slot string

	// Digest is the expected content digest, empty when unverified
	Digest string

	// Force realizes the spec even when the slot is current
	Force bool
}

// Resolver makes source content available in cache slots
type Resolver struct {
	fs       types.FS
	paths    paths.Paths
	expander *paths.Expander
	fetcher  Fetcher
	logger   zerolog.Logger
	fetches  int
}

// NewResolver creates a resolver
func NewResolver(fsys types.FS, p paths.Paths, expander *paths.Expander, fetcher Fetcher) *Resolver {
	return &Resolver{
		fs:       fsys,
		paths:    p,
		expander: expander,
		fetcher:  fetcher,
		logger:   logging.GetLogger("sources"),
	}
}

// Fetches returns how many times a spec was realized into a slot
func (r *Resolver) Fetches() int {
	return r.fetches
}

// Resolve returns the slot once it holds the requested content. Slots
// that are already current are returned without any fetch.
func (r *Resolver) Resolve(req Request) (string, error) {
	if req.Digest != "" {
		if _, err := fingerprint.ParseDigest(req.Digest); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfiguration, "invalid digest %q", req.Digest).
				WithDetail("slot", req.Slot)
		}
	}

	if req.Spec == nil {
		return r.resolveStatic(req)
	}

	if !req.Force && r.current(req) {
		r.logger.Debug().Str("slot", req.Slot).Msg("slot is current")
		return req.Slot, nil
	}

	if err := r.reset(req.Slot); err != nil {
		return "", err
	}

	r.logger.Info().Str("slot", req.Slot).Str("source", req.Spec.Describe()).Msg("realizing source")
	r.fetches++
	if err := r.realize(req.Spec, req.Slot); err != nil {
		_ = r.fs.RemoveAll(req.Slot)
		return "", err
	}

	actual, err := r.verify(req)
	if err != nil {
		return "", err
	}

	if err := r.writeMarker(req.Slot, req.Spec.Key(), actual.String()); err != nil {
		r.logger.Warn().Err(err).Str("slot", req.Slot).Msg("failed to write success marker, source will be refetched next time")
	}
	return req.Slot, nil
}

// resolveStatic checks a pre-provisioned slot; there is nothing to fetch
func (r *Resolver) resolveStatic(req Request) (string, error) {
	if _, err := r.fs.Lstat(req.Slot); err != nil {
		return "", errors.Wrapf(err, errors.ErrFetchFailure, "static source %s is missing", req.Slot).
			WithDetail("slot", req.Slot)
	}
	if _, err := r.verify(req); err != nil {
		return "", err
	}
	return req.Slot, nil
}

// current reports whether the slot holds content realized from this
// exact spec that still matches the expected digest
func (r *Resolver) current(req Request) bool {
	if _, err := r.fs.Lstat(req.Slot); err != nil {
		return false
	}
	m, ok := r.readMarker(req.Slot)
	if !ok || m.Key != req.Spec.Key() {
		return false
	}
	if req.Digest == "" {
		return true
	}
	matched, _, err := fingerprint.Matches(r.fs, req.Slot, req.Digest)
	return err == nil && matched
}

// reset clears the slot and its marker and makes sure the parent exists
func (r *Resolver) reset(slot string) error {
	r.removeMarker(slot)
	if err := r.fs.RemoveAll(slot); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to clear stale content at %s", slot).
			WithDetail("slot", slot)
	}
	if err := r.fs.MkdirAll(filepath.Dir(slot), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrFilesystem, "failed to create cache directory for %s", slot).
			WithDetail("slot", slot)
	}
	return nil
}

func (r *Resolver) realize(spec *types.SourceSpec, slot string) error {
	switch spec.Kind {
	case types.SourceText:
		if err := r.fs.WriteFile(slot, []byte(spec.Text), 0644); err != nil {
			return fetchFailure(err, spec, slot)
		}
		return nil

	case types.SourceSymlink:
		if err := r.fs.Symlink(spec.Target, slot); err != nil {
			return fetchFailure(err, spec, slot)
		}
		return nil

	case types.SourcePath:
		src, err := r.expander.Expand(spec.Path)
		if err != nil {
			return err
		}
		if err := filesystem.Copy(r.fs, src, slot, filesystem.CopyOptions{FollowRoot: true}); err != nil {
			return fetchFailure(err, spec, slot)
		}
		return nil

	case types.SourceURL:
		return r.download(spec, slot)

	default:
		return errors.Newf(errors.ErrConfiguration, "unknown source kind %s", spec.Kind).
			WithDetail("slot", slot)
	}
}

func (r *Resolver) download(spec *types.SourceSpec, slot string) error {
	if r.fetcher == nil {
		return errors.Newf(errors.ErrFetchFailure, "no fetcher configured for %s", spec.URL)
	}
	body, err := r.fetcher.Fetch(spec.URL)
	if err != nil {
		return fetchFailure(err, spec, slot)
	}
	defer func() {
		_ = body.Close()
	}()

	out, err := r.fs.OpenFile(slot, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return fetchFailure(err, spec, slot)
	}
	if _, err := io.Copy(out, body); err != nil {
		_ = out.Close()
		_ = r.fs.Remove(slot)
		return fetchFailure(err, spec, slot)
	}
	if err := out.Close(); err != nil {
		_ = r.fs.Remove(slot)
		return fetchFailure(err, spec, slot)
	}
	return nil
}

// verify digests the slot and compares it with the expected digest. The
// content is left in place on mismatch.
func (r *Resolver) verify(req Request) (fingerprint.Digest, error) {
	actual, err := fingerprint.Of(r.fs, req.Slot)
	if err != nil {
		code := errors.ErrFilesystem
		if stderrors.Is(err, fs.ErrNotExist) {
			code = errors.ErrFetchFailure
		}
		return fingerprint.Digest{}, errors.Wrapf(err, code, "failed to fingerprint %s", req.Slot).
			WithDetail("slot", req.Slot)
	}
	if req.Digest == "" {
		return actual, nil
	}

	expected, _ := fingerprint.ParseDigest(req.Digest)
	if actual != expected {
		return actual, errors.Newf(errors.ErrHashMismatch, "content of %s does not match the declared digest", req.Slot).
			WithDetail("slot", req.Slot).
			WithDetail("expected", expected.String()).
			WithDetail("actual", actual.String())
	}
	return actual, nil
}

func fetchFailure(err error, spec *types.SourceSpec, slot string) error {
	return errors.Wrapf(err, errors.ErrFetchFailure, "failed to realize %s", spec.Describe()).
		WithDetail("slot", slot)
}
