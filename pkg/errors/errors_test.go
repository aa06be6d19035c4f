package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "plain",
			err:  New(ErrPathConflict, "/home/me/.vimrc is already owned by module \"vim\""),
			want: `[PATH_CONFLICT] /home/me/.vimrc is already owned by module "vim"`,
		},
		{
			name: "formatted",
			err:  Newf(ErrConfiguration, "module %q imports unknown module %q", "desktop", "fonts"),
			want: `[CONFIGURATION] module "desktop" imports unknown module "fonts"`,
		},
		{
			name: "wrapped",
			err:  Wrap(fs.ErrPermission, ErrFilesystem, "failed to create /etc/motd"),
			want: "[FILESYSTEM] failed to create /etc/motd: permission denied",
		},
		{
			name: "wrapped formatted",
			err:  Wrapf(fmt.Errorf("connection refused"), ErrFetchFailure, "failed to fetch %s", "https://example.com/a"),
			want: "[FETCH_FAILURE] failed to fetch https://example.com/a: connection refused",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrFilesystem, "nothing"))
	assert.Nil(t, Wrapf(nil, ErrFilesystem, "nothing %d", 1))
}

func TestDetails(t *testing.T) {
	err := New(ErrHashMismatch, "slot does not match").
		WithDetail("slot", "/cache/anonymous/ab").
		WithDetails(map[string]interface{}{
			"expected": "00",
			"actual":   "ff",
		})

	assert.Equal(t, map[string]interface{}{
		"slot":     "/cache/anonymous/ab",
		"expected": "00",
		"actual":   "ff",
	}, GetErrorDetails(err))

	var bare DotmodError
	bare.WithDetail("path", "/x")
	assert.Equal(t, "/x", bare.Details["path"])

	assert.Nil(t, GetErrorDetails(errors.New("plain")))
}

func TestUnwrapAndIs(t *testing.T) {
	err := Wrap(fs.ErrNotExist, ErrFetchFailure, "static source is missing")

	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, errors.Is(err, New(ErrFetchFailure, "any message")))
	assert.False(t, errors.Is(err, New(ErrHashMismatch, "any message")))
	assert.False(t, err.Is(errors.New("plain")))
}

func TestIsErrorCode(t *testing.T) {
	inner := Newf(ErrUserResolution, "unknown user %q", "nobody-here")
	outer := Wrapf(inner, ErrConfiguration, "module %q", "dotfiles")
	foreign := fmt.Errorf("enable: %w", outer)

	assert.True(t, IsErrorCode(outer, ErrConfiguration))
	assert.True(t, IsErrorCode(outer, ErrUserResolution), "codes are found through wrapping")
	assert.True(t, IsErrorCode(foreign, ErrUserResolution))
	assert.False(t, IsErrorCode(outer, ErrPathExists))
	assert.False(t, IsErrorCode(errors.New("plain"), ErrConfiguration))
	assert.False(t, IsErrorCode(nil, ErrConfiguration))
}

func TestGetErrorCode(t *testing.T) {
	assert.Equal(t, ErrStateSave, GetErrorCode(New(ErrStateSave, "rename failed")))
	assert.Equal(t, ErrPathExists, GetErrorCode(fmt.Errorf("ctx: %w", New(ErrPathExists, "exists"))))
	assert.Equal(t, ErrUnknown, GetErrorCode(errors.New("plain")))
	assert.Equal(t, ErrUnknown, GetErrorCode(nil))
}

func TestAsExposesFields(t *testing.T) {
	err := fmt.Errorf("update vim: %w",
		New(ErrPathConflict, "conflict").WithDetail("owner", "nvim"))

	var dotmodErr *DotmodError
	require.True(t, errors.As(err, &dotmodErr))
	assert.Equal(t, ErrPathConflict, dotmodErr.Code)
	assert.Equal(t, "nvim", dotmodErr.Details["owner"])
}
