package sorter

import "errors"

var (
	// ErrNotSorted is returned when a permutation is requested before any
	// sort has completed since the last SetSize or Release.
	ErrNotSorted = errors.New("sorter: no sorted permutation available")

	// ErrUnsupportedWidth is returned by the type specific entry points for
	// element widths other than 1, 2 or 4 bytes.
	ErrUnsupportedWidth = errors.New("sorter: unsupported element width")

	// ErrSizeMismatch is returned by Refine when the held permutation and
	// the input have different lengths.
	ErrSizeMismatch = errors.New("sorter: input length does not match held permutation")
)
