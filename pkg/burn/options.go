package burn

import (
	"runtime"

	"github.com/rs/zerolog"
)

// LoadOptions configures how feature collections become a Table.
type LoadOptions struct {
	// ValueField is the numeric attribute coerced to float64 at load time.
	// Default: "area"
	ValueField string

	// ValidateCoordinates rejects positions outside lon ±180 / lat ±90.
	// Default: true
	ValidateCoordinates bool

	// Index selects the candidate index of the returned table.
	// Default: IndexLinear
	Index IndexKind

	// H3Resolution, when between 1 and 15, adds an "h3_cell" attribute holding
	// the H3 cell of each feature's centroid. 0 disables it.
	H3Resolution int

	// Workers is the number of parallel loaders used by LoadFilesParallel.
	// If 0, defaults to runtime.NumCPU().
	Workers int

	// Progress is an optional callback called after each source is loaded.
	Progress func(loaded, total int)

	// Logger receives one warning per diagnostic. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// DefaultLoadOptions returns load options with sensible defaults.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		ValueField:          DefaultValueField,
		ValidateCoordinates: true,
		Index:               IndexLinear,
		Workers:             runtime.NumCPU(),
	}
}

func (o LoadOptions) logger() *zerolog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	nop := zerolog.Nop()
	return &nop
}
