/*
Package imgtogb is a library for converting indexed images into Game Boy,
Game Boy Color and Super Game Boy tile data.

An image is split into 8 by 8 tiles which are packed into the hardware
layout. Depending on the options the tiles are also assigned hardware
palettes, deduplicated into a tile map and run-length encoded.
*/
package imgtogb

import (
	"io/ioutil"
	"log"
)

// Converter converts images according to a fixed set of Options. It holds
// no state between conversions and is safe for concurrent use.
type Converter struct {
	opts    Options
	profile profile
	logger  *log.Logger
}

// New returns a Converter after validating opts. A nil logger discards all
// output.
func New(opts Options, logger *log.Logger) (*Converter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Converter{
		opts:    opts,
		profile: opts.profile(),
		logger:  logger,
	}, nil
}

// Options returns the options the Converter was created with.
func (c *Converter) Options() Options {
	return c.opts
}
