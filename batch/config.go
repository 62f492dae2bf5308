/*
Package batch converts many images described by a YAML job file.

Each image is an independent conversion so jobs are spread over a pool of
workers; the first failure stops the batch.
*/
package batch

import (
	"errors"
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/bodgit/imgtogb"
	"gopkg.in/yaml.v3"
)

// DefaultWorkers is used when the job file does not set a worker count
const DefaultWorkers = 4

// Job describes the conversion of one image.
type Job struct {
	Input         string `yaml:"input"`
	Output        string `yaml:"output"`
	Source        string `yaml:"source,omitempty"`
	Reference     string `yaml:"reference,omitempty"`
	Layout        string `yaml:"layout,omitempty"`
	Colors        string `yaml:"colors,omitempty"`
	Tall          bool   `yaml:"tall,omitempty"`
	RLE           bool   `yaml:"rle,omitempty"`
	Offset        int    `yaml:"offset,omitempty"`
	PaletteOffset int    `yaml:"palette_offset,omitempty"`
	Quantize      int    `yaml:"quantize,omitempty"`
}

// Options returns the conversion options for the job.
func (j Job) Options() (imgtogb.Options, error) {
	opts := imgtogb.Options{
		Tall:          j.Tall,
		RLE:           j.RLE,
		TileOffset:    j.Offset,
		PaletteOffset: j.PaletteOffset,
		Quantize:      j.Quantize,
	}

	var err error
	if j.Layout != "" {
		if opts.Layout, err = imgtogb.ParseLayout(j.Layout); err != nil {
			return opts, err
		}
	}
	if j.Colors != "" {
		if opts.Colors, err = imgtogb.ParseColors(j.Colors); err != nil {
			return opts, err
		}
	}

	return opts, opts.Validate()
}

// Config is the contents of a job file.
type Config struct {
	Workers int   `yaml:"workers,omitempty"`
	Jobs    []Job `yaml:"jobs"`
}

var errNoInput = errors.New("batch: job needs an input and an output")

// LoadConfig reads a job file. Relative paths in jobs are resolved against
// the directory containing the file.
func LoadConfig(file string) (*Config, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, err
	}

	cfg := new(Config)
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}

	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}

	dir := filepath.Dir(file)
	for i := range cfg.Jobs {
		j := &cfg.Jobs[i]
		if j.Input == "" || j.Output == "" {
			return nil, fmt.Errorf("%s: job %d: %w", file, i+1, errNoInput)
		}
		if _, err := j.Options(); err != nil {
			return nil, fmt.Errorf("%s: job %d: %w", file, i+1, err)
		}
		for _, p := range []*string{&j.Input, &j.Output, &j.Source, &j.Reference} {
			if *p != "" && !filepath.IsAbs(*p) {
				*p = filepath.Join(dir, filepath.Clean(*p))
			}
		}
	}

	return cfg, nil
}
