package main

import (
	"io/ioutil"
	"log"
	"os"

	"github.com/bodgit/imgtogb"
	"github.com/bodgit/imgtogb/batch"
	"github.com/bodgit/imgtogb/cache"
	"github.com/bodgit/imgtogb/export"
	"github.com/bodgit/imgtogb/rle"
	"github.com/urfave/cli/v2"
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func openCache(c *cli.Context, logger *log.Logger) (*cache.Cache, error) {
	if c.String("cache") == "" {
		return nil, nil
	}
	return cache.Open(c.String("cache"), logger)
}

func convert(c *cli.Context, opts imgtogb.Options, reference string) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	logger := newLogger(c)

	db, err := openCache(c, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}
	if db != nil {
		defer db.Close()
	}

	job := batch.Job{
		Input:     c.Args().Get(0),
		Output:    c.Args().Get(1),
		Source:    c.String("cfile"),
		Reference: reference,
	}

	conv, err := imgtogb.New(opts, logger)
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	var r *imgtogb.Result
	if db != nil {
		r, err = db.Convert(conv, job.Input, job.Reference)
	} else {
		r, err = conv.ConvertFile(job.Input, job.Reference)
	}
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if err := export.WriteFiles(job.Output, job.Source, r); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func transform(c *cli.Context, f func([]byte) ([]byte, error)) error {
	if c.NArg() < 2 {
		cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
	}

	b, err := ioutil.ReadFile(c.Args().Get(0))
	if err != nil {
		return cli.NewExitError(err, 1)
	}

	if b, err = f(b); err != nil {
		return cli.NewExitError(err, 1)
	}

	newLogger(c).Printf("Wrote %d bytes\n", len(b))

	if err := ioutil.WriteFile(c.Args().Get(1), b, 0644); err != nil {
		return cli.NewExitError(err, 1)
	}

	return nil
}

func main() {
	app := cli.NewApp()

	app.Name = "imgtogb"
	app.Usage = "Game Boy tile and palette conversion utility"
	app.Version = "1.0.0"

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "cache",
			EnvVars: []string{"IMGTOGB_CACHE"},
			Usage:   "path to conversion cache database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	cfileFlag := &cli.StringFlag{
		Name:    "cfile",
		Aliases: []string{"C"},
		Usage:   "write data to C source `FILE` instead of in header",
	}
	rleFlag := &cli.BoolFlag{
		Name:    "rle",
		Aliases: []string{"r"},
		Usage:   "compress data using RLE",
	}
	quantizeFlag := &cli.IntFlag{
		Name:  "quantize",
		Usage: "reduce images that are not indexed to `N` colors",
	}

	app.Commands = []*cli.Command{
		{
			Name:        "gb",
			Usage:       "Convert an image to Game Boy tiles",
			Description: "",
			ArgsUsage:   "INFILE OUTFILE",
			Flags: []cli.Flag{
				cfileFlag,
				rleFlag,
				quantizeFlag,
				&cli.BoolFlag{
					Name:    "color",
					Aliases: []string{"c"},
					Usage:   "Game Boy Color mode",
				},
				&cli.StringFlag{
					Name:    "dx",
					Aliases: []string{"d"},
					Usage:   "color reference `IMAGE`, produces DMG and CGB compatible data",
				},
				&cli.BoolFlag{
					Name:    "map",
					Aliases: []string{"m"},
					Usage:   "produce tile map",
				},
				&cli.BoolFlag{
					Name:  "s8x16",
					Usage: "enable 8x16 sprite mode",
				},
				&cli.IntFlag{
					Name:    "offset",
					Aliases: []string{"O"},
					Usage:   "tile map offset",
				},
				&cli.IntFlag{
					Name:    "palette_offset",
					Aliases: []string{"P"},
					Usage:   "palette index offset",
				},
			},
			Action: func(c *cli.Context) error {
				opts := imgtogb.Options{
					Tall:          c.Bool("s8x16"),
					RLE:           c.Bool("rle"),
					TileOffset:    c.Int("offset"),
					PaletteOffset: c.Int("palette_offset"),
					Quantize:      c.Int("quantize"),
				}
				if c.Bool("map") {
					opts.Layout = imgtogb.Map
				}
				switch {
				case c.Bool("color"):
					opts.Colors = imgtogb.Color
				case c.String("dx") != "":
					opts.Colors = imgtogb.Dual
				}
				return convert(c, opts, c.String("dx"))
			},
		},
		{
			Name:        "sgb",
			Usage:       "Convert an image to a Super Game Boy border",
			Description: "",
			ArgsUsage:   "INFILE OUTFILE",
			Flags: []cli.Flag{
				cfileFlag,
				quantizeFlag,
			},
			Action: func(c *cli.Context) error {
				return convert(c, imgtogb.Options{
					Layout:   imgtogb.Border,
					Colors:   imgtogb.Color,
					Quantize: c.Int("quantize"),
				}, "")
			},
		},
		{
			Name:        "batch",
			Usage:       "Convert every image listed in a YAML job file",
			Description: "",
			ArgsUsage:   "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				cfg, err := batch.LoadConfig(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}

				db, err := openCache(c, logger)
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				if db != nil {
					defer db.Close()
				}

				if err := batch.New(db, logger).Run(cfg); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "rle",
			Usage:       "Run-length encode a file",
			Description: "",
			ArgsUsage:   "INFILE OUTFILE",
			Action: func(c *cli.Context) error {
				return transform(c, func(b []byte) ([]byte, error) {
					return rle.Uint8s(rle.Compress(rle.Ints(b)))
				})
			},
		},
		{
			Name:        "unrle",
			Usage:       "Decode a run-length encoded file",
			Description: "",
			ArgsUsage:   "INFILE OUTFILE",
			Action: func(c *cli.Context) error {
				return transform(c, func(b []byte) ([]byte, error) {
					out, err := rle.Decompress(rle.Ints(b))
					if err != nil {
						return nil, err
					}
					return rle.Uint8s(out)
				})
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
