package batch

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"sync"

	"github.com/bodgit/imgtogb"
	"github.com/bodgit/imgtogb/cache"
	"github.com/bodgit/imgtogb/export"
)

// Runner runs the jobs of a Config.
type Runner struct {
	cache  *cache.Cache
	logger *log.Logger
}

// New returns a Runner. The cache may be nil.
func New(c *cache.Cache, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(ioutil.Discard, "", 0)
	}
	return &Runner{
		cache:  c,
		logger: logger,
	}
}

func (r *Runner) produceJobs(ctx context.Context, jobs []Job) (<-chan Job, <-chan error, error) {
	out := make(chan Job)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		for _, j := range jobs {
			select {
			case out <- j:
			case <-ctx.Done():
				errc <- errors.New("batch cancelled")
				return
			}
		}
	}()
	return out, errc, nil
}

// Job converts a single image and writes the output files.
func (r *Runner) Job(j Job) error {
	opts, err := j.Options()
	if err != nil {
		return err
	}

	conv, err := imgtogb.New(opts, r.logger)
	if err != nil {
		return err
	}

	var result *imgtogb.Result
	if r.cache != nil {
		result, err = r.cache.Convert(conv, j.Input, j.Reference)
	} else {
		result, err = conv.ConvertFile(j.Input, j.Reference)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", j.Input, err)
	}

	r.logger.Printf("Writing \"%s\"\n", j.Output)

	return export.WriteFiles(j.Output, j.Source, result)
}

// jobWorker converts jobs from in until it is drained. Once ctx is
// cancelled no further job is started.
func (r *Runner) jobWorker(ctx context.Context, in <-chan Job) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for j := range in {
			if err := ctx.Err(); err != nil {
				errc <- err
				return
			}
			if err := r.Job(j); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error reported by any stage, or nil
// once every stage has finished.
func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

// mergeErrors fans the error channels of the producer and the workers into
// one, closed when all of them are.
func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			defer wg.Done()
			for err := range c {
				out <- err
			}
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Run converts every job in cfg using cfg.Workers workers.
func (r *Runner) Run(cfg *Config) error {
	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	jobs, errc, err := r.produceJobs(ctx, cfg.Jobs)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	for i := 0; i < workers; i++ {
		errc, err := r.jobWorker(ctx, jobs)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
