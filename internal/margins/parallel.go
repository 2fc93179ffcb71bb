package margins

import (
	"context"
	"runtime"
	"sync"

	"github.com/MeKo-Tech/pocrop/internal/layout"
)

// pageJob is a single page clustering job.
type pageJob struct {
	index int
	page  Page
}

// pageResult is the clustering result for the page at index.
type pageResult struct {
	index  int
	layout layout.PageLayout
}

// clusterPages clusters every page on a bounded worker pool and returns the
// layouts in page order. workers <= 0 uses runtime.NumCPU(); a single worker
// or a single page runs sequentially.
func clusterPages(
	ctx context.Context,
	clusterer *layout.Clusterer,
	pages []Page,
	workers int,
	progress ProgressCallback,
) ([]layout.PageLayout, error) {
	if progress == nil {
		progress = NoOpProgressCallback{}
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	progress.OnStart(len(pages))
	defer progress.OnComplete()

	if workers == 1 || len(pages) <= 1 {
		return clusterSequential(ctx, clusterer, pages, progress)
	}

	jobs := make(chan pageJob, len(pages))
	results := make(chan pageResult, len(pages))

	var wg sync.WaitGroup
	for range min(workers, len(pages)) {
		wg.Add(1)
		go clusterWorker(ctx, clusterer, jobs, results, &wg)
	}

	go func() {
		defer close(jobs)
		for i, page := range pages {
			select {
			case jobs <- pageJob{index: i, page: page}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]layout.PageLayout, len(pages))
	processed := 0
	for res := range results {
		ordered[res.index] = res.layout
		processed++
		progress.OnProgress(processed, len(pages))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ordered, nil
}

func clusterSequential(
	ctx context.Context,
	clusterer *layout.Clusterer,
	pages []Page,
	progress ProgressCallback,
) ([]layout.PageLayout, error) {
	out := make([]layout.PageLayout, 0, len(pages))
	for i, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out = append(out, clusterer.ClusterPage(page.Number, page.Fragments))
		progress.OnProgress(i+1, len(pages))
	}
	return out, nil
}

// clusterWorker clusters pages from the jobs channel.
func clusterWorker(
	ctx context.Context,
	clusterer *layout.Clusterer,
	jobs <-chan pageJob,
	results chan<- pageResult,
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-jobs:
			if !ok {
				return
			}

			res := pageResult{
				index:  job.index,
				layout: clusterer.ClusterPage(job.page.Number, job.page.Fragments),
			}

			select {
			case results <- res:
			case <-ctx.Done():
				return
			}

		case <-ctx.Done():
			return
		}
	}
}
