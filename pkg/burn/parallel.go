package burn

import (
	"runtime"
	"sync"
)

// LoadFilesParallel loads several GeoJSON files into one base table.
//
// Files are parsed by a pool of opts.Workers goroutines. Their features are
// merged in the order of paths, so the result is identical to loading the
// files one after another. Diagnostics from every file are concatenated in
// the same order and carry their source path. A file that cannot be read
// contributes no features and one diagnostic.
//
// Example:
//
//	opts := burn.DefaultLoadOptions()
//	opts.Progress = func(loaded, total int) {
//	    fmt.Printf("\rLoading: %d/%d", loaded, total)
//	}
//	table, diags := burn.LoadFilesParallel([]string{"2023.geojson", "2024.geojson"}, opts)
//	fmt.Printf("\n%d features, %d skipped\n", table.Len(), diags.Features())
func LoadFilesParallel(paths []string, opts LoadOptions) (*Table, Diagnostics) {
	if len(paths) == 0 {
		return buildTable(nil, opts)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type loadResult struct {
		index int
		res   sourceResult
	}

	jobs := make(chan int, len(paths))
	results := make(chan loadResult, len(paths))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				results <- loadResult{index: index, res: readSource(paths[index], opts)}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]sourceResult, len(paths))
	loaded := 0
	for r := range results {
		loaded++
		if opts.Progress != nil {
			opts.Progress(loaded, len(paths))
		}
		ordered[r.index] = r.res
	}

	return buildTable(ordered, opts)
}
