package main

import (
	"errors"
	"fmt"
	"runtime"
	"sync"

	"osuparse/dotosu"
)

var errDecodePanic = errors.New("panic decoding")

type parseResult struct {
	Path    string
	Beatmap *dotosu.Beatmap
	Err     error
}

// parseAll decodes every path on up to workers goroutines. Results keep the
// order of paths; a panic in one decode becomes that entry's error.
func parseAll(dec *dotosu.Decoder, paths []string, workers int) []parseResult {
	results := make([]parseResult, len(paths))
	jobs := make(chan int)
	wg := sync.WaitGroup{}
	for n, nWorkers := 0, max(1, min(workers, len(paths))); n < nWorkers; n++ {
		wg.Add(1)
		Run(func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = decodeOne(dec, paths[i])
			}
		})
	}
	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
	return results
}

func decodeOne(dec *dotosu.Decoder, path string) (res parseResult) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res.Beatmap = nil
			res.Err = fmt.Errorf("%w %s: %v\n%s", errDecodePanic, path, r, stack())
		}
	}()
	res.Beatmap, res.Err = dec.DecodeFile(path)
	return res
}

// Run starts f on its own goroutine; a panic escaping f is fatal.
func Run(f func()) {
	go func() {
		defer Recover()
		f()
	}()
}

func Recover() {
	if r := recover(); r != nil {
		HandlePanic(r)
	}
}

func HandlePanic(p any) {
	logger.Error("panic", "value", fmt.Sprint(p), "stack", stack())
	exit(exitUsage)
}

func stack() string {
	buf := make([]byte, 100000)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}
