package fuse

import (
	"runtime"
	"sync"
)

// workerPool bounds the concurrency of thumbnail fetches. Fixed worker
// count regardless of candidate count keeps downstream load on third-party
// image hosts bounded.
type workerPool struct {
	workers  int
	jobQueue chan func()
	wg       sync.WaitGroup
	once     sync.Once
}

func newWorkerPool(workers int) *workerPool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &workerPool{
		workers:  workers,
		jobQueue: make(chan func(), workers*2),
	}
}

// Start launches the workers. Idempotent.
func (wp *workerPool) Start() {
	wp.once.Do(func() {
		for i := 0; i < wp.workers; i++ {
			go wp.worker()
		}
	})
}

func (wp *workerPool) worker() {
	for job := range wp.jobQueue {
		job()
		wp.wg.Done()
	}
}

// Submit queues a job.
func (wp *workerPool) Submit(job func()) {
	wp.wg.Add(1)
	wp.jobQueue <- job
}

// Wait blocks until all submitted jobs have completed.
func (wp *workerPool) Wait() {
	wp.wg.Wait()
}

// Close shuts the pool down. No Submit may follow.
func (wp *workerPool) Close() {
	close(wp.jobQueue)
}
