package utils

import "sync"

// ParallelMap 以最多 workers 个协程并发执行 fn，结果顺序与输入一致。
// fn 之间不得共享可变状态。
func ParallelMap[T any, R any](input []T, workers int, fn func(T) R) []R {
	n := len(input)
	results := make([]R, n)
	if n == 0 {
		return results
	}
	if workers <= 1 || n == 1 {
		for i, v := range input {
			results[i] = fn(v)
		}
		return results
	}
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	idxCh := make(chan int, n)
	for i := 0; i < n; i++ {
		idxCh <- i
	}
	close(idxCh)

	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range idxCh {
				results[i] = fn(input[i])
			}
		}()
	}
	wg.Wait()
	return results
}
