package testutil

import (
	"fmt"
	"sync"
)

// SequentialIDs returns an id generator producing "prefix-0001",
// "prefix-0002" and so on. It replaces the engine's UUID generator in
// tests so run ids are stable across executions.
func SequentialIDs(prefix string) func() string {
	var (
		mu sync.Mutex
		n  int
	)
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%04d", prefix, n)
	}
}
