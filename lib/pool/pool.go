// Package pool provides the ants-backed goroutine pool that every
// long-lived background task (shard loops, connection readers/workers,
// pub/sub fan-out hops) is submitted through, instead of raw `go`.
package pool

import (
	"runtime/debug"
	"strings"

	"github.com/panjf2000/ants"

	"github.com/lovelydayss/shardcache/log"
)

var pool = &ants.Pool{}
var err error

func init() {
	pool, err = ants.NewPool(50000, ants.WithPanicHandler(
		func(i interface{}) {
			stackInfo := strings.Replace(string(debug.Stack()), "\n", "", -1)
			log.Errorf("recover info: %v, stack info: %s", i, stackInfo)
		}))
	if err != nil {
		log.Fatalf("pool init failed: %s", err.Error())
	}
}

// Submit runs task on a pooled goroutine.
func Submit(task func()) {
	_ = pool.Submit(task)
}
