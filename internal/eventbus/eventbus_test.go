package eventbus

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type pingEvent struct{ N int }
type otherEvent struct{}

func TestSubscribePublish(t *testing.T) {
	Use(New())
	defer Use(nil)

	var got []int
	Subscribe(func(ctx context.Context, e pingEvent) { got = append(got, e.N) })
	Subscribe(func(ctx context.Context, e pingEvent) { got = append(got, e.N*10) })

	Publish(context.Background(), pingEvent{N: 1})
	require.Equal(t, []int{1, 10}, got)
}

func TestPublish_OnlyMatchingType(t *testing.T) {
	Use(New())
	defer Use(nil)

	calls := 0
	Subscribe(func(ctx context.Context, e pingEvent) { calls++ })

	Publish(context.Background(), otherEvent{})
	require.Equal(t, 0, calls)

	Publish(context.Background(), pingEvent{})
	require.Equal(t, 1, calls)
}

func TestPublish_WithoutBusIsNoop(t *testing.T) {
	Use(nil)
	Publish(context.Background(), pingEvent{N: 1})
	Subscribe(func(ctx context.Context, e pingEvent) {})
}

func TestConcurrentPublish(t *testing.T) {
	Use(New())
	defer Use(nil)

	var mu sync.Mutex
	count := 0
	Subscribe(func(ctx context.Context, e pingEvent) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				Publish(context.Background(), pingEvent{})
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 800, count)
}
