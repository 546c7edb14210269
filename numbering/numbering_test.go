package numbering_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xraph/folio/numbering"
)

type memCounter struct {
	mu     sync.Mutex
	prefix string
	next   int64
	fail   bool
}

func (c *memCounter) NextInvoiceNumber(context.Context) (string, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return "", 0, errors.New("store unavailable")
	}
	n := c.next
	c.next++
	return c.prefix, n, nil
}

func (c *memCounter) PeekInvoiceNumber(context.Context) (string, int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.prefix, c.next, nil
}

func TestFormat(t *testing.T) {
	tests := []struct {
		prefix string
		n      int64
		want   string
	}{
		{"INV", 1001, "INV1001"},
		{"INV", 7, "INV0007"},
		{"INV-", 42, "INV-0042"},
		{"INV", 10000, "INV10000"},
		{"", 1, "0001"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, numbering.Format(tt.prefix, tt.n))
	}
}

func TestSequentialNumbers(t *testing.T) {
	c := &memCounter{prefix: "INV", next: 1001}
	seq := numbering.New(c)
	ctx := context.Background()

	const n = 25
	for i := 0; i < n; i++ {
		got, err := seq.Next(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("INV%d", 1001+i), got)
	}

	peek, err := seq.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV1026", peek)
}

func TestConcurrentNumbersAreUnique(t *testing.T) {
	c := &memCounter{prefix: "INV", next: 1001}
	seq := numbering.New(c)

	const workers, each = 8, 50
	var (
		mu   sync.Mutex
		seen = make(map[string]bool)
		wg   sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				num, err := seq.Next(context.Background())
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				seen[num] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*each)
	for i := int64(0); i < workers*each; i++ {
		assert.True(t, seen[numbering.Format("INV", 1001+i)], "gap at %d", 1001+i)
	}
}

func TestNextPropagatesStoreFailure(t *testing.T) {
	c := &memCounter{prefix: "INV", next: 1001, fail: true}
	_, err := numbering.New(c).Next(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
}

func TestNextUnusedSkipsTakenNumbers(t *testing.T) {
	c := &memCounter{prefix: "INV", next: 1001}
	seq := numbering.New(c)
	ctx := context.Background()

	taken := map[string]bool{"INV1001": true, "INV1002": true}
	inUse := func(_ context.Context, number string) (bool, error) { return taken[number], nil }

	got, err := seq.NextUnused(ctx, inUse)
	require.NoError(t, err)
	assert.Equal(t, "INV1003", got)

	next, err := seq.Peek(ctx)
	require.NoError(t, err)
	assert.Equal(t, "INV1004", next)
}

func TestNextUnusedPropagatesLookupErrors(t *testing.T) {
	seq := numbering.New(&memCounter{prefix: "INV", next: 1001})
	lookup := errors.New("lookup failed")

	_, err := seq.NextUnused(context.Background(), func(context.Context, string) (bool, error) {
		return false, lookup
	})
	assert.ErrorIs(t, err, lookup)
}
