package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/gadai/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *MemoryCache {
	t.Helper()
	c := NewMemoryCache(time.Minute)
	t.Cleanup(c.Close)
	return c
}

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value interface{}
		want  string
	}{
		{
			name:  "string",
			key:   "k1",
			value: "mata",
			want:  `"mata"`,
		},
		{
			name: "rule set",
			key:  "mata:rules:T1",
			value: []domain.PawnTermRule{
				{TenantID: "T1", ItemTypeID: "gold", LoanLimitMin: domain.Number(100)},
			},
			want: `[{"ptId":"T1","itemTypeId":"gold","loanLimitMin":100,"loanLimitMax":null,"tenorDefault":null,"interestRate":null,"adminFee":null}]`,
		},
		{
			name:  "empty slice",
			key:   "mata:rules:all",
			value: []domain.PawnTermRule{},
			want:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, cache.Set(ctx, tt.key, tt.value, time.Minute))

			got, err := cache.Get(ctx, tt.key)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestMemoryCache_RuleSetRoundTrip(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	name := "Gold Priority"
	rules := []domain.PawnTermRule{{
		ID:           "r1",
		TenantID:     "T1",
		ItemTypeID:   "gold",
		LoanLimitMin: domain.NumericString("1000000.00"),
		RuleName:     &name,
	}}
	require.NoError(t, cache.Set(ctx, "rules", rules, time.Minute))

	data, err := cache.Get(ctx, "rules")
	require.NoError(t, err)

	var decoded []domain.PawnTermRule
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, 1_000_000.0, decoded[0].LoanLimitMin.OrZero())
	assert.False(t, decoded[0].LoanLimitMax.IsSet())
	require.NotNil(t, decoded[0].RuleName)
	assert.Equal(t, name, *decoded[0].RuleName)
}

func TestMemoryCache_GetReturnsCopy(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", "abc", time.Minute))
	first, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	first[1] = 'z'

	second, err := cache.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, `"abc"`, string(second))
}

func TestMemoryCache_Set_Unmarshalable(t *testing.T) {
	cache := newTestCache(t)
	err := cache.Set(context.Background(), "bad", make(chan int), time.Minute)
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Size())
}

func TestMemoryCache_Expiry(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "short", "v", time.Millisecond))
	time.Sleep(10 * time.Millisecond)

	_, err := cache.Get(ctx, "short")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	exists, err := cache.Exists(ctx, "short")
	require.NoError(t, err)
	assert.False(t, exists)

	// still stored until swept
	assert.Equal(t, 1, cache.Size())
	cache.removeExpired(time.Now())
	assert.Equal(t, 0, cache.Size())
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := newTestCache(t)
	_, err := cache.Get(context.Background(), "non-existent-key")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_DeleteAndExists(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	exists, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, cache.Set(ctx, "k", 1, time.Minute))
	exists, _ = cache.Exists(ctx, "k")
	assert.True(t, exists)

	require.NoError(t, cache.Delete(ctx, "k"))
	exists, _ = cache.Exists(ctx, "k")
	assert.False(t, exists)

	// deleting a missing key is fine
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestMemoryCache_Clear(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, cache.Set(ctx, key, key, time.Minute))
	}
	assert.Equal(t, 3, cache.Size())

	cache.Clear()
	assert.Equal(t, 0, cache.Size())
	_, err := cache.Get(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	cache := NewMemoryCache(0)
	assert.NotPanics(t, func() {
		cache.Close()
		cache.Close()
	})
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := string(rune('a' + id))
			assert.NoError(t, cache.Set(ctx, key, id, time.Minute))
			_, err := cache.Get(ctx, key)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 10, cache.Size())
}
