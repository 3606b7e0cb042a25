package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/assetboard-cli/internal/asset"
	"github.com/KaramelBytes/assetboard-cli/internal/filter"
	"github.com/KaramelBytes/assetboard-cli/internal/ingest"
)

func result() *ingest.Result {
	tb := asset.NewTable([]string{"Kph"}, []asset.Record{{asset.Text("A")}, {asset.Text("B")}})
	return &ingest.Result{
		Source: "r.xlsx",
		Table:  tb,
		Roles:  asset.NewRoleMap(map[asset.Role]string{asset.RoleUnit: "Kph"}),
	}
}

func TestStorePutGetDelete(t *testing.T) {
	s := NewStore(0)
	d, err := s.Put(result())
	require.NoError(t, err)
	assert.Len(t, d.ID, 36)
	assert.Equal(t, []string{"A", "B"}, d.Engine.Choices()[filter.FieldUnit])

	got, err := s.Get(d.ID)
	require.NoError(t, err)
	assert.Same(t, d, got)

	assert.True(t, s.Delete(d.ID))
	assert.False(t, s.Delete(d.ID))
	_, err = s.Get(d.ID)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = s.Put(nil)
	assert.Error(t, err)
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	old, err := s.Put(result())
	require.NoError(t, err)
	clock = clock.Add(45 * time.Second)
	fresh, err := s.Put(result())
	require.NoError(t, err)
	assert.Equal(t, []*Dataset{old, fresh}, s.List())

	clock = clock.Add(30 * time.Second)
	_, err = s.Get(old.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, []*Dataset{fresh}, s.List())
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, s.Len())
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(0)
	var wg sync.WaitGroup
	ids := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := s.Put(result())
			if err == nil {
				ids <- d.ID
			}
		}()
	}
	wg.Wait()
	close(ids)
	for id := range ids {
		d, err := s.Get(id)
		require.NoError(t, err)
		out := d.Engine.Apply(d.Result.Table, filter.Selection{filter.FieldUnit: filter.NewSet("A")})
		assert.Equal(t, 1, out.Len())
	}
	assert.Equal(t, 32, s.Len())
}
