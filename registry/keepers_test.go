package registry

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidvatten/tidvatten/interfaces"
)

func TestKeepersRegistry_Empty(t *testing.T) {
	reg := NewKeepersRegistry()

	assert.Empty(t, reg.Read())
	assert.Equal(t, 0, reg.Len())
	assert.True(t, reg.UpdatedAt().IsZero())

	_, ok := reg.Get(7)
	assert.False(t, ok)
}

func TestKeepersRegistry_ReplaceDoesNotMerge(t *testing.T) {
	reg := NewKeepersRegistry()
	reg.Replace(interfaces.Keepers{
		1: {ID: 1, Username: "old"},
		2: {ID: 2, Username: "shared"},
	})

	next := interfaces.Keepers{
		2: {ID: 2, Username: "shared"},
		3: {ID: 3, Username: "new"},
	}
	reg.Replace(next)

	if diff := cmp.Diff(next, reg.Read()); diff != "" {
		t.Errorf("registry contents mismatch (-want +got):\n%s", diff)
	}
	_, ok := reg.Get(1)
	assert.False(t, ok)
	assert.False(t, reg.UpdatedAt().IsZero())
}

func TestKeepersRegistry_ReplaceCopiesInput(t *testing.T) {
	reg := NewKeepersRegistry()
	input := interfaces.Keepers{7: {ID: 7, Username: "alice"}}
	reg.Replace(input)

	input[8] = interfaces.Keeper{ID: 8, Username: "mallory"}
	delete(input, 7)

	keeper, ok := reg.Get(7)
	require.True(t, ok)
	assert.Equal(t, "alice", keeper.Username)
	assert.Equal(t, 1, reg.Len())
}

func TestKeepersRegistry_ReadIsPointInTime(t *testing.T) {
	reg := NewKeepersRegistry()
	reg.Replace(interfaces.Keepers{1: {ID: 1, Username: "a"}})

	view := reg.Read()
	reg.Replace(interfaces.Keepers{2: {ID: 2, Username: "b"}})

	assert.Equal(t, interfaces.Keepers{1: {ID: 1, Username: "a"}}, view)
}

func TestKeepersRegistry_ReadReturnsCopy(t *testing.T) {
	reg := NewKeepersRegistry()
	reg.Replace(interfaces.Keepers{7: {ID: 7, Username: "alice"}})

	view := reg.Read()
	view[8] = interfaces.Keeper{ID: 8, Username: "mallory"}
	delete(view, 7)

	if diff := cmp.Diff(interfaces.Keepers{7: {ID: 7, Username: "alice"}}, reg.Read()); diff != "" {
		t.Errorf("registry changed through a read view (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, reg.Len())
}

// Readers racing with a writer must never observe ids from both sets.
func TestKeepersRegistry_ConcurrentReadsNeverMix(t *testing.T) {
	oldSet := make(interfaces.Keepers)
	newSet := make(interfaces.Keepers)
	for i := interfaces.KeeperID(0); i < 100; i++ {
		oldSet[i] = interfaces.Keeper{ID: i, Username: "old"}
		newSet[i+1000] = interfaces.Keeper{ID: i + 1000, Username: "new"}
	}

	reg := NewKeepersRegistry()
	reg.Replace(oldSet)

	stop := make(chan struct{})
	var writer sync.WaitGroup
	writer.Add(1)
	go func() {
		defer writer.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				reg.Replace(newSet)
			} else {
				reg.Replace(oldSet)
			}
		}
	}()

	var readers sync.WaitGroup
	for r := 0; r < 8; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for i := 0; i < 500; i++ {
				view := reg.Read()
				_, hasOld := view[0]
				_, hasNew := view[1000]
				assert.NotEqual(t, hasOld, hasNew, "view mixes old and new keepers")
				assert.Len(t, view, 100)
			}
		}()
	}

	readers.Wait()
	close(stop)
	writer.Wait()
}
