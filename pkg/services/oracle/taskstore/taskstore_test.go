package taskstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testStores(t *testing.T) map[string]Store {
	mem := NewMemoryStore()

	bolt, err := NewBoltDBStore(BoltDBOptions{FilePath: filepath.Join(t.TempDir(), "task.db")})
	require.NoError(t, err)
	t.Cleanup(func() { bolt.Close() })

	level, err := NewLevelDBStore(LevelDBOptions{DataDirectoryPath: filepath.Join(t.TempDir(), "leveldb")})
	require.NoError(t, err)
	t.Cleanup(func() { level.Close() })

	return map[string]Store{"memory": mem, "boltdb": bolt, "leveldb": level}
}

func TestStore_FinishedRoundtrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			now := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, s.SaveFinished(1, now))
			require.NoError(t, s.SaveFinished(2, now.Add(time.Minute)))

			loaded, err := s.LoadFinished()
			require.NoError(t, err)
			require.True(t, loaded[1].Equal(now))
			require.True(t, loaded[2].Equal(now.Add(time.Minute)))

			require.NoError(t, s.DeleteFinished(1))
			loaded, err = s.LoadFinished()
			require.NoError(t, err)
			require.NotContains(t, loaded, uint64(1))
		})
	}
}

func TestStore_PendingRoundtrip(t *testing.T) {
	for name, s := range testStores(t) {
		t.Run(name, func(t *testing.T) {
			snap := PendingSnapshot{
				RequestID: 7,
				CreatedAt: time.Now().UTC().Truncate(time.Second),
				TxBuilt:   true,
				Signs:     map[string]string{"02aa": "c2ln"},
			}
			require.NoError(t, s.SavePending(snap))

			loaded, err := s.LoadPending()
			require.NoError(t, err)
			require.Equal(t, snap.TxBuilt, loaded[7].TxBuilt)
			require.Equal(t, snap.Signs, loaded[7].Signs)

			require.NoError(t, s.DeletePending(7))
			loaded, err = s.LoadPending()
			require.NoError(t, err)
			require.NotContains(t, loaded, uint64(7))
		})
	}
}

func TestNew_UnknownType(t *testing.T) {
	_, err := New(Config{Type: "redis"})
	require.Error(t, err)
}

func TestNew_DefaultsToMemory(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	require.IsType(t, &MemoryStore{}, s)
}
