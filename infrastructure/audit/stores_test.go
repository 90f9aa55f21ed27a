package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"finmarket/domain/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleLog(entity string) *shared.AuditLog {
	return &shared.AuditLog{
		ID:         uuid.New(),
		ActorID:    "alice",
		Action:     shared.AuditActionCreated,
		EntityName: entity,
		Timestamp:  time.Now().UTC(),
		KeyValues:  `{"id":"` + uuid.NewString() + `"}`,
		NewValues:  `{"ticker":"ASML"}`,
	}
}

func TestNoopStoreAcceptsAnything(t *testing.T) {
	s := NewNoopStore()
	assert.NoError(t, s.Save(context.Background(), nil))
	assert.NoError(t, s.Save(context.Background(), []*shared.AuditLog{sampleLog("Stock")}))
}

func TestFileStoreAppendsJSONLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, []*shared.AuditLog{sampleLog("Stock"), sampleLog("Order")}))
	require.NoError(t, s.Save(ctx, []*shared.AuditLog{sampleLog("Stock")}))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var entities []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry shared.AuditLog
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry))
		entities = append(entities, entry.EntityName)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"Stock", "Order", "Stock"}, entities)
}

func TestFileStoreEmptyBatchWritesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	s := NewFileStore(path)

	require.NoError(t, s.Save(context.Background(), nil))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err), "empty batch must not create the file")
}

func TestFileStoreConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	s := NewFileStore(path)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, []*shared.AuditLog{sampleLog("Stock")}))
		}()
	}
	wg.Wait()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry shared.AuditLog
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &entry), "interleaved writes would corrupt the line")
		lines++
	}
	assert.Equal(t, 8, lines)
}
