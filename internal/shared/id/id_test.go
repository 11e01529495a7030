package id

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	assert.NotEqual(t, id1.String(), id2.String())
	assert.Len(t, gen.GenerateString(), 26)
}

func TestGenerateWithPrefix(t *testing.T) {
	gen := NewGenerator()

	for _, prefix := range []string{InvocationPrefix, RequestPrefix, SpanPrefix} {
		t.Run(prefix, func(t *testing.T) {
			s := gen.GenerateWithPrefix(prefix)
			require.True(t, strings.HasPrefix(s, prefix+"_"))
			assert.True(t, IsValid(s))
		})
	}
}

func TestTypedIDs(t *testing.T) {
	assert.True(t, strings.HasPrefix(NewInvocationID().String(), "inv_"))
	assert.True(t, strings.HasPrefix(NewRequestID().String(), "req_"))
	assert.True(t, strings.HasPrefix(NewSpanID().String(), "span_"))
}

func TestPageID(t *testing.T) {
	p := NewPageID()

	parsed, err := ParsePageID(p.String())
	require.NoError(t, err)
	assert.Equal(t, p, parsed)

	_, err = ParsePageID("not-a-page")
	assert.Error(t, err)
}

func TestTimestamp(t *testing.T) {
	before := time.Now().Add(-time.Second)
	ts, err := Timestamp(NewInvocationID().String())
	require.NoError(t, err)
	assert.True(t, ts.After(before))

	_, err = Timestamp("garbage")
	assert.Error(t, err)
}

func TestDeterministicEntropy(t *testing.T) {
	gen := NewGeneratorWithEntropy(bytes.NewReader(bytes.Repeat([]byte{7}, 64)))
	assert.True(t, IsValid(gen.GenerateString()))
}

func TestConcurrentGeneration(t *testing.T) {
	gen := NewGenerator()
	var mu sync.Mutex
	seen := make(map[string]bool)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := gen.GenerateString()
			mu.Lock()
			seen[s] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, 50)
}
