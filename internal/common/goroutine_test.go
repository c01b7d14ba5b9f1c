package common

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestSafeGo_RecoversPanic(t *testing.T) {
	var wg sync.WaitGroup
	wg.Add(2)

	ran := false
	SafeGo(arbor.NewLogger(), "panicking", func() {
		defer wg.Done()
		panic("boom")
	})
	SafeGo(nil, "normal", func() {
		defer wg.Done()
		ran = true
	})

	wg.Wait()
	assert.True(t, ran)
}

func TestNewReportID(t *testing.T) {
	a, b := NewReportID(), NewReportID()
	assert.True(t, strings.HasPrefix(a, "rpt_"))
	assert.Len(t, a, len("rpt_")+36)
	assert.NotEqual(t, a, b)
}

func TestWriteCrashFile(t *testing.T) {
	dir := t.TempDir()
	previous := CrashLogDir
	CrashLogDir = dir
	t.Cleanup(func() { CrashLogDir = previous })

	path := WriteCrashFile("kaboom", "goroutine 1 [running]:")
	assert.True(t, strings.HasPrefix(path, dir))
	assert.FileExists(t, path)
}
