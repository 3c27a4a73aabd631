package netsim

import "testing"

func TestBufferContainerArchiveAndFindSync(t *testing.T) {
	bc := NewBufferContainer[testInput, testSync, testAux](InitParams{SyncedBufferSize: 4, HistoricBufferSize: 2}, false, nil)

	for i := 0; i < 3; i++ {
		sync := bc.Sync.WriteNext()
		*sync = testSync{X: float64(i)}
		bc.ArchiveSync()
	}

	if _, ok := bc.Sync.Find(0); !ok {
		t.Fatalf("expected keyframe 0 to still be live")
	}
	v, ok := bc.FindSync(0)
	if !ok || v.X != 0 {
		t.Fatalf("expected FindSync(0) from the live window to return X=0, got %+v ok=%v", v, ok)
	}

	for i := 3; i < 8; i++ {
		sync := bc.Sync.WriteNext()
		*sync = testSync{X: float64(i)}
		bc.ArchiveSync()
	}

	if _, ok := bc.Sync.Find(0); ok {
		t.Fatalf("expected keyframe 0 to have been evicted from the live window")
	}
	if _, ok := bc.FindSync(0); ok {
		t.Fatalf("expected FindSync(0) to miss: evicted from both live and historic windows")
	}
	if v, ok := bc.FindSync(6); !ok || v.X != 6 {
		t.Fatalf("expected FindSync(6) from the live window to return X=6, got %+v ok=%v", v, ok)
	}
}

func TestBufferContainerNoDebugBufferWhenCaptureDisabled(t *testing.T) {
	bc := NewBufferContainer[testInput, testSync, testAux](InitParams{}, false, nil)
	if bc.Debug != nil {
		t.Fatalf("expected Debug buffer to be nil when debugCapture is false")
	}
}

func TestBufferContainerDebugBufferWhenCaptureEnabled(t *testing.T) {
	bc := NewBufferContainer[testInput, testSync, testAux](InitParams{}, true, nil)
	if bc.Debug == nil {
		t.Fatalf("expected Debug buffer to be allocated when debugCapture is true")
	}
}

func TestBufferContainerReportsOccupancyMetrics(t *testing.T) {
	counts := map[string]uint64{}
	sink := fakeMetricsSink{counts: counts}
	bc := NewBufferContainer[testInput, testSync, testAux](InitParams{}, false, sink)

	*bc.Sync.WriteNext() = testSync{}
	bc.reportOccupancy()

	if counts[syncBufferOccupancyMetricKey] != 1 {
		t.Fatalf("expected sync occupancy metric 1, got %d", counts[syncBufferOccupancyMetricKey])
	}
}

type fakeMetricsSink struct {
	counts map[string]uint64
}

func (f fakeMetricsSink) Add(key string, delta uint64)   { f.counts[key] += delta }
func (f fakeMetricsSink) Store(key string, value uint64) { f.counts[key] = value }
