package netsim

// testInput, testSync, and testAux are the minimal concrete types shared
// by this package's own unit tests. They stay in-package so the tests can
// reach unexported fields and methods (TickState,
// consumeInputs, syncContinuity) that a Driver/Simulation pair alone
// can't exercise.
type testInput struct {
	DX, DY float64
	Dt     SimTime
}

func (i testInput) DeltaTime() SimTime { return i.Dt }

type testSync struct {
	X, Y float64
}

type testAux struct {
	Scale float64
}

type testSimulation struct {
	updates int
}

func (s *testSimulation) Update(driver Driver[testInput, testSync, testAux], deltaSeconds float64, in *testInput, prevSync *testSync, nextSync *testSync, aux *testAux) {
	s.updates++
	nextSync.X = prevSync.X + in.DX*deltaSeconds
	nextSync.Y = prevSync.Y + in.DY*deltaSeconds
}

func (s *testSimulation) GroupName() string { return "test" }

type testDriver struct {
	name        string
	produce     func(localTime SimTime, cmd *testInput)
	finalized   []testSync
	initialized int
}

func (d *testDriver) DebugName() string { return d.name }

func (d *testDriver) InitSyncState(sync *testSync) {
	d.initialized++
	*sync = testSync{}
}

func (d *testDriver) ProduceInput(localTime SimTime, cmd *testInput) {
	if d.produce != nil {
		d.produce(localTime, cmd)
		return
	}
	*cmd = testInput{Dt: localTime}
}

func (d *testDriver) FinalizeFrame(sync *testSync) {
	d.finalized = append(d.finalized, *sync)
}

func newTestOrchestrator(role Role, opts ...OrchestratorOption[testInput, testSync, testAux]) (*Orchestrator[testInput, testSync, testAux], *testDriver, *testSimulation) {
	driver := &testDriver{name: "test-driver"}
	sim := &testSimulation{}
	o := NewOrchestrator[testInput, testSync, testAux](driver, sim, opts...)
	o.InitializeForRole(role, InitParams{InputBufferSize: 8, SyncedBufferSize: 8, AuxBufferSize: 8, HistoricBufferSize: 8})
	return o, driver, sim
}
