package workload

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/twissel/bench-locks/counter"
	"github.com/twissel/bench-locks/internal/bench/executor"
)

// testRNG returns a fixed-seed source so generation is reproducible in
// tests; production callers pass nil for a time-seeded source.
func testRNG(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// TestGenerateOperationCount verifies len(Ops) == counters*opsPerCounter
// across plan shapes.
func TestGenerateOperationCount(t *testing.T) {
	tests := []struct {
		name          string
		counters      int
		opsPerCounter int
	}{
		{name: "single op", counters: 1, opsPerCounter: 1},
		{name: "one counter many ops", counters: 1, opsPerCounter: 500},
		{name: "many counters one op", counters: 200, opsPerCounter: 1},
		{name: "square", counters: 50, opsPerCounter: 50},
	}

	g := NewGenerator(testRNG(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := g.Generate(counter.NewBlocking, tt.counters, tt.opsPerCounter, 0.5)
			if err != nil {
				t.Fatalf("Generate() = %v, want nil", err)
			}
			if got := len(plan.Counters); got != tt.counters {
				t.Errorf("len(Counters) = %d, want %d", got, tt.counters)
			}
			if want := tt.counters * tt.opsPerCounter; len(plan.Ops) != want {
				t.Errorf("len(Ops) = %d, want %d", len(plan.Ops), want)
			}
		})
	}
}

// TestGenerateValidation verifies that invalid run shapes are rejected.
func TestGenerateValidation(t *testing.T) {
	tests := []struct {
		name          string
		counters      int
		opsPerCounter int
		readRatio     float64
	}{
		{name: "zero counters", counters: 0, opsPerCounter: 10, readRatio: 0.5},
		{name: "negative counters", counters: -1, opsPerCounter: 10, readRatio: 0.5},
		{name: "zero ops", counters: 10, opsPerCounter: 0, readRatio: 0.5},
		{name: "negative ratio", counters: 10, opsPerCounter: 10, readRatio: -0.1},
		{name: "ratio above one", counters: 10, opsPerCounter: 10, readRatio: 1.1},
	}

	g := NewGenerator(testRNG(1))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := g.Generate(counter.NewBlocking, tt.counters, tt.opsPerCounter, tt.readRatio); err == nil {
				t.Errorf("Generate(%d, %d, %v) = nil error, want error",
					tt.counters, tt.opsPerCounter, tt.readRatio)
			}
		})
	}
}

// TestReadFractionConvergence verifies that over a large sample the
// observed read fraction lands within 2% of the configured probability.
func TestReadFractionConvergence(t *testing.T) {
	ratios := []float64{0.0, 0.1, 0.5, 0.9, 1.0}

	const (
		counters      = 10
		opsPerCounter = 2000 // 20000 samples per ratio
		tolerance     = 0.02
	)

	g := NewGenerator(testRNG(2))
	for _, ratio := range ratios {
		plan, err := g.Generate(counter.NewBlocking, counters, opsPerCounter, ratio)
		if err != nil {
			t.Fatalf("Generate(ratio=%v) = %v, want nil", ratio, err)
		}

		reads := 0
		for _, op := range plan.Ops {
			if op.Kind == Read {
				reads++
			}
		}
		got := float64(reads) / float64(len(plan.Ops))
		if math.Abs(got-ratio) > tolerance {
			t.Errorf("read fraction for ratio %v = %v, want within %v", ratio, got, tolerance)
		}
	}
}

// TestWritePayloadRange verifies that every write payload lies in
// [0, PayloadRange).
func TestWritePayloadRange(t *testing.T) {
	g := NewGenerator(testRNG(3))
	plan, err := g.Generate(counter.NewBlocking, 20, 1000, 0.5)
	if err != nil {
		t.Fatalf("Generate() = %v, want nil", err)
	}

	writes := 0
	for i, op := range plan.Ops {
		if op.Kind != Write {
			continue
		}
		writes++
		if op.Payload >= PayloadRange {
			t.Errorf("op %d payload = %d, want < %d", i, op.Payload, PayloadRange)
		}
	}
	if writes == 0 {
		t.Fatal("plan contains no writes at ratio 0.5")
	}
}

// TestOperationsBoundToSharedStorage verifies that an operation's handle
// is a clone of its plan counter: applying a write makes the value visible
// through the plan's own handle.
func TestOperationsBoundToSharedStorage(t *testing.T) {
	ctx := context.Background()
	g := NewGenerator(testRNG(4))

	const opsPerCounter = 50
	plan, err := g.Generate(counter.NewBlocking, 3, opsPerCounter, 0.0)
	if err != nil {
		t.Fatalf("Generate() = %v, want nil", err)
	}

	// Ops are laid out counter-major: ops[i*K:(i+1)*K] target counter i.
	for i, c := range plan.Counters {
		op := &plan.Ops[i*opsPerCounter]
		if op.Counter == c {
			t.Errorf("counter %d: operation holds the original handle, want a clone", i)
		}

		got, err := op.Apply(ctx)
		if err != nil {
			t.Fatalf("Apply() = %v, want nil", err)
		}
		if got != op.Payload {
			t.Errorf("write Apply() = %d, want payload %d", got, op.Payload)
		}
		if v, _ := c.Get(ctx); v != op.Payload {
			t.Errorf("counter %d value = %d after op write, want %d", i, v, op.Payload)
		}
	}
}

// TestPureRatiosGenerateOneKind verifies the degenerate ratios: 1.0 yields
// only reads, 0.0 only writes.
func TestPureRatiosGenerateOneKind(t *testing.T) {
	tests := []struct {
		name      string
		readRatio float64
		want      Kind
	}{
		{name: "all reads", readRatio: 1.0, want: Read},
		{name: "all writes", readRatio: 0.0, want: Write},
	}

	g := NewGenerator(testRNG(5))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := g.Generate(counter.NewSuspending, 2, 100, tt.readRatio)
			if err != nil {
				t.Fatalf("Generate() = %v, want nil", err)
			}
			for i, op := range plan.Ops {
				if op.Kind != tt.want {
					t.Fatalf("op %d kind = %v, want %v", i, op.Kind, tt.want)
				}
			}
		})
	}
}

// TestApplyReadObservesPriorWrite verifies Operation.Apply semantics for
// both kinds against one shared cell.
func TestApplyReadObservesPriorWrite(t *testing.T) {
	ctx := context.Background()
	c := counter.NewBlocking()

	write := Operation{Kind: Write, Counter: c.Clone(), Payload: 123}
	got, err := write.Apply(ctx)
	if err != nil {
		t.Fatalf("write Apply() = %v, want nil", err)
	}
	if got != 123 {
		t.Errorf("write Apply() = %d, want 123", got)
	}

	read := Operation{Kind: Read, Counter: c.Clone()}
	got, err = read.Apply(ctx)
	if err != nil {
		t.Fatalf("read Apply() = %v, want nil", err)
	}
	if got != 123 {
		t.Errorf("read Apply() = %d, want 123", got)
	}
}

// TestDispatchedPlanFinalValuesWereWritten dispatches a generated plan
// through a worker pool and checks each counter's final stored value
// afterwards: it must be a payload carried by one of that counter's own
// write operations, or 0 if the counter drew no writes. A lost or
// invented write would leave a value outside that set.
func TestDispatchedPlanFinalValuesWereWritten(t *testing.T) {
	variants := []struct {
		name    string
		factory counter.Factory
	}{
		{name: counter.BlockingName, factory: counter.NewBlocking},
		{name: counter.SuspendingName, factory: counter.NewSuspending},
	}

	const (
		counters      = 5
		opsPerCounter = 200
	)

	ctx := context.Background()
	for _, v := range variants {
		t.Run(v.name, func(t *testing.T) {
			plan, err := NewGenerator(testRNG(8)).Generate(v.factory, counters, opsPerCounter, 0.5)
			if err != nil {
				t.Fatalf("Generate() = %v, want nil", err)
			}

			pool := executor.NewPool(ctx, 4)
			go func() {
				for i := range plan.Ops {
					op := &plan.Ops[i]
					if err := pool.Submit(func(ctx context.Context) (uint64, error) {
						return op.Apply(ctx)
					}); err != nil {
						t.Errorf("Submit(op %d) = %v, want nil", i, err)
					}
				}
			}()
			for range plan.Ops {
				if res := <-pool.Results(); res.Err != nil {
					t.Fatalf("Result.Err = %v, want nil", res.Err)
				}
			}
			if err := pool.Close(); err != nil {
				t.Fatalf("Close() = %v, want nil", err)
			}

			// Ops are laid out counter-major: ops[i*K:(i+1)*K] target
			// counter i.
			for i, c := range plan.Counters {
				written := make(map[uint64]bool)
				for _, op := range plan.Ops[i*opsPerCounter : (i+1)*opsPerCounter] {
					if op.Kind == Write {
						written[op.Payload] = true
					}
				}

				final, err := c.Get(ctx)
				if err != nil {
					t.Fatalf("Get() = %v, want nil", err)
				}
				if len(written) == 0 {
					if final != 0 {
						t.Errorf("counter %d final value = %d with no writes, want 0", i, final)
					}
					continue
				}
				if !written[final] {
					t.Errorf("counter %d final value = %d, which none of its writes stored", i, final)
				}
			}
		})
	}
}

// TestSameSeedSameSequence verifies that two generators with equal seeds
// produce identical plans, the reproducibility hook tests rely on.
func TestSameSeedSameSequence(t *testing.T) {
	const seed = 99

	a, err := NewGenerator(testRNG(seed)).Generate(counter.NewBlocking, 5, 200, 0.7)
	if err != nil {
		t.Fatalf("Generate() = %v, want nil", err)
	}
	b, err := NewGenerator(testRNG(seed)).Generate(counter.NewBlocking, 5, 200, 0.7)
	if err != nil {
		t.Fatalf("Generate() = %v, want nil", err)
	}

	for i := range a.Ops {
		if a.Ops[i].Kind != b.Ops[i].Kind || a.Ops[i].Payload != b.Ops[i].Payload {
			t.Fatalf("op %d differs between equal-seed plans: %v/%d vs %v/%d",
				i, a.Ops[i].Kind, a.Ops[i].Payload, b.Ops[i].Kind, b.Ops[i].Payload)
		}
	}
}

// TestKindString covers the report formatting of operation kinds.
func TestKindString(t *testing.T) {
	if got := Read.String(); got != "read" {
		t.Errorf("Read.String() = %q, want %q", got, "read")
	}
	if got := Write.String(); got != "write" {
		t.Errorf("Write.String() = %q, want %q", got, "write")
	}
}
