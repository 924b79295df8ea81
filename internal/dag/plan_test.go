package dag

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// historical mirrors the shape of the bundled pipeline.
func historical() []*Task {
	return []*Task{
		task("downloadWeb3j"),
		task("downloadOpenZeppelin"),
		task("extractContracts", "downloadOpenZeppelin"),
		task("compileTestSolidity"),
		task("generateTestContractWrappers"),
		after(task("compileHistoricalSolidityContracts", "downloadWeb3j", "extractContracts", "compileTestSolidity"),
			"generateTestContractWrappers"),
		task("processTestResources", "generateTestContractWrappers", "compileHistoricalSolidityContracts"),
	}
}

func TestPlan_ClosureFollowsHardEdgesOnly(t *testing.T) {
	g, err := New(historical()...)
	require.NoError(t, err)

	p, err := g.Plan("compileHistoricalSolidityContracts")
	require.NoError(t, err)

	want := []string{"downloadWeb3j", "downloadOpenZeppelin", "extractContracts", "compileTestSolidity", "compileHistoricalSolidityContracts"}
	if diff := cmp.Diff(want, p.Names()); diff != "" {
		t.Errorf("plan order mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, p.Contains("generateTestContractWrappers"))
	assert.Equal(t, []string{"downloadWeb3j", "extractContracts", "compileTestSolidity"},
		p.Predecessors("compileHistoricalSolidityContracts"))
}

func TestPlan_OrderingEdgeInsidePlan(t *testing.T) {
	g, err := New(historical()...)
	require.NoError(t, err)

	p, err := g.Plan("processTestResources")
	require.NoError(t, err)

	want := []string{
		"downloadWeb3j", "downloadOpenZeppelin", "extractContracts", "compileTestSolidity",
		"generateTestContractWrappers", "compileHistoricalSolidityContracts", "processTestResources",
	}
	if diff := cmp.Diff(want, p.Names()); diff != "" {
		t.Errorf("plan order mismatch (-want +got):\n%s", diff)
	}
	assert.Contains(t, p.Predecessors("compileHistoricalSolidityContracts"), "generateTestContractWrappers")
	assert.Equal(t, []string{"downloadWeb3j", "extractContracts", "compileTestSolidity"},
		p.HardDependencies("compileHistoricalSolidityContracts"))
}

func TestPlan_OrderingEdgeBeatsDeclarationOrder(t *testing.T) {
	g, err := New(after(task("first"), "second"), task("second"))
	require.NoError(t, err)

	p, err := g.Plan()
	require.NoError(t, err)
	assert.Equal(t, []string{"second", "first"}, p.Names())
}

func TestPlan_UnknownTarget(t *testing.T) {
	g, err := New(task("a"))
	require.NoError(t, err)

	_, err = g.Plan("b")
	assert.ErrorIs(t, err, ErrUnknownTask)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPlan_EmptyTargetsPlansEverything(t *testing.T) {
	g, err := New(historical()...)
	require.NoError(t, err)

	p, err := g.Plan()
	require.NoError(t, err)
	assert.Equal(t, 7, p.Len())
}

// TestPlan_TopologicalValidity checks on random acyclic graphs that every
// planned task comes after all of its planned predecessors.
func TestPlan_TopologicalValidity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for iter := 0; iter < 50; iter++ {
		n := 2 + rng.Intn(20)
		tasks := make([]*Task, n)
		for i := 0; i < n; i++ {
			tasks[i] = task(fmt.Sprintf("t%02d", i))
			for j := 0; j < i; j++ {
				switch rng.Intn(6) {
				case 0:
					tasks[i].DependsOn = append(tasks[i].DependsOn, tasks[j].Name)
				case 1:
					tasks[i].MustRunAfter = append(tasks[i].MustRunAfter, tasks[j].Name)
				}
			}
		}
		rng.Shuffle(n, func(i, j int) { tasks[i], tasks[j] = tasks[j], tasks[i] })

		g, err := New(tasks...)
		require.NoError(t, err)

		target := tasks[rng.Intn(n)].Name
		p, err := g.Plan(target)
		require.NoError(t, err)

		pos := map[string]int{}
		for i, name := range p.Names() {
			pos[name] = i
		}
		for _, tk := range p.Order {
			for _, d := range tk.DependsOn {
				require.Contains(t, pos, d, "hard dependency must be planned")
				assert.Less(t, pos[d], pos[tk.Name])
			}
			for _, a := range tk.MustRunAfter {
				if i, ok := pos[a]; ok {
					assert.Less(t, i, pos[tk.Name])
				}
			}
		}
	}
}

func TestPlan_Deterministic(t *testing.T) {
	g, err := New(historical()...)
	require.NoError(t, err)

	first, err := g.Plan()
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := g.Plan()
		require.NoError(t, err)
		require.Equal(t, first.Names(), again.Names())
	}
}
