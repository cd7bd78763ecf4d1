package checkpointer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samuelfneumann/layouteval/initwfn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInit(t *testing.T) *initwfn.InitWFn {
	t.Helper()
	w, err := initwfn.New(initwfn.GlorotU, 1.0)
	require.NoError(t, err)
	return w
}

func TestPath(t *testing.T) {
	assert.Equal(t, filepath.Join("root", "cramped_room", Filename),
		Path("root", "cramped_room"))
}

func TestNewShapes(t *testing.T) {
	p, err := New("A", 12, 25, []int{32, 16}, ReLU, true, newInit(t))
	require.NoError(t, err)

	require.Len(t, p.Policy, 3)
	assert.Equal(t, [2]int{12, 32}, [2]int{p.Policy[0].Rows, p.Policy[0].Cols})
	assert.Equal(t, [2]int{32, 16}, [2]int{p.Policy[1].Rows, p.Policy[1].Cols})
	assert.Equal(t, [2]int{16, 25}, [2]int{p.Policy[2].Rows, p.Policy[2].Cols})
	assert.Equal(t, ReLU, p.Policy[0].Activation)
	assert.Equal(t, Identity, p.Policy[2].Activation)
	assert.Len(t, p.Policy[0].Weights, 12*32)
	assert.Equal(t, make([]float64, 32), p.Policy[0].Bias)

	require.Len(t, p.Value, 1)
	assert.Equal(t, [2]int{12, 1}, [2]int{p.Value[0].Rows, p.Value[0].Cols})
}

func TestSaveLoad(t *testing.T) {
	path := Path(t.TempDir(), "A")

	p, err := New("A", 4, 3, nil, "", false, newInit(t))
	require.NoError(t, err)
	require.NoError(t, p.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, p.Layout, loaded.Layout)
	assert.Equal(t, p.ObsDim, loaded.ObsDim)
	assert.Equal(t, p.ActDim, loaded.ActDim)
	assert.Equal(t, p.Policy[0].Weights, loaded.Policy[0].Weights)
	assert.Empty(t, loaded.Value)
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(Path(t.TempDir(), "A"))
	assert.ErrorIs(t, err, ErrMissing)
}

func TestLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), Filename)
	require.NoError(t, os.WriteFile(path, []byte("not a checkpoint"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrMissing)
}

func TestValidate(t *testing.T) {
	valid := func() *Params {
		return &Params{
			ObsDim: 2,
			ActDim: 2,
			Policy: []Layer{{Rows: 2, Cols: 2, Weights: make([]float64, 4)}},
		}
	}
	assert.NoError(t, valid().Validate())

	for name, modify := range map[string]func(p *Params){
		"dims":       func(p *Params) { p.ObsDim = 0 },
		"no layers":  func(p *Params) { p.Policy = nil },
		"inputs":     func(p *Params) { p.Policy[0].Rows = 3 },
		"weights":    func(p *Params) { p.Policy[0].Weights = []float64{1} },
		"bias":       func(p *Params) { p.Policy[0].Bias = []float64{1} },
		"activation": func(p *Params) { p.Policy[0].Activation = "sigmoid" },
		"outputs":    func(p *Params) { p.ActDim = 3 },
		"value": func(p *Params) {
			p.Value = []Layer{{Rows: 2, Cols: 2, Weights: make([]float64, 4)}}
		},
	} {
		t.Run(name, func(t *testing.T) {
			p := valid()
			modify(p)
			assert.ErrorIs(t, p.Validate(), ErrMalformed)
			assert.ErrorIs(t, p.Save(filepath.Join(t.TempDir(), Filename)),
				ErrMalformed)
		})
	}
}
