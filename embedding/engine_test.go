package embedding

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"productsim/normalization/algorithms"
)

type fakeBackend struct {
	name    string
	dim     int
	loadErr error
	fail    atomic.Bool
	calls   atomic.Int32
	onEmbed func(text string)
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Load(ctx context.Context) error { return f.loadErr }

func (f *fakeBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	f.calls.Add(1)
	if f.onEmbed != nil {
		for _, text := range texts {
			f.onEmbed(text)
		}
	}
	if f.fail.Load() {
		return nil, errors.New("backend down")
	}
	out := make([][]float64, len(texts))
	for i, text := range texts {
		v := make([]float64, f.dim)
		for j, r := range text {
			v[j%f.dim] += float64(r % 7)
		}
		v[0] += 1
		out[i] = v
	}
	return out, nil
}

func TestNewEngineValidation(t *testing.T) {
	b := &fakeBackend{name: "a", dim: 4}

	_, err := NewEngineWithBackends([]Backend{b}, []float64{-1}, 0, 0, nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = NewEngineWithBackends([]Backend{b, b}, []float64{0, 0}, 0, 0, nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = NewEngineWithBackends([]Backend{b}, []float64{1, 1}, 0, 0, nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	_, err = NewEngineWithBackends(nil, nil, 0, 0, nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))

	e, err := NewEngineWithBackends([]Backend{b, &fakeBackend{name: "b", dim: 4}}, []float64{3, 1}, 0, 0, nil)
	require.NoError(t, err)
	st := e.Stats()
	assert.InDelta(t, 0.75, st.Backends[0].Weight, 1e-12)
	assert.InDelta(t, 0.25, st.Backends[1].Weight, 1e-12)
	assert.False(t, st.Loaded, "loading is lazy")
}

func TestNewEngineFromConfig(t *testing.T) {
	e, err := NewEngine(Config{Primary: BackendConfig{Kind: KindHashing, Dimension: 64}}, nil)
	require.NoError(t, err)
	assert.True(t, e.Available())

	vec, err := e.Embed(context.Background(), "arroz camil")
	require.NoError(t, err)
	assert.Len(t, vec, 64)

	_, err = NewEngine(Config{Primary: BackendConfig{Kind: "bert"}}, nil)
	assert.True(t, errors.Is(err, algorithms.ErrConfiguration))
}

func TestEngineLoadOnce(t *testing.T) {
	ok := &fakeBackend{name: "ok", dim: 4}
	broken := &fakeBackend{name: "broken", dim: 4, loadErr: errors.New("no model")}
	e, err := NewEngineWithBackends([]Backend{ok, broken}, []float64{1, 1}, 10, 2, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			e.Load(context.Background())
		}()
	}
	wg.Wait()

	assert.True(t, e.Available())
	st := e.Stats()
	assert.True(t, st.Backends[0].Available)
	assert.False(t, st.Backends[1].Available)
	assert.Equal(t, "no model", st.Backends[1].LoadError)

	// Недоступный бэкенд не участвует в вычислениях
	_, err = e.Embed(context.Background(), "leite")
	require.NoError(t, err)
	assert.Equal(t, int32(0), broken.calls.Load())
}

func TestEngineUnavailable(t *testing.T) {
	b := &fakeBackend{name: "x", dim: 4, loadErr: errors.New("offline")}
	e, err := NewEngineWithBackends([]Backend{b}, []float64{1}, 10, 1, nil)
	require.NoError(t, err)

	assert.False(t, e.Available())
	_, err = e.Embed(context.Background(), "leite")
	assert.True(t, errors.Is(err, algorithms.ErrBackendUnavailable))
}

func TestEngineCache(t *testing.T) {
	b := &fakeBackend{name: "x", dim: 8}
	e, err := NewEngineWithBackends([]Backend{b}, []float64{1}, 10, 4, nil)
	require.NoError(t, err)
	ctx := context.Background()

	texts := []string{"arroz", "feijao", "arroz", "leite", "arroz", "feijao"}
	vecs, err := e.EmbedBatch(ctx, texts)
	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	assert.Equal(t, vecs[0], vecs[2])
	assert.Equal(t, vecs[1], vecs[5])

	for _, v := range vecs {
		var norm float64
		for _, x := range v {
			norm += x * x
		}
		assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	}

	assert.Equal(t, int32(3), b.calls.Load(), "each distinct text is embedded once")
	st := e.Stats()
	assert.Equal(t, 3, st.CacheSize)
	assert.Equal(t, int64(6), st.CacheHits+st.CacheMisses)
}

func TestEngineTextSimilarity(t *testing.T) {
	e, err := NewEngine(Config{Primary: BackendConfig{Kind: KindHashing}}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	same, err := e.TextSimilarity(ctx, "leite italac 1l", "leite italac 1l")
	require.NoError(t, err)
	assert.Equal(t, 1.0, same)

	near, err := e.TextSimilarity(ctx, "leite italac integral 1l", "leite italac 1l")
	require.NoError(t, err)
	far, err := e.TextSimilarity(ctx, "leite italac integral 1l", "detergente ype 500ml")
	require.NoError(t, err)
	assert.GreaterOrEqual(t, far, 0.0)
	assert.LessOrEqual(t, near, 1.0)
	assert.Greater(t, near, far)
}

func TestEngineDisablesFailingBackend(t *testing.T) {
	good := &fakeBackend{name: "good", dim: 4}
	flaky := &fakeBackend{name: "flaky", dim: 4}
	e, err := NewEngineWithBackends([]Backend{good, flaky}, []float64{1, 1}, 10, 1, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = e.Embed(ctx, "warm")
	require.NoError(t, err)

	flaky.fail.Store(true)
	for i := 0; i < maxConsecutiveFailures; i++ {
		_, err = e.Embed(ctx, "texto "+string(rune('a'+i)))
		assert.True(t, errors.Is(err, algorithms.ErrComputation))
	}

	st := e.Stats()
	assert.False(t, st.Backends[1].Available)
	assert.Equal(t, int64(maxConsecutiveFailures), st.Backends[1].Failures)
	assert.Equal(t, 0, st.CacheSize, "cache is purged when the ensemble changes")

	_, err = e.Embed(ctx, "texto novo")
	assert.NoError(t, err, "remaining backend keeps serving")
}

func TestTextSimilarityAcrossEnsembleChange(t *testing.T) {
	good := &fakeBackend{name: "good", dim: 8}
	flaky := &fakeBackend{name: "flaky", dim: 4}
	e, err := NewEngineWithBackends([]Backend{good, flaky}, []float64{1, 1}, 10, 1, nil)
	require.NoError(t, err)
	ctx := context.Background()

	leite, err := e.Embed(ctx, "leite")
	require.NoError(t, err)
	require.Len(t, leite, 12, "both backends are concatenated")

	// Пока вычисляется второй текст, flaky исключается из ансамбля
	var once sync.Once
	good.onEmbed = func(text string) {
		if text != "feijao" {
			return
		}
		once.Do(func() {
			flaky.fail.Store(true)
			for i := 0; i < maxConsecutiveFailures; i++ {
				_, _ = e.Embed(ctx, "erro "+string(rune('a'+i)))
			}
		})
	}

	sim, err := e.TextSimilarity(ctx, "leite", "feijao")
	require.NoError(t, err)

	st := e.Stats()
	assert.Equal(t, uint64(1), st.Generation)
	assert.False(t, st.Backends[1].Available)

	ref, err := NewEngineWithBackends([]Backend{&fakeBackend{name: "good", dim: 8}}, []float64{1}, 10, 1, nil)
	require.NoError(t, err)
	want, err := ref.TextSimilarity(ctx, "leite", "feijao")
	require.NoError(t, err)
	assert.Greater(t, want, 0.0)
	assert.InDelta(t, want, sim, 1e-12, "both vectors come from the remaining backend")

	vec, err := e.Embed(ctx, "leite")
	require.NoError(t, err)
	assert.Len(t, vec, 8)
}

type blockingBackend struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	calls   atomic.Int32
}

func (b *blockingBackend) Name() string { return "blocking" }

func (b *blockingBackend) Load(ctx context.Context) error { return nil }

func (b *blockingBackend) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	b.calls.Add(1)
	b.once.Do(func() { close(b.entered) })
	select {
	case <-b.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{1, 2, 3}
	}
	return out, nil
}

func TestEmbedSharedComputationSurvivesCallerCancel(t *testing.T) {
	b := &blockingBackend{entered: make(chan struct{}), release: make(chan struct{})}
	e, err := NewEngineWithBackends([]Backend{b}, []float64{1}, 10, 2, nil)
	require.NoError(t, err)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := e.Embed(ctxA, "arroz")
		errA <- err
	}()
	<-b.entered

	type result struct {
		vec []float64
		err error
	}
	resB := make(chan result, 1)
	go func() {
		vec, err := e.Embed(context.Background(), "arroz")
		resB <- result{vec, err}
	}()
	time.Sleep(20 * time.Millisecond)

	cancelA()
	assert.ErrorIs(t, <-errA, context.Canceled)

	close(b.release)
	r := <-resB
	require.NoError(t, r.err, "cancelling one caller must not fail the others")
	assert.Len(t, r.vec, 3)
	assert.Equal(t, int32(1), b.calls.Load())

	vec, err := e.Embed(context.Background(), "arroz")
	require.NoError(t, err)
	assert.Equal(t, r.vec, vec)
}

func TestCombine(t *testing.T) {
	// Одинаковая размерность: взвешенная сумма
	v := Combine([][]float64{{1, 0}, {0, 1}}, []float64{0.5, 0.5})
	assert.InDelta(t, math.Sqrt(0.5), v[0], 1e-12)
	assert.InDelta(t, math.Sqrt(0.5), v[1], 1e-12)

	// Разная размерность: конкатенация
	v = Combine([][]float64{{2, 0}, {0, 0, 3}}, []float64{0.75, 0.25})
	require.Len(t, v, 5)
	assert.InDelta(t, math.Sqrt(0.75), v[0], 1e-12)
	assert.InDelta(t, math.Sqrt(0.25), v[4], 1e-12)

	// Косинус конкатенации равен взвешенной сумме косинусов компонент
	a := Combine([][]float64{{1, 0}, {1, 0, 0}}, []float64{0.75, 0.25})
	b := Combine([][]float64{{1, 0}, {0, 1, 0}}, []float64{0.75, 0.25})
	assert.InDelta(t, 0.75, Similarity(a, b), 1e-12)
}
