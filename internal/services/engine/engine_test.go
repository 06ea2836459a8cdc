package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"
)

type fakeResolver struct {
	mu      sync.Mutex
	text    string
	err     error
	calls   atomic.Int64
	blockCh chan struct{} // when non-nil, Resolve waits on it
}

func (f *fakeResolver) Resolve(ctx context.Context, capability models.Capability, spec models.PromptSpec, requestID string, priorityOverride map[string]int) (string, error) {
	f.calls.Add(1)
	if f.blockCh != nil {
		<-f.blockCh
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	return f.text, nil
}

func (f *fakeResolver) set(text string, err error) {
	f.mu.Lock()
	f.text, f.err = text, err
	f.mu.Unlock()
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]models.MethodResult
	setErr  error
	gets    atomic.Int64
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]models.MethodResult)}
}

func (f *fakeCache) Get(ctx context.Context, key, prompt, requestID string) (*models.MethodResult, bool) {
	f.gets.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.entries[key]; ok {
		out := r
		return &out, true
	}
	return nil, false
}

func (f *fakeCache) Set(ctx context.Context, key, prompt string, result models.MethodResult, requestID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[key] = result
	return nil
}

const goodResponse = `{"description":"Fence build","steps":["dig","set","nail"],"warnings":[],"requiredSkillLevel":3,"estimatedTime":20,"specialConsiderations":[]}`

func fenceRequest(size float64) models.MethodRequest {
	return models.MethodRequest{
		DomainType:    models.DomainConstructionMethod,
		DomainSubtype: "wooden_fence",
		Location:      models.Location{Region: "Bavaria"},
		Dimensions:    models.Dimensions{SizeMeasure: size},
	}
}

func TestProcessMissResolvesParsesAndCaches(t *testing.T) {
	resolver := &fakeResolver{text: goodResponse}
	cache := newFakeCache()
	e := New(resolver, cache)

	result, err := e.Process(context.Background(), fenceRequest(200))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	if len(result.Steps) != 3 {
		t.Errorf("steps = %v", result.Steps)
	}
	// 20h at medium size is unchanged
	if result.EstimatedTime != 20 {
		t.Errorf("estimatedTime = %v, want 20", result.EstimatedTime)
	}
	if resolver.calls.Load() != 1 {
		t.Errorf("resolver calls = %d, want 1", resolver.calls.Load())
	}

	// The generic result was cached under the request key
	key := fenceRequest(200).Key()
	if _, ok := cache.entries[key]; !ok {
		t.Error("parsed result should have been stored in the cache")
	}
}

func TestProcessCacheHitSkipsProviders(t *testing.T) {
	resolver := &fakeResolver{text: goodResponse}
	cache := newFakeCache()
	cache.entries[fenceRequest(0).Key()] = models.MethodResult{
		Description:        "cached",
		Steps:              []string{"a"},
		RequiredSkillLevel: 2,
		EstimatedTime:      10,
	}
	e := New(resolver, cache)

	result, err := e.Process(context.Background(), fenceRequest(200))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Description != "cached" {
		t.Errorf("description = %q, want the cached answer", result.Description)
	}
	if resolver.calls.Load() != 0 {
		t.Error("cache hit must not touch any provider")
	}
}

func TestProcessAdaptsPerCaller(t *testing.T) {
	resolver := &fakeResolver{text: goodResponse}
	cache := newFakeCache()
	e := New(resolver, cache)
	ctx := context.Background()

	small, err := e.Process(ctx, fenceRequest(50))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	large, err := e.Process(ctx, fenceRequest(750))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Same generic answer, one provider call, different scaled numbers
	if resolver.calls.Load() != 1 {
		t.Errorf("resolver calls = %d, want 1 (second request is a cache hit)", resolver.calls.Load())
	}
	if small.EstimatedTime != 14 { // ceil(20 * 0.7)
		t.Errorf("small time = %v, want 14", small.EstimatedTime)
	}
	if large.EstimatedTime != 26 { // ceil(20 * 1.3)
		t.Errorf("large time = %v, want 26", large.EstimatedTime)
	}
}

func TestProcessStampedeSharesOneResolution(t *testing.T) {
	resolver := &fakeResolver{text: goodResponse, blockCh: make(chan struct{})}
	cache := newFakeCache()
	e := New(resolver, cache)

	const callers = 16
	var wg sync.WaitGroup
	results := make([]*models.MethodResult, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.Process(context.Background(), fenceRequest(200))
		}(i)
	}

	// Give every caller time to join the in-flight resolution, then
	// release the provider.
	for resolver.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	close(resolver.blockCh)
	wg.Wait()

	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("caller %d: %v", i, errs[i])
		}
		if len(results[i].Steps) != 3 {
			t.Errorf("caller %d got %v", i, results[i].Steps)
		}
	}
	if got := resolver.calls.Load(); got != 1 {
		t.Errorf("resolver calls = %d, want 1 shared resolution", got)
	}
}

func TestProcessFallsBackOnExhaustion(t *testing.T) {
	resolver := &fakeResolver{}
	resolver.set("", models.NewAllProvidersExhaustedError(models.CapabilityTextCompletion, nil))
	e := New(resolver, newFakeCache())

	result, err := e.Process(context.Background(), fenceRequest(200))
	if err != nil {
		t.Fatalf("Process should degrade, not fail: %v", err)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("fallback result must be valid: %v", err)
	}
	if len(result.Steps) == 0 {
		t.Error("fallback must carry steps")
	}
}

func TestProcessFallsBackOnUnparseableResponse(t *testing.T) {
	resolver := &fakeResolver{text: "I cannot answer that."}
	cache := newFakeCache()
	e := New(resolver, cache)

	result, err := e.Process(context.Background(), fenceRequest(200))
	if err != nil {
		t.Fatalf("Process should degrade, not fail: %v", err)
	}
	if err := result.Validate(); err != nil {
		t.Errorf("fallback result must be valid: %v", err)
	}

	// Garbage is never cached
	if len(cache.entries) != 0 {
		t.Error("unparseable responses must not be cached")
	}
}

func TestProcessSurfacesNoCapableProvider(t *testing.T) {
	resolver := &fakeResolver{}
	resolver.set("", models.NewNoCapableProviderError(models.CapabilityTextCompletion))
	e := New(resolver, newFakeCache())

	_, err := e.Process(context.Background(), fenceRequest(200))
	if !models.IsErrorType(err, models.ErrorTypeNoCapableProvider) {
		t.Fatalf("err = %v, want no_capable_provider surfaced to the caller", err)
	}
}

func TestProcessCacheStoreFailureIsNotFatal(t *testing.T) {
	resolver := &fakeResolver{text: goodResponse}
	cache := newFakeCache()
	cache.setErr = models.NewCacheError("backend down", nil)
	e := New(resolver, cache)

	result, err := e.Process(context.Background(), fenceRequest(200))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(result.Steps) != 3 {
		t.Errorf("steps = %v", result.Steps)
	}
}

func TestProcessValidatesRequest(t *testing.T) {
	e := New(&fakeResolver{text: goodResponse}, newFakeCache())

	_, err := e.Process(context.Background(), models.MethodRequest{DomainType: models.DomainConstructionMethod})
	if !models.IsErrorType(err, models.ErrorTypeValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestBuildPromptDeterministicAndGeneric(t *testing.T) {
	req := fenceRequest(500)
	req.ClientName = "Example GmbH"
	req.Options = map[string]string{"material": "pine", "style": "lattice", "finish": "stained"}

	first := BuildPrompt(req)
	for i := 0; i < 20; i++ {
		if BuildPrompt(req) != first {
			t.Fatal("prompt text changed between renders")
		}
	}

	if strings.Contains(first, "Example GmbH") {
		t.Error("client identity must not leak into the prompt")
	}
	if strings.Contains(first, "500") {
		t.Error("project dimensions must not leak into the prompt")
	}
	if !strings.Contains(first, "wooden fence") || !strings.Contains(first, "Bavaria") {
		t.Errorf("prompt should name the subtype and region: %q", first)
	}
	if !strings.Contains(first, "requiredSkillLevel") {
		t.Error("prompt should state the JSON contract")
	}
}

func TestStaticFallbackAlwaysValid(t *testing.T) {
	domains := []string{
		models.DomainConstructionMethod,
		models.DomainMaterialList,
		models.DomainPriceGuidance,
		"unknown_future_domain",
	}

	for _, domain := range domains {
		t.Run(domain, func(t *testing.T) {
			req := fenceRequest(0)
			req.DomainType = domain
			result := StaticFallback(req)
			if err := result.Validate(); err != nil {
				t.Errorf("Validate: %v", err)
			}
			if len(result.Warnings) == 0 {
				t.Error("fallback should warn that it is generated guidance")
			}
		})
	}
}

func TestProcessRetryAfterSharedFailureCanRecover(t *testing.T) {
	resolver := &fakeResolver{}
	resolver.set("", errors.New("transient outage"))
	cache := newFakeCache()
	e := New(resolver, cache)
	ctx := context.Background()

	// First pass fails and degrades to the fallback
	if _, err := e.Process(ctx, fenceRequest(200)); err != nil {
		t.Fatalf("Process: %v", err)
	}

	// Provider recovers; a later request resolves normally
	resolver.set(goodResponse, nil)
	result, err := e.Process(ctx, fenceRequest(200))
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Description != "Fence build" {
		t.Errorf("description = %q, want the provider answer after recovery", result.Description)
	}
}
