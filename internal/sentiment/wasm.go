package sentiment

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Wasm runs a classifier compiled to WebAssembly in-process.
//
// The module must export:
//
//	memory
//	alloc(size i32) i32                 buffer for the UTF-8 input
//	classify(ptr i32, len i32) i64      (outPtr << 32 | outLen) of a JSON Result
type Wasm struct {
	mu       sync.Mutex
	runtime  wazero.Runtime
	mod      api.Module
	alloc    api.Function
	classify api.Function
}

// LoadWasm reads and instantiates the module at path.
func LoadWasm(ctx context.Context, path string) (*Wasm, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read wasm classifier: %w", err)
	}
	return NewWasm(ctx, code)
}

func NewWasm(ctx context.Context, code []byte) (*Wasm, error) {
	rt := wazero.NewRuntime(ctx)
	if _, err := wasi_snapshot_preview1.Instantiate(ctx, rt); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}
	// Reactor modules initialise through _initialize; _start would run main and exit.
	cfg := wazero.NewModuleConfig().WithName("classifier").WithStartFunctions("_initialize")
	mod, err := rt.InstantiateWithConfig(ctx, code, cfg)
	if err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("instantiate wasm classifier: %w", err)
	}

	w := &Wasm{runtime: rt, mod: mod, alloc: mod.ExportedFunction("alloc"), classify: mod.ExportedFunction("classify")}
	for name, ok := range map[string]bool{
		"memory":   mod.Memory() != nil,
		"alloc":    w.alloc != nil,
		"classify": w.classify != nil,
	} {
		if !ok {
			rt.Close(ctx)
			return nil, fmt.Errorf("%w: %s", ErrMissingExport, name)
		}
	}
	return w, nil
}

func (w *Wasm) Classify(ctx context.Context, text string) (Result, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	in := []byte(text)
	res, err := w.alloc.Call(ctx, uint64(len(in)))
	if err != nil {
		return Result{}, fmt.Errorf("wasm alloc: %w", err)
	}
	ptr := uint32(res[0])
	mem := w.mod.Memory()
	if !mem.Write(ptr, in) {
		return Result{}, fmt.Errorf("wasm alloc returned out-of-range pointer %d", ptr)
	}

	res, err = w.classify.Call(ctx, uint64(ptr), uint64(len(in)))
	if err != nil {
		return Result{}, fmt.Errorf("wasm classify: %w", err)
	}
	outPtr, outLen := uint32(res[0]>>32), uint32(res[0])
	out, ok := mem.Read(outPtr, outLen)
	if !ok {
		return Result{}, fmt.Errorf("wasm classify returned out-of-range result %d+%d", outPtr, outLen)
	}
	var r Result
	if err := json.Unmarshal(out, &r); err != nil {
		return Result{}, fmt.Errorf("parse wasm classify output: %w", err)
	}
	return r, nil
}

// Close releases the runtime.
func (w *Wasm) Close() error {
	return w.runtime.Close(context.Background())
}
