//go:build genie && cgo

package genie

/*
#cgo CFLAGS: -I${SRCDIR}/shim
#cgo LDFLAGS: -lgenie_shim

#include <stdint.h>
#include <stdlib.h>

typedef uintptr_t genie_handle;

extern genie_handle genie_shim_load(const char* bundle_dir, const char* engine_config);
extern int genie_shim_generate(genie_handle h, const char* prompt, uintptr_t cb_id);
extern void genie_shim_free(genie_handle h);
*/
import "C"

import (
	"fmt"
	"sync"
	"unsafe"
)

// Token relay. The shim calls back into Go through genieShimEmit with the
// callback ID it was handed; IDs never repeat within a process.
var (
	emitMu  sync.Mutex
	emitSeq uintptr
	emitTab = map[uintptr]func(string) bool{}
)

func registerEmit(emit func(string) bool) uintptr {
	emitMu.Lock()
	defer emitMu.Unlock()
	emitSeq++
	emitTab[emitSeq] = emit
	return emitSeq
}

func unregisterEmit(id uintptr) {
	emitMu.Lock()
	defer emitMu.Unlock()
	delete(emitTab, id)
}

// genieShimEmit receives one token from the native shim. Returns 1 to keep
// generating, 0 to stop.
//
//export genieShimEmit
func genieShimEmit(id C.uintptr_t, tok *C.char) C.int {
	emitMu.Lock()
	emit := emitTab[uintptr(id)]
	emitMu.Unlock()
	if emit == nil {
		return 0
	}
	if emit(C.GoString(tok)) {
		return 1
	}
	return 0
}

func loadModelImpl(bundleDir, engineConfig string) (uintptr, error) {
	cDir := C.CString(bundleDir)
	defer C.free(unsafe.Pointer(cDir))
	cCfg := C.CString(engineConfig)
	defer C.free(unsafe.Pointer(cCfg))
	return uintptr(C.genie_shim_load(cDir, cCfg)), nil
}

func generateImpl(h uintptr, prompt string, emit func(string) bool) error {
	cPrompt := C.CString(prompt)
	defer C.free(unsafe.Pointer(cPrompt))
	id := registerEmit(emit)
	defer unregisterEmit(id)
	if rc := C.genie_shim_generate(C.genie_handle(h), cPrompt, C.uintptr_t(id)); rc != 0 {
		return fmt.Errorf("engine query failed: code %d", int(rc))
	}
	return nil
}

func freeModelImpl(h uintptr) {
	C.genie_shim_free(C.genie_handle(h))
}
