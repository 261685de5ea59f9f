//go:build windows

package main

/*
#include <windows.h>

HMODULE shim_module_handle(void);
*/
import "C"

import (
	"errors"
	"os"
	"path/filepath"
	"unsafe"

	"go.uber.org/zap"
	"golang.org/x/sys/windows"

	"github.com/eliteGoblin/focusd/steamshim/internal/infra"
	"github.com/eliteGoblin/focusd/steamshim/internal/lifecycle"
)

var controller *lifecycle.Controller

func init() {
	dir, dirErr := moduleDir()
	if dirErr != nil {
		exe, _ := os.Executable()
		dir = filepath.Dir(exe)
	}

	logger := infra.NewLogger(dir)
	if dirErr != nil {
		logger.Warn("failed to locate shim module, using host directory", zap.Error(dirErr))
	}

	controller = newController(logger)
	controller.OnAttach(dir)
}

// steamshimDetach is called by DllMain when the library is unloaded with
// FreeLibrary. It is not called on process termination.
//
//export steamshimDetach
func steamshimDetach() {
	if controller != nil {
		controller.OnDetach()
	}
}

// moduleDir returns the directory holding this library, not the host executable.
func moduleDir() (string, error) {
	module := windows.Handle(uintptr(unsafe.Pointer(C.shim_module_handle())))
	if module == 0 {
		return "", errors.New("module handle unavailable")
	}

	buf := make([]uint16, windows.MAX_LONG_PATH)
	n, err := windows.GetModuleFileName(module, &buf[0], uint32(len(buf)))
	if err != nil {
		return "", err
	}
	return filepath.Dir(windows.UTF16ToString(buf[:n])), nil
}
