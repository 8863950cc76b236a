package hostapi

import (
	"path/filepath"
	"unsafe"
)

/*
#cgo linux LDFLAGS: -ldl

#ifdef _WIN32
#include <stdlib.h>
#include <windows.h>

static char anchor;

// Path of the library containing anchor, UTF-8 encoded. The caller frees it.
static char* lvp_plugin_path(void) {
	HMODULE self = NULL;
	if (!GetModuleHandleExW(GET_MODULE_HANDLE_EX_FLAG_FROM_ADDRESS |
			GET_MODULE_HANDLE_EX_FLAG_UNCHANGED_REFCOUNT, (LPCWSTR)&anchor, &self)) {
		return NULL;
	}

	static wchar_t wide[32768];
	DWORD n = GetModuleFileNameW(self, wide, sizeof(wide) / sizeof(wide[0]));
	if (n == 0 || n == sizeof(wide) / sizeof(wide[0])) {
		return NULL;
	}

	int size = WideCharToMultiByte(CP_UTF8, 0, wide, (int)n, NULL, 0, NULL, NULL);
	char* out = size > 0 ? malloc(size + 1) : NULL;
	if (out == NULL) {
		return NULL;
	}
	WideCharToMultiByte(CP_UTF8, 0, wide, (int)n, out, size, NULL, NULL);
	out[size] = '\0';
	return out;
}

#else
#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>

static char anchor;

static char* lvp_plugin_path(void) {
	Dl_info info;
	if (!dladdr(&anchor, &info) || info.dli_fname == NULL) {
		return NULL;
	}
	return strdup(info.dli_fname);
}
#endif
*/
import "C"

// PluginPath returns the path of the shared library the gamemode was loaded from, or ""
// when the loader cannot tell.
func PluginPath() string {
	p := C.lvp_plugin_path()
	if p == nil {
		return ""
	}
	defer C.free(unsafe.Pointer(p))
	return C.GoString(p)
}

// PluginDir is the directory config and logs are resolved against.
func PluginDir() string {
	if p := PluginPath(); p != "" {
		return filepath.Dir(p)
	}
	return "."
}
