package hostapi

/*
#include <stdlib.h>
#include <string.h>

typedef int (*hostCallback)(char const *function, char const *data, char *output, int outputSize);

static inline int runHostCallback(hostCallback fnc, char const *function, char const *data, char *output, int outputSize)
{
	return fnc(function, data, output, outputSize);
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// callbackOutputSize bounds replies the server writes back through the callback.
const callbackOutputSize = 10240

// called by the server to get the version of the plugin
//
//export GamemodeVersion
func GamemodeVersion(output *C.char, outputsize C.size_t) {
	replyToSyncCall(Version(), output, outputsize)
}

// called by the server in the format of: gamemodeCall("command|data")
//
//export GamemodeCall
func GamemodeCall(output *C.char, outputsize C.size_t, input *C.char) {
	replyToSyncCall(HandleCommand(C.GoString(input)), output, outputsize)
}

// called by the server in the format of: gamemodeCallArgs("command", ["data", ...])
//
//export GamemodeCallArgs
func GamemodeCallArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	replyToSyncCall(HandleArgs(C.GoString(input), parseArgsFromC(argv, argc)), output, outputsize)
}

// called by the server once to hand over the function used for host requests
//
//export GamemodeRegisterCallback
func GamemodeRegisterCallback(fnc C.hostCallback) {
	if fnc == nil {
		setCallback(nil)
		return
	}
	setCallback(func(function, data string) (string, error) {
		return runHostCallback(fnc, function, data)
	})
}

func runHostCallback(fnc C.hostCallback, function, data string) (string, error) {
	cFunction := C.CString(function)
	defer C.free(unsafe.Pointer(cFunction))
	cData := C.CString(data)
	defer C.free(unsafe.Pointer(cData))

	output := (*C.char)(C.calloc(callbackOutputSize, 1))
	defer C.free(unsafe.Pointer(output))

	if code := C.runHostCallback(fnc, cFunction, cData, output, callbackOutputSize); code != 0 {
		return "", fmt.Errorf("server callback %s returned %d", function, int(code))
	}
	return C.GoString(output), nil
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	var offset = unsafe.Sizeof(uintptr(0))
	var data []string
	for index := C.int(0); index < argc; index++ {
		data = append(data, C.GoString(*argv))
		argv = (**C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(argv)) + offset))
	}
	return data
}

// replyToSyncCall copies response into the server's output buffer, truncating if needed.
func replyToSyncCall(response string, output *C.char, outputsize C.size_t) {
	if outputsize == 0 {
		return
	}
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	var size = C.strlen(result) + 1
	if size > outputsize {
		size = outputsize
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), size)
	*(*C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(output)) + uintptr(size-1))) = 0
}
