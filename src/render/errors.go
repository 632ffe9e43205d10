package render

import (
	"fmt"
	"runtime"

	"github.com/vulkan-go/vulkan"
)

// NewError converts a non-success result into an error annotated with the
// result code and the calling function. It returns nil for vulkan.Success.
func NewError(retVal vulkan.Result) error {
	if retVal != vulkan.Success {
		pc, _, _, ok := runtime.Caller(1)
		if !ok {
			return fmt.Errorf("vulkan error: %w (%d)", vulkan.Error(retVal), retVal)
		}
		frame := newStackFrame(pc)
		return fmt.Errorf("vulkan error: %w (%d) on %s",
			vulkan.Error(retVal), retVal, frame.String())
	}
	return nil
}

func IsError(retVal vulkan.Result) bool {
	return retVal != vulkan.Success
}

// OrPanic runs the finalizers and panics when err is non-nil.
func OrPanic(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	logger.EPrintf("%v", err)
	panic(err)
}

// CheckError recovers a panic into *err. It must be deferred.
func CheckError(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
