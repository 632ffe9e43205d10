package render

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

type stackFrame struct {
	file     string
	line     int
	function string
}

func newStackFrame(pc uintptr) stackFrame {
	frame := stackFrame{function: "unknown"}
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return frame
	}
	frame.file, frame.line = fn.FileLine(pc)
	name := fn.Name()
	// strip the import path, keep pkg.Func
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	frame.function = name
	return frame
}

func (f stackFrame) String() string {
	if f.file == "" {
		return f.function
	}
	return fmt.Sprintf("%s (%s:%d)", f.function, filepath.Base(f.file), f.line)
}
