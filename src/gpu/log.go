package gpu

import "goarrg.com/debug"

var logger = debug.NewLogger("cubulous", "gpu")

func SetLogLevel(l uint32) {
	logger.SetLevel(l)
}
