package render

import "goarrg.com/debug"

var logger = debug.NewLogger("cubulous", "render")

func SetLogLevel(l uint32) {
	logger.SetLevel(l)
}
