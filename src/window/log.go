package window

import "goarrg.com/debug"

var logger = debug.NewLogger("cubulous", "window")

func SetLogLevel(l uint32) {
	logger.SetLevel(l)
}
