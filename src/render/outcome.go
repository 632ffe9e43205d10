package render

import "github.com/vulkan-go/vulkan"

// Outcome is the result of an acquire or present call, reduced to the four
// cases the frame loop acts on.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	// OutcomeSuboptimal means the image was acquired or presented but the
	// swap chain no longer matches the surface exactly.
	OutcomeSuboptimal
	// OutcomeOutOfDate means the swap chain can no longer be used.
	OutcomeOutOfDate
	OutcomeFatal
)

func Classify(ret vulkan.Result) Outcome {
	switch ret {
	case vulkan.Success:
		return OutcomeSuccess
	case vulkan.Suboptimal:
		return OutcomeSuboptimal
	case vulkan.ErrorOutOfDate:
		return OutcomeOutOfDate
	default:
		return OutcomeFatal
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSuboptimal:
		return "suboptimal"
	case OutcomeOutOfDate:
		return "out of date"
	case OutcomeFatal:
		return "fatal"
	}
	return "unknown"
}
