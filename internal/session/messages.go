package session

const (
	stopReasonSignal         = "signal"
	stopReasonSourceClosed   = "source_closed"
	stopReasonSourceFailed   = "source_failed"
	stopReasonPipelineFailed = "pipeline_failed"
)

func stopReasonDetail(reason string) string {
	switch reason {
	case stopReasonSignal:
		return "The session was stopped by a shutdown signal."
	case stopReasonSourceClosed:
		return "The audio input ended."
	case stopReasonSourceFailed:
		return "Audio capture failed."
	case stopReasonPipelineFailed:
		return "A caption pipeline stage failed."
	default:
		return "An unknown error occurred."
	}
}
