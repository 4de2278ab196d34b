package worker

import (
	"github.com/spec-kit/incident-bridge/internal/service"
)

// StartEventRecorder registers the pipeline event handlers.
func StartEventRecorder(recorder *service.EventRecorder) {
	if recorder == nil {
		return
	}
	recorder.RegisterHandlers()
}
