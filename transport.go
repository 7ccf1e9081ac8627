package logrelay

// UploadTrigger is implemented by the transport/channel layer. The collector calls
// TriggerUpload only when the decision policy yields DecisionUpload; the transport
// then drives the actual emission by calling Collector.Serialize on its own
// schedule. Retry and backoff timing are entirely the transport's concern.
type UploadTrigger interface {
	// TriggerUpload signals that a log upload is warranted now.
	TriggerUpload()
}

// UploadTriggerFunc adapts a plain function into an UploadTrigger.
type UploadTriggerFunc func()

// TriggerUpload calls the wrapped function.
func (f UploadTriggerFunc) TriggerUpload() {
	f()
}
