package audit

// Logger is the part of the structured logger sinks write to.
type Logger interface {
	DebugObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

// sinkLogger adds sink_id and sink_type to every map payload.
type sinkLogger struct {
	next Logger
	id   string
	typ  string
}

func forSink(log Logger, cfg SinkConfig) Logger {
	if log == nil {
		return noopLogger{}
	}
	return sinkLogger{next: log, id: cfg.ID, typ: cfg.Type}
}

func (l sinkLogger) DebugObj(msg, key string, obj interface{}) {
	l.next.DebugObj(msg, key, l.tag(obj))
}

func (l sinkLogger) ErrorObj(msg, key string, obj interface{}) {
	l.next.ErrorObj(msg, key, l.tag(obj))
}

func (l sinkLogger) tag(obj interface{}) map[string]any {
	fields, ok := obj.(map[string]any)
	out := make(map[string]any, len(fields)+2)
	if ok {
		for k, v := range fields {
			out[k] = v
		}
	} else if obj != nil {
		out["detail"] = obj
	}
	out["sink_id"] = l.id
	out["sink_type"] = l.typ
	return out
}
