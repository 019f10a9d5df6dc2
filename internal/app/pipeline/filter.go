package pipeline

// Window is a closed time window in seconds; nil bounds are open.
type Window struct {
	Start *float64
	End   *float64
}

// Admit reports whether a message on topic logged at logTimeNs passes the
// topic allow-list and the time window. A nil allow-list admits every topic.
func Admit(topic string, logTimeNs int64, allow map[string]struct{}, w Window) bool {
	if allow != nil {
		if _, ok := allow[topic]; !ok {
			return false
		}
	}
	sec := float64(logTimeNs) / 1e9
	if w.Start != nil && sec < *w.Start {
		return false
	}
	if w.End != nil && sec > *w.End {
		return false
	}
	return true
}
