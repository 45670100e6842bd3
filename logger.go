package clearing

import "go.uber.org/zap"

// The library stays silent unless the host wires a logger in. Nothing in
// the computation path depends on logging side effects.
var logger = zap.NewNop()

// SetLogger allows setting a custom logger
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger = l
}
