package observability

import (
	"go.uber.org/zap"

	"github.com/san-kum/altihold/internal/dynamo"
)

// EvaluationLogger traces every vector-field evaluation at debug level,
// trial stages of rejected steps included.
type EvaluationLogger struct {
	log *zap.Logger
}

func NewEvaluationLogger(log *zap.Logger) *EvaluationLogger {
	return &EvaluationLogger{log: log.Named("eval")}
}

func (e *EvaluationLogger) OnEvaluate(t float64, x dynamo.State, sig dynamo.Signals) {
	if ce := e.log.Check(zap.DebugLevel, "evaluate"); ce != nil {
		ce.Write(
			zap.Float64("t", t),
			zap.Float64("z", x[dynamo.IdxZ]),
			zap.Float64("u", sig.U),
			zap.Float64("u_raw", sig.URaw),
			zap.Float64("vdot", sig.VDot),
			zap.Float64s("gains", []float64{x[dynamo.IdxKP], x[dynamo.IdxKI], x[dynamo.IdxKD]}),
		)
	}
}
